package availability

import (
	"time"

	"github.com/google/uuid"
)

// Input is one availability question: which slots of Date are still free.
// Appointments are those starting on Date; cancelled ones are ignored.
type Input struct {
	DoctorID     uuid.UUID
	Date         string
	Schedule     []WorkingHours
	Vacations    []VacationPeriod
	Appointments []AppointmentSlotInfo
	SlotInterval int
	Now          time.Time
}

// Calculator computes free slots. It holds no mutable state and is safe for
// concurrent use.
type Calculator struct {
	loc  *time.Location
	grid SlotGridProvider
}

func NewCalculator(loc *time.Location, grid SlotGridProvider) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	if grid == nil {
		grid = FixedGrid{}
	}
	return &Calculator{loc: loc, grid: grid}
}

func (c *Calculator) Location() *time.Location { return c.loc }

func (c *Calculator) Compute(in Input) (*Result, error) {
	day, err := ParseDate(in.Date, c.loc)
	if err != nil {
		return nil, err
	}

	grid := c.grid.Slots(day.Weekday(), in.Schedule, in.SlotInterval)
	res := &Result{
		Date:           day.Format(DateLayout),
		AvailableSlots: []string{},
		TotalSlots:     len(grid),
		CurrentTime:    in.Now.UTC().Format(time.RFC3339),
	}

	if v, ok := vacationOn(day, in.Vacations); ok {
		res.OnVacation = true
		res.VacationReason = v.Reason
		if res.VacationReason == "" {
			res.VacationReason = "Vacation"
		}
		return res, nil
	}

	busy := make(map[string]struct{}, len(in.Appointments))
	for _, a := range in.Appointments {
		if a.Status == StatusCancelled {
			continue
		}
		busy[a.StartTime.In(c.loc).Format(ClockLayout)] = struct{}{}
	}
	res.BookedSlots = len(busy)

	now := in.Now.In(c.loc)
	isToday := now.Format(DateLayout) == res.Date
	nowMinutes := now.Hour()*60 + now.Minute()

	for _, slot := range grid {
		if _, taken := busy[slot]; taken {
			continue
		}
		if isToday {
			m, err := ParseClock(slot)
			if err != nil || m <= nowMinutes {
				continue
			}
		}
		res.AvailableSlots = append(res.AvailableSlots, slot)
	}
	res.AvailableCount = len(res.AvailableSlots)
	return res, nil
}

// vacationOn returns the first vacation covering day, comparing calendar
// dates with both ends inclusive. Entries with malformed dates are skipped.
func vacationOn(day time.Time, vacations []VacationPeriod) (VacationPeriod, bool) {
	date := day.Format(DateLayout)
	for _, v := range vacations {
		start, err := time.Parse(DateLayout, v.StartDate)
		if err != nil {
			continue
		}
		end, err := time.Parse(DateLayout, v.EndDate)
		if err != nil {
			continue
		}
		if date >= start.Format(DateLayout) && date <= end.Format(DateLayout) {
			return v, true
		}
	}
	return VacationPeriod{}, false
}
