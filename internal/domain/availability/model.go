package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
)

// StatusCancelled is the only appointment status that frees its slot.
const StatusCancelled = "cancelled"

// WorkingHours is one weekday of a doctor's weekly schedule. Times are HH:mm
// in the clinic timezone; DayOfWeek follows time.Weekday (0 is Sunday).
type WorkingHours struct {
	DayOfWeek      int    `json:"dayOfWeek"`
	IsAvailable    bool   `json:"isAvailable"`
	StartTime      string `json:"startTime,omitempty"`
	EndTime        string `json:"endTime,omitempty"`
	BreakStartTime string `json:"breakStartTime,omitempty"`
	BreakEndTime   string `json:"breakEndTime,omitempty"`
}

// VacationPeriod blocks every calendar day from StartDate through EndDate.
type VacationPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason,omitempty"`
}

type AppointmentSlotInfo struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
}

// ScheduleConfig is everything the calculator needs to know about a doctor.
type ScheduleConfig struct {
	DoctorID     uuid.UUID        `json:"doctorId"`
	WorkingHours []WorkingHours   `json:"workingHours"`
	Vacations    []VacationPeriod `json:"vacations"`
	SlotInterval int              `json:"slotInterval"`
}

type Result struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	TotalSlots     int      `json:"totalSlots"`
	BookedSlots    int      `json:"bookedSlots"`
	AvailableCount int      `json:"availableCount"`
	CurrentTime    string   `json:"currentTime"`
	OnVacation     bool     `json:"onVacation"`
	VacationReason string   `json:"vacationReason,omitempty"`
}

func (w WorkingHours) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return apperr.Validation("dayOfWeek must be between 0 and 6, got %d", w.DayOfWeek)
	}
	day := time.Weekday(w.DayOfWeek)

	var start, end int
	var err error
	if w.StartTime != "" || w.IsAvailable {
		if start, err = ParseClock(w.StartTime); err != nil {
			return apperr.Validation("%s startTime: %v", day, err)
		}
	}
	if w.EndTime != "" || w.IsAvailable {
		if end, err = ParseClock(w.EndTime); err != nil {
			return apperr.Validation("%s endTime: %v", day, err)
		}
	}
	if !w.IsAvailable {
		return nil
	}
	if start >= end {
		return apperr.Validation("%s startTime must be before endTime", day)
	}

	if w.BreakStartTime == "" && w.BreakEndTime == "" {
		return nil
	}
	if w.BreakStartTime == "" || w.BreakEndTime == "" {
		return apperr.Validation("%s break needs both breakStartTime and breakEndTime", day)
	}
	bs, err := ParseClock(w.BreakStartTime)
	if err != nil {
		return apperr.Validation("%s breakStartTime: %v", day, err)
	}
	be, err := ParseClock(w.BreakEndTime)
	if err != nil {
		return apperr.Validation("%s breakEndTime: %v", day, err)
	}
	if bs >= be {
		return apperr.Validation("%s breakStartTime must be before breakEndTime", day)
	}
	if bs < start || be > end {
		return apperr.Validation("%s break must lie within working hours", day)
	}
	return nil
}

// ValidateWeek checks every entry and that no weekday appears twice.
func ValidateWeek(week []WorkingHours) error {
	seen := make(map[int]bool, len(week))
	for _, w := range week {
		if err := w.Validate(); err != nil {
			return err
		}
		if seen[w.DayOfWeek] {
			return apperr.Validation("duplicate working hours for %s", time.Weekday(w.DayOfWeek))
		}
		seen[w.DayOfWeek] = true
	}
	return nil
}

func (v VacationPeriod) Validate() error {
	start, err := time.Parse(DateLayout, v.StartDate)
	if err != nil {
		return apperr.Validation("vacation startDate %q is not YYYY-MM-DD", v.StartDate)
	}
	end, err := time.Parse(DateLayout, v.EndDate)
	if err != nil {
		return apperr.Validation("vacation endDate %q is not YYYY-MM-DD", v.EndDate)
	}
	if end.Before(start) {
		return apperr.Validation("vacation endDate %s is before startDate %s", v.EndDate, v.StartDate)
	}
	return nil
}
