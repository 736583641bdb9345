package availability

import "time"

const (
	fixedGridStart    = 9 * 60
	fixedGridEnd      = 17 * 60
	fixedGridInterval = 30

	DefaultSlotInterval = 30
)

// SlotGridProvider yields the ordered HH:mm slot labels for one day.
type SlotGridProvider interface {
	Slots(day time.Weekday, schedule []WorkingHours, interval int) []string
}

// FixedGrid is 09:00 to 16:30 in 30 minute steps regardless of the doctor's
// configuration.
type FixedGrid struct{}

func (FixedGrid) Slots(time.Weekday, []WorkingHours, int) []string {
	return stepSlots(fixedGridStart, fixedGridEnd, fixedGridInterval, -1, -1)
}

// WorkingHoursGrid steps through the doctor's hours for the weekday at their
// slot interval and drops slots that overlap the break. Days with no entry
// (or a schedule with no entries at all) use the fixed grid.
type WorkingHoursGrid struct{}

func (WorkingHoursGrid) Slots(day time.Weekday, schedule []WorkingHours, interval int) []string {
	var entry *WorkingHours
	for i := range schedule {
		if schedule[i].DayOfWeek == int(day) {
			entry = &schedule[i]
			break
		}
	}
	if entry == nil {
		return FixedGrid{}.Slots(day, schedule, interval)
	}
	if !entry.IsAvailable {
		return []string{}
	}

	start, err1 := ParseClock(entry.StartTime)
	end, err2 := ParseClock(entry.EndTime)
	if err1 != nil || err2 != nil || start >= end {
		return FixedGrid{}.Slots(day, schedule, interval)
	}
	if interval <= 0 {
		interval = DefaultSlotInterval
	}

	breakStart, breakEnd := -1, -1
	if bs, err := ParseClock(entry.BreakStartTime); err == nil {
		if be, err := ParseClock(entry.BreakEndTime); err == nil && bs < be {
			breakStart, breakEnd = bs, be
		}
	}
	return stepSlots(start, end, interval, breakStart, breakEnd)
}

// stepSlots emits every slot [t, t+interval) that fits inside [start, end)
// and does not intersect [breakStart, breakEnd).
func stepSlots(start, end, interval, breakStart, breakEnd int) []string {
	slots := make([]string, 0, (end-start)/interval)
	for t := start; t+interval <= end; t += interval {
		if breakStart >= 0 && t < breakEnd && t+interval > breakStart {
			continue
		}
		slots = append(slots, FormatClock(t))
	}
	return slots
}
