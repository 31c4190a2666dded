package schedules

import "time"

// Defaults describe the system-wide schedule applied when no explicit
// record exists: one closed weekday and a fixed slot list.
type Defaults struct {
	DayOff time.Weekday
	Slots  []string
}

// Day is the effective schedule for one date after defaults are applied.
type Day struct {
	IsDayOff bool
	Slots    []string
}

// DayFor computes the default day for a date: closed on the weekly
// off-day, otherwise the default slot list in configured order.
func (d Defaults) DayFor(date string) (Day, error) {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return Day{}, ErrInvalidDate
	}
	if parsed.Weekday() == d.DayOff {
		return Day{IsDayOff: true}, nil
	}
	slots := make([]string, len(d.Slots))
	copy(slots, d.Slots)
	return Day{Slots: slots}, nil
}
