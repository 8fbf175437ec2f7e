package timeline

import (
	"strings"
	"time"
)

// Frequency is the closed set of training cadences a task can carry.
// Free-form strings from older rows normalize onto one of these.
type Frequency int

const (
	FrequencyDaily Frequency = iota
	FrequencyThreeWeekly
	FrequencyTwiceWeekly
	FrequencyWeekly
)

// ParseFrequency maps a stored frequency string onto the enum.
// Unrecognized values fall back to daily so a task never silently
// disappears from the calendar.
func ParseFrequency(raw string) Frequency {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "3x") || strings.Contains(s, "three"):
		return FrequencyThreeWeekly
	case strings.Contains(s, "2x") || strings.Contains(s, "twice"):
		return FrequencyTwiceWeekly
	case strings.Contains(s, "daily") || strings.Contains(s, "every day"):
		return FrequencyDaily
	case strings.Contains(s, "week"):
		return FrequencyWeekly
	default:
		return FrequencyDaily
	}
}

// Weekdays returns the fixed schedule each cadence implies.
func (f Frequency) Weekdays() map[time.Weekday]bool {
	switch f {
	case FrequencyThreeWeekly:
		return map[time.Weekday]bool{time.Monday: true, time.Wednesday: true, time.Friday: true}
	case FrequencyTwiceWeekly:
		return map[time.Weekday]bool{time.Tuesday: true, time.Friday: true}
	case FrequencyWeekly:
		return map[time.Weekday]bool{time.Monday: true}
	default:
		return map[time.Weekday]bool{
			time.Sunday: true, time.Monday: true, time.Tuesday: true, time.Wednesday: true,
			time.Thursday: true, time.Friday: true, time.Saturday: true,
		}
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekday resolves a stored preferred-day name ("Mon", "monday")
// to a weekday. The second result is false for unknown names.
func ParseWeekday(name string) (time.Weekday, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	if len(s) > 3 {
		s = s[:3]
	}
	day, ok := weekdayNames[s]
	return day, ok
}
