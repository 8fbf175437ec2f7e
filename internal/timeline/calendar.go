package timeline

import (
	"time"

	"pawsync/api/internal/store"
)

// DayStatus classifies one calendar day for a pet.
type DayStatus string

const (
	StatusNone     DayStatus = "none"
	StatusFuture   DayStatus = "future"
	StatusComplete DayStatus = "complete"
	StatusPartial  DayStatus = "partial"
	StatusMissed   DayStatus = "missed"
)

// ScheduledOn reports whether a task is due on the given day. An
// explicit preferred-day list overrides the frequency schedule
// entirely; unparseable entries in the list are skipped.
func ScheduledOn(task store.Task, day time.Time) bool {
	if len(task.PreferredDays) > 0 {
		for _, name := range task.PreferredDays {
			if wd, ok := ParseWeekday(name); ok && wd == day.Weekday() {
				return true
			}
		}
		return false
	}
	return ParseFrequency(task.Frequency).Weekdays()[day.Weekday()]
}

// ClassifyDay resolves one day's status from the pet's active tasks
// and its full submission history. Days with nothing scheduled are
// "none" regardless of past or future; scheduled days after today are
// "future"; otherwise the day is complete, partial, or missed by how
// many scheduled tasks received a submission that day.
func ClassifyDay(day, today time.Time, tasks []store.Task, submissions []store.Submission) DayStatus {
	scheduled := make([]store.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.IsActive && ScheduledOn(task, day) {
			scheduled = append(scheduled, task)
		}
	}
	if len(scheduled) == 0 {
		return StatusNone
	}
	if dateOf(day).After(dateOf(today)) {
		return StatusFuture
	}

	done := 0
	for _, task := range scheduled {
		for _, sub := range submissions {
			if sub.TaskID == task.ID && sameDay(sub.SubmittedAt, day) {
				done++
				break
			}
		}
	}
	switch {
	case done == len(scheduled):
		return StatusComplete
	case done > 0:
		return StatusPartial
	default:
		return StatusMissed
	}
}

// CalendarDay is one entry of a month view.
type CalendarDay struct {
	Date   string    `json:"date"`
	Status DayStatus `json:"status"`
}

// MonthStatuses classifies every day of the month containing ref.
func MonthStatuses(ref, today time.Time, tasks []store.Task, submissions []store.Submission) []CalendarDay {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	days := make([]CalendarDay, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, CalendarDay{
			Date:   d.Format("2006-01-02"),
			Status: ClassifyDay(d, today, tasks, submissions),
		})
	}
	return days
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
