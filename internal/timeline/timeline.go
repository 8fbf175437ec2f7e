// Package timeline derives the activity feed and calendar views for a
// pet from already-fetched task, submission, and comment rows. Every
// function here is pure; nothing is persisted.
package timeline

import (
	"sort"
	"time"

	"pawsync/api/internal/store"
)

type ItemType string

const (
	ItemTask       ItemType = "task"
	ItemSubmission ItemType = "submission"
	ItemComment    ItemType = "comment"
)

// Item is one entry in the unified feed. Data carries the underlying
// record for rendering.
type Item struct {
	Type ItemType  `json:"type"`
	Date time.Time `json:"date"`
	Data any       `json:"data"`
}

// Build flattens tasks, submissions, and comments into one feed with
// exactly one entry per record, sorted by date descending. The sort is
// stable so records sharing a timestamp keep their input order.
func Build(tasks []store.Task, submissions []store.Submission, comments []store.Comment) []Item {
	items := make([]Item, 0, len(tasks)+len(submissions)+len(comments))
	for _, task := range tasks {
		items = append(items, Item{Type: ItemTask, Date: task.CreatedAt, Data: task})
	}
	for _, sub := range submissions {
		items = append(items, Item{Type: ItemSubmission, Date: sub.SubmittedAt, Data: sub})
	}
	for _, comment := range comments {
		items = append(items, Item{Type: ItemComment, Date: comment.CreatedAt, Data: comment})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items
}

// WeekGroup is a presentation bucket of feed items sharing an ISO week.
type WeekGroup struct {
	Label     string    `json:"label"`
	WeekStart time.Time `json:"weekStart"`
	Items     []Item    `json:"items"`
}

// GroupByWeek buckets a date-descending feed into Monday-start weeks.
// The bucket containing today is labeled "This Week"; every other
// bucket is "Week of <Mon Jan 2>".
func GroupByWeek(today time.Time, items []Item) []WeekGroup {
	currentWeek := startOfWeek(today)

	groups := make([]WeekGroup, 0)
	for _, item := range items {
		weekStart := startOfWeek(item.Date)
		if len(groups) == 0 || !groups[len(groups)-1].WeekStart.Equal(weekStart) {
			label := "Week of " + weekStart.Format("Jan 2, 2006")
			if weekStart.Equal(currentWeek) {
				label = "This Week"
			}
			groups = append(groups, WeekGroup{Label: label, WeekStart: weekStart})
		}
		last := len(groups) - 1
		groups[last].Items = append(groups[last].Items, item)
	}
	return groups
}

// startOfWeek returns midnight of the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}
