package timeline

import (
	"testing"
	"time"

	"pawsync/api/internal/store"
)

func TestParseFrequency(t *testing.T) {
	cases := []struct {
		raw  string
		want Frequency
	}{
		{"daily", FrequencyDaily},
		{"Daily", FrequencyDaily},
		{"3x/week", FrequencyThreeWeekly},
		{"2x/week", FrequencyTwiceWeekly},
		{"twice a week", FrequencyTwiceWeekly},
		{"weekly", FrequencyWeekly},
		{"whenever", FrequencyDaily},
		{"", FrequencyDaily},
	}
	for _, tc := range cases {
		if got := ParseFrequency(tc.raw); got != tc.want {
			t.Errorf("ParseFrequency(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestScheduledOnFrequency(t *testing.T) {
	task := store.Task{Frequency: "3x/week", IsActive: true}
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	tue := mon.AddDate(0, 0, 1)
	if !ScheduledOn(task, mon) {
		t.Errorf("3x/week task should be scheduled on Monday")
	}
	if ScheduledOn(task, tue) {
		t.Errorf("3x/week task should not be scheduled on Tuesday")
	}
}

func TestScheduledOnPreferredDaysOverride(t *testing.T) {
	task := store.Task{Frequency: "daily", PreferredDays: []string{"Mon", "Wed"}}
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	tue := mon.AddDate(0, 0, 1)
	if !ScheduledOn(task, mon) {
		t.Errorf("preferred Monday should be scheduled")
	}
	if ScheduledOn(task, tue) {
		t.Errorf("Tuesday is not a preferred day and frequency must not apply")
	}
}

func TestClassifyDay(t *testing.T) {
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	tue := mon.AddDate(0, 0, 1)
	wed := mon.AddDate(0, 0, 2)
	today := wed

	taskA := store.Task{ID: "task_a", Frequency: "daily", IsActive: true}
	taskB := store.Task{ID: "task_b", Frequency: "daily", IsActive: true}
	subs := []store.Submission{
		{ID: "sub_1", TaskID: "task_a", SubmittedAt: mon.Add(10 * time.Hour)},
		{ID: "sub_2", TaskID: "task_b", SubmittedAt: mon.Add(11 * time.Hour)},
		{ID: "sub_3", TaskID: "task_a", SubmittedAt: tue.Add(9 * time.Hour)},
	}

	cases := []struct {
		name string
		day  time.Time
		want DayStatus
	}{
		{"all tasks done", mon, StatusComplete},
		{"one of two done", tue, StatusPartial},
		{"nothing done", wed, StatusMissed},
		{"future day", wed.AddDate(0, 0, 1), StatusFuture},
	}
	for _, tc := range cases {
		got := ClassifyDay(tc.day, today, []store.Task{taskA, taskB}, subs)
		if got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestClassifyDayUnscheduled(t *testing.T) {
	// Preferred Mon/Wed with a submission only on Monday: Tuesday has
	// nothing scheduled, the following Monday is still ahead.
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	today := mon.AddDate(0, 0, 3) // Thursday
	task := store.Task{ID: "task_a", IsActive: true, PreferredDays: []string{"Mon", "Wed"}}
	subs := []store.Submission{{TaskID: "task_a", SubmittedAt: mon.Add(8 * time.Hour)}}

	tasks := []store.Task{task}
	if got := ClassifyDay(mon, today, tasks, subs); got != StatusComplete {
		t.Errorf("monday: expected complete, got %s", got)
	}
	if got := ClassifyDay(mon.AddDate(0, 0, 1), today, tasks, subs); got != StatusNone {
		t.Errorf("tuesday: expected none, got %s", got)
	}
	if got := ClassifyDay(mon.AddDate(0, 0, 2), today, tasks, subs); got != StatusMissed {
		t.Errorf("wednesday: expected missed, got %s", got)
	}
	if got := ClassifyDay(mon.AddDate(0, 0, 7), today, tasks, subs); got != StatusFuture {
		t.Errorf("next monday: expected future, got %s", got)
	}
}

func TestClassifyDayIgnoresInactiveTasks(t *testing.T) {
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	task := store.Task{ID: "task_a", Frequency: "daily", IsActive: false}
	if got := ClassifyDay(mon, mon, []store.Task{task}, nil); got != StatusNone {
		t.Errorf("inactive task should yield none, got %s", got)
	}
}

func TestMonthStatuses(t *testing.T) {
	today := time.Date(2026, time.February, 15, 12, 0, 0, 0, time.UTC)
	days := MonthStatuses(today, today, nil, nil)
	if len(days) != 28 {
		t.Fatalf("expected 28 days for Feb 2026, got %d", len(days))
	}
	if days[0].Date != "2026-02-01" {
		t.Errorf("expected first day 2026-02-01, got %s", days[0].Date)
	}
	for _, d := range days {
		if d.Status != StatusNone {
			t.Errorf("%s: expected none with no tasks, got %s", d.Date, d.Status)
		}
	}
}
