// Package filter selects tasks by calendar day.
package filter

import (
	"time"

	"today/internal/task"
)

// Day is a calendar date in the viewer's location.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of ts in loc. A nil loc means time.Local.
func DayOf(ts time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := ts.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ByDate returns the tasks relevant to selected.
//
// With a nil selected date the result is a copy of tasks in the same order.
// Otherwise only tasks whose effective date (due date, else creation date)
// falls on the same calendar day as selected in loc are returned.
// The input is never modified.
func ByDate(tasks []task.Task, selected *time.Time, loc *time.Location) []task.Task {
	if selected == nil {
		return task.CloneAll(tasks)
	}

	want := DayOf(*selected, loc)
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if DayOf(t.EffectiveDate(), loc) == want {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Indexed pairs a task with its 1-based position in the unfiltered list.
type Indexed struct {
	Num  int
	Task task.Task
}

// IndexedByDate is ByDate that also reports each task's position in tasks,
// so references stay stable while a date is selected.
func IndexedByDate(tasks []task.Task, selected *time.Time, loc *time.Location) []Indexed {
	var want Day
	if selected != nil {
		want = DayOf(*selected, loc)
	}

	out := make([]Indexed, 0, len(tasks))
	for i, t := range tasks {
		if selected != nil && DayOf(t.EffectiveDate(), loc) != want {
			continue
		}
		out = append(out, Indexed{Num: i + 1, Task: t.Clone()})
	}
	return out
}

// CountByDay returns the number of tasks per effective day in the month
// containing month (in loc). Days without tasks are absent from the map.
func CountByDay(tasks []task.Task, month time.Time, loc *time.Location) map[int]int {
	ref := DayOf(month, loc)
	counts := make(map[int]int)
	for _, t := range tasks {
		d := DayOf(t.EffectiveDate(), loc)
		if d.Year == ref.Year && d.Month == ref.Month {
			counts[d.Day]++
		}
	}
	return counts
}
