// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"today/internal/filter"
	"today/internal/localstore"
	"today/internal/task"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}" followed by "  (due YYYY-MM-DD)" when the
// task has a due date, shown in loc.
func FormatTask(w io.Writer, num int, t task.Task, loc *time.Location) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s", num, mark, normalizeTitle(t.Title))
	if t.DueDate != nil {
		fmt.Fprintf(w, "  (due %s)", t.DueDate.In(loc).Format(localstore.DateLayout))
	}
	fmt.Fprintln(w)
}

// FormatTaskList writes the summary line followed by the open tasks, then the
// completed ones. Each task keeps its number.
func FormatTaskList(w io.Writer, tasks []filter.Indexed, hideCompleted bool, loc *time.Location) {
	completed := 0
	for _, it := range tasks {
		if it.Task.Completed {
			completed++
		}
	}
	FormatSummary(w, len(tasks), completed)

	for _, it := range tasks {
		if !it.Task.Completed {
			FormatTask(w, it.Num, it.Task, loc)
		}
	}
	if hideCompleted {
		return
	}
	for _, it := range tasks {
		if it.Task.Completed {
			FormatTask(w, it.Num, it.Task, loc)
		}
	}
}

// FormatSummary writes "Tasks: N  Completed: M".
func FormatSummary(w io.Writer, total, completed int) {
	fmt.Fprintf(w, "Tasks: %d  Completed: %d\n", total, completed)
}

// FormatArchived formats an archived task line.
// Format: "{ARCHIVED DATE}  {TITLE}".
func FormatArchived(w io.Writer, t localstore.ArchivedTask, loc *time.Location) {
	fmt.Fprintf(w, "%s  %s\n", t.ArchivedAt.In(loc).Format(localstore.DateLayout), normalizeTitle(t.Title))
}

// FormatCalendar writes a Sunday-first month grid for month. Days with tasks
// are marked "+", today is marked "*". Per-day task counts follow the grid.
func FormatCalendar(w io.Writer, month time.Time, counts map[int]int, today time.Time) {
	year, mon, _ := month.Date()
	loc := month.Location()
	first := time.Date(year, mon, 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()

	ty, tm, td := today.In(loc).Date()
	todayDay := 0
	if ty == year && tm == mon {
		todayDay = td
	}

	fmt.Fprintf(w, "%s %d\n", mon, year)

	var header strings.Builder
	for _, name := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		fmt.Fprintf(&header, "%3s ", name)
	}
	fmt.Fprintln(w, strings.TrimRight(header.String(), " "))

	var row strings.Builder
	col := int(first.Weekday())
	row.WriteString(strings.Repeat("    ", col))
	for day := 1; day <= days; day++ {
		mark := ' '
		switch {
		case day == todayDay:
			mark = '*'
		case counts[day] > 0:
			mark = '+'
		}
		fmt.Fprintf(&row, "%3d%c", day, mark)

		col++
		if col == 7 || day == days {
			fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
			row.Reset()
			col = 0
		}
	}

	if len(counts) == 0 {
		return
	}
	keys := make([]int, 0, len(counts))
	for day := range counts {
		keys = append(keys, day)
	}
	sort.Ints(keys)

	fmt.Fprintln(w)
	for _, day := range keys {
		fmt.Fprintf(w, "%s  %d\n", time.Date(year, mon, day, 0, 0, 0, 0, loc).Format(localstore.DateLayout), counts[day])
	}
}

// Notice writes a one-line notice about degraded but consistent behavior.
func Notice(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "notice: "+format+"\n", args...)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
