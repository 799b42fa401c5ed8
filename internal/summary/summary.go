// Package summary aggregates time blocks and tasks into day and week views.
package summary

import (
	"time"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// Source is the read side of the schedule store.
type Source interface {
	TimeBlocksBetween(from, to time.Time) []schedule.TimeBlock
	Tasks() []schedule.Task
}

// Stats holds aggregated numbers for a set of blocks and tasks.
type Stats struct {
	Blocks           int
	CompletedBlocks  int
	ScheduledMinutes int
	CompletedMinutes int
	OpenTasks        int
	OpenTaskMinutes  int // estimates of open tasks that have one
}

// CompletionPercent returns the share of scheduled minutes already completed.
func (s Stats) CompletionPercent() int {
	if s.ScheduledMinutes == 0 {
		return 0
	}
	return (s.CompletedMinutes * 100) / s.ScheduledMinutes
}

// Summarize computes stats for blocks and tasks.
func Summarize(blocks []schedule.TimeBlock, tasks []schedule.Task) Stats {
	var s Stats
	for _, b := range blocks {
		minutes := int(b.Duration() / time.Minute)
		s.Blocks++
		s.ScheduledMinutes += minutes
		if b.Completed {
			s.CompletedBlocks++
			s.CompletedMinutes += minutes
		}
	}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		s.OpenTasks++
		s.OpenTaskMinutes += t.EstimatedDuration
	}
	return s
}

// Gap is a free interval between blocks.
type Gap struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (g Gap) Duration() time.Duration {
	return g.End.Sub(g.Start)
}

// Gaps returns the free intervals inside [from, to) not covered by blocks.
// blocks must be sorted by start.
func Gaps(blocks []schedule.TimeBlock, from, to time.Time) []Gap {
	var gaps []Gap
	cursor := from
	for _, b := range blocks {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(to) {
			break
		}
		if b.Start.After(cursor) {
			gaps = append(gaps, Gap{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if cursor.Before(to) {
		gaps = append(gaps, Gap{Start: cursor, End: to})
	}
	return gaps
}

// DaySummary holds one day's blocks in start order.
type DaySummary struct {
	Date   time.Time
	Blocks []schedule.TimeBlock
	Stats  Stats
}

// Day summarizes the blocks that start on date's day plus all open tasks.
func Day(src Source, date time.Time) DaySummary {
	start, end := dateutil.DayRange(date)
	blocks := src.TimeBlocksBetween(start, end)
	return DaySummary{
		Date:   start,
		Blocks: blocks,
		Stats:  Summarize(blocks, src.Tasks()),
	}
}

// WeekSummary holds the seven days of the ISO week.
type WeekSummary struct {
	Start time.Time // Monday
	End   time.Time // Sunday
	Days  []DaySummary
	Stats Stats
}

// Week summarizes the ISO week containing date.
func Week(src Source, date time.Time) WeekSummary {
	monday, sunday := dateutil.WeekRange(date)
	tasks := src.Tasks()

	w := WeekSummary{Start: monday, End: sunday}
	var all []schedule.TimeBlock
	for i := range 7 {
		dayStart, dayEnd := dateutil.DayRange(monday.AddDate(0, 0, i))
		blocks := src.TimeBlocksBetween(dayStart, dayEnd)
		all = append(all, blocks...)
		w.Days = append(w.Days, DaySummary{
			Date:   dayStart,
			Blocks: blocks,
			Stats:  Summarize(blocks, nil),
		})
	}
	w.Stats = Summarize(all, tasks)
	return w
}

// BusiestDay returns the day with the most scheduled minutes.
// ok is false when nothing is scheduled.
func (w WeekSummary) BusiestDay() (day DaySummary, ok bool) {
	for _, d := range w.Days {
		if d.Stats.ScheduledMinutes > day.Stats.ScheduledMinutes {
			day, ok = d, true
		}
	}
	return day, ok
}
