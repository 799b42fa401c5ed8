package export

import (
	"fmt"
	"time"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// Report lists what an import added and what it skipped, with reasons.
type Report struct {
	Added   []string
	Skipped []string
}

func (r *Report) skip(title string, err error) {
	r.Skipped = append(r.Skipped, fmt.Sprintf("%s: %v", title, err))
}

// Import replays a snapshot through the store. Every block passes the same
// conflict check as an interactive add; rejected entries are reported, not
// fatal. Imported entries get fresh ids.
func Import(store *schedule.Store, state schedule.State) Report {
	var r Report

	for _, t := range state.Tasks {
		created, err := store.AddTask(t.Title, t.Description, t.EstimatedDuration)
		if err != nil {
			r.skip(t.Title, err)
			continue
		}
		if t.Completed || t.Color != "" {
			u := schedule.TaskUpdate{Color: &t.Color, Completed: &t.Completed}
			if err := store.UpdateTask(created.ID, u); err != nil {
				r.skip(t.Title, err)
				continue
			}
		}
		r.Added = append(r.Added, "task "+t.Title)
	}

	for _, b := range state.TimeBlocks {
		addBlock(store, &r, b.Title, b.Start, b.End, b.Color, b.Completed)
	}
	return r
}

// ImportEvents adds each event as a time block. Events without an end get
// the store's default duration.
func ImportEvents(store *schedule.Store, events []Event) Report {
	var r Report
	for _, ev := range events {
		addBlock(store, &r, ev.Summary, ev.Start, ev.End, ev.Color, ev.Completed)
	}
	return r
}

func addBlock(store *schedule.Store, r *Report, title string, start, end time.Time, color string, completed bool) {
	created, err := store.AddTimeBlock(start, end, title)
	if err != nil {
		r.skip(blockLabel(title, start), err)
		return
	}
	if completed || color != "" {
		u := schedule.TimeBlockUpdate{Color: &color, Completed: &completed}
		if err := store.UpdateTimeBlock(created.ID, u); err != nil {
			r.skip(blockLabel(title, start), err)
			return
		}
	}
	r.Added = append(r.Added, "block "+blockLabel(created.Title, created.Start))
}

func blockLabel(title string, start time.Time) string {
	return fmt.Sprintf("%s (%s)", title, start.Format("2006-01-02 15:04"))
}
