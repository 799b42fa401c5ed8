// Package scheduler knows the working window and picks default start times.
package scheduler

import (
	"strings"
	"time"
)

// Scheduler provides time-aware defaults for new time blocks.
type Scheduler struct {
	workdays map[time.Weekday]bool
	dayStart time.Duration // offset from midnight
	dayEnd   time.Duration
	step     time.Duration
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// New creates a Scheduler. dayStart and dayEnd are "HH:MM"; step is the
// slot size start times are aligned to (15 minutes when zero).
func New(workdays []string, dayStart, dayEnd string, step time.Duration) *Scheduler {
	wd := make(map[time.Weekday]bool)
	for _, d := range workdays {
		if w, ok := weekdays[strings.ToLower(strings.TrimSpace(d))]; ok {
			wd[w] = true
		}
	}
	if step <= 0 {
		step = 15 * time.Minute
	}
	return &Scheduler{
		workdays: wd,
		dayStart: parseClock(dayStart),
		dayEnd:   parseClock(dayEnd),
		step:     step,
	}
}

// Step returns the slot size.
func (s *Scheduler) Step() time.Duration {
	return s.step
}

// DayBounds returns the working window on t's day.
func (s *Scheduler) DayBounds(t time.Time) (start, end time.Time) {
	return clockOn(t, s.dayStart), clockOn(t, s.dayEnd)
}

// clockOn returns t's date at the wall clock offset, so DST days keep their labels.
func clockOn(t time.Time, offset time.Duration) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		int(offset/time.Hour), int(offset%time.Hour/time.Minute), 0, 0, t.Location())
}

// NextStart returns the next slot-aligned start time for a new block.
// Before the window it is the day start; during the window it is now rounded
// up to the next slot; otherwise it is the day start of the next workday.
func (s *Scheduler) NextStart(now time.Time) time.Time {
	if s.IsWorkday(now) {
		start, end := s.DayBounds(now)
		if now.Before(start) {
			return start
		}
		if rounded := s.roundUp(now); rounded.Before(end) {
			return rounded
		}
	}
	return s.nextWorkdayStart(now)
}

// nextWorkdayStart finds the window start on the first workday after from.
func (s *Scheduler) nextWorkdayStart(from time.Time) time.Time {
	next := from.AddDate(0, 0, 1)
	for range 7 {
		if s.IsWorkday(next) {
			start, _ := s.DayBounds(next)
			return start
		}
		next = next.AddDate(0, 0, 1)
	}
	// No workdays configured.
	start, _ := s.DayBounds(from.AddDate(0, 0, 1))
	return start
}

// IsWorkday returns true if the given time falls on a configured workday.
func (s *Scheduler) IsWorkday(t time.Time) bool {
	return s.workdays[t.Weekday()]
}

// Fits reports whether [start, start+d) stays inside the working window of start's day.
func (s *Scheduler) Fits(start time.Time, d time.Duration) bool {
	dayStart, dayEnd := s.DayBounds(start)
	return !start.Before(dayStart) && !start.Add(d).After(dayEnd)
}

func (s *Scheduler) roundUp(t time.Time) time.Time {
	snapped := Snap(t, s.step)
	if snapped.Before(t) {
		snapped = snapped.Add(s.step)
	}
	return snapped
}

// Snap rounds t down to the nearest multiple of step since t's midnight.
// Seconds and below are dropped.
func Snap(t time.Time, step time.Duration) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if step <= 0 {
		return t.Truncate(time.Minute)
	}
	offset := t.Sub(midnight)
	return midnight.Add(offset - offset%step)
}

// parseClock parses "HH:MM" to an offset from midnight. Malformed input yields 0.
func parseClock(s string) time.Duration {
	if len(s) < 5 {
		return 0
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}
