// Package input parses the one-line entries typed into the TUI prompt.
package input

import (
	"errors"
	"strings"
	"time"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
)

// ErrBadDuration is returned for durations that are not whole positive minutes.
var ErrBadDuration = errors.New("duration must be a positive number of minutes, e.g. 30m or 1h30m")

// Entry is a parsed quick-add line such as "Standup 09:00-09:30",
// "Deep work 10:00 90m" or "Read paper 20m".
type Entry struct {
	Title    string
	Start    time.Duration // offset from midnight, valid when HasStart
	End      time.Duration // offset from midnight, valid when HasEnd
	Duration time.Duration // zero when not given
	HasStart bool
	HasEnd   bool
}

// ParseQuickAdd splits a line into a title and optional trailing time fields.
// Time fields are read from the end: an optional duration, then an optional
// "HH:MM" or "HH:MM-HH:MM". Everything before them is the title.
func ParseQuickAdd(line string) (Entry, error) {
	var e Entry
	fields := strings.Fields(line)

	if n := len(fields); n > 0 && looksLikeDuration(fields[n-1]) {
		d, err := parseMinutes(fields[n-1])
		if err != nil {
			return Entry{}, err
		}
		e.Duration = d
		fields = fields[:n-1]
	}

	if n := len(fields); n > 0 && looksLikeClock(fields[n-1]) {
		start, end, hasEnd := strings.Cut(fields[n-1], "-")
		offset, err := dateutil.ParseClock(start)
		if err != nil {
			return Entry{}, err
		}
		e.Start, e.HasStart = offset, true
		if hasEnd {
			if e.End, err = dateutil.ParseClock(end); err != nil {
				return Entry{}, err
			}
			e.HasEnd = true
		}
		fields = fields[:n-1]
	}

	if e.HasEnd && e.Duration > 0 {
		return Entry{}, errors.New("give an end time or a duration, not both")
	}

	e.Title = strings.Join(fields, " ")
	return e, nil
}

// Minutes returns the duration in whole minutes, or 0 when unset.
func (e Entry) Minutes() int {
	return int(e.Duration / time.Minute)
}

func looksLikeClock(s string) bool {
	return len(s) >= 5 && s[2] == ':' && isDigit(s[0]) && isDigit(s[1])
}

func looksLikeDuration(s string) bool {
	if s == "" || !isDigit(s[0]) {
		return false
	}
	last := s[len(s)-1]
	return last == 'm' || last == 'h'
}

func parseMinutes(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 || d%time.Minute != 0 {
		return 0, ErrBadDuration
	}
	return d, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
