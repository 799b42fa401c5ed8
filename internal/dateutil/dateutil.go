// Package dateutil provides date and clock parsing for the calendar.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format or a relative name like tomorrow or next-monday")
	ErrInvalidClockFormat = errors.New("time must be in HH:MM format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DateRange is an inclusive range of days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses from and to with ParseRelativeDate.
// An empty from means relativeTo's day; an empty to means from.
func NewDateRange(from, to string, relativeTo time.Time) (DateRange, error) {
	start, err := ParseRelativeDate(from, relativeTo)
	if err != nil {
		return DateRange{}, err
	}

	end := start
	if to != "" {
		end, err = ParseRelativeDate(to, relativeTo)
		if err != nil {
			return DateRange{}, err
		}
	}

	if end.Before(start) {
		return DateRange{}, ErrEndDateBeforeStart
	}

	return DateRange{Start: start, End: end}, nil
}

// Days returns the number of days covered, counting both ends.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24+0.5) + 1
}

// Bounds returns the half-open interval [midnight of Start, midnight after End).
func (r DateRange) Bounds() (from, to time.Time) {
	_, to = DayRange(r.End)
	return TruncateToDay(r.Start), to
}

// ParseClock parses "HH:MM" and returns the offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w, got %q", ErrInvalidClockFormat, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// At returns day's date at the given "HH:MM" wall clock time.
func At(day time.Time, clock string) (time.Time, error) {
	offset, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	d := TruncateToDay(day)
	return time.Date(d.Year(), d.Month(), d.Day(),
		int(offset/time.Hour), int(offset%time.Hour/time.Minute), 0, 0, d.Location()), nil
}

// FormatClock renders t as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// DayRange returns midnight of t's day and midnight of the next day.
func DayRange(t time.Time) (start, end time.Time) {
	start = TruncateToDay(t)
	return start, start.AddDate(0, 0, 1)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "yesterday"
//   - Weekday names: "monday" through "sunday" (next occurrence, always future)
//   - Prefixed: "next-monday", "last-friday", "next-week", "last-week"
//
// All inputs are case-insensitive. Absolute dates are read in relativeTo's
// location. Past dates are allowed.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	case "last-week":
		return today.AddDate(0, 0, -7), nil
	}

	if name, ok := strings.CutPrefix(input, "next-"); ok {
		if targetDay, ok := weekdayMap[name]; ok {
			return nextWeekday(today, targetDay), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}
	if name, ok := strings.CutPrefix(input, "last-"); ok {
		if targetDay, ok := weekdayMap[name]; ok {
			return previousWeekday(today, targetDay), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}

	if targetDay, ok := weekdayMap[input]; ok {
		return nextWeekday(today, targetDay), nil
	}

	result, err := time.ParseInLocation(dateLayout, input, today.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return result, nil
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}

// previousWeekday returns the most recent occurrence of target before today.
func previousWeekday(today time.Time, target time.Weekday) time.Time {
	daysSince := int(today.Weekday()) - int(target)
	if daysSince <= 0 {
		daysSince += 7
	}
	return today.AddDate(0, 0, -daysSince)
}
