package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

const (
	productID         = "-//chronoblock//chronoblock//EN"
	categoryCompleted = "completed"
	propertyColor     = ical.ComponentProperty("COLOR")
)

// Event is a timed calendar entry read from an iCalendar file.
type Event struct {
	UID       string
	Summary   string
	Start     time.Time
	End       time.Time // zero when the event has no DTEND
	Color     string
	Completed bool
}

// writeICS emits one VEVENT per time block.
func writeICS(w io.Writer, state schedule.State) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := time.Now().UTC()
	for _, b := range state.TimeBlocks {
		ev := cal.AddEvent(b.ID)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(b.Title)
		ev.SetStartAt(b.Start)
		ev.SetEndAt(b.End)
		if b.Color != "" {
			ev.SetProperty(propertyColor, b.Color)
		}
		if b.Completed {
			ev.SetProperty(ical.ComponentPropertyCategories, categoryCompleted)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("encoding ics: %w", err)
	}
	return nil
}

// ReadICS parses timed VEVENTs. All-day events and events without a usable
// DTSTART are skipped.
func ReadICS(r io.Reader) ([]Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing ics: %w", err)
	}

	var events []Event
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

var errAllDay = errors.New("all-day event")

func parseVEvent(ve *ical.VEvent) (Event, error) {
	var ev Event

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, errors.New("missing DTSTART")
	}
	if !strings.Contains(dtStart.Value, "T") {
		return ev, errAllDay
	}
	if vs, ok := dtStart.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return ev, errAllDay
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, fmt.Errorf("parsing DTSTART: %w", err)
	}
	ev.Start = start.Local()

	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			return ev, fmt.Errorf("parsing DTEND: %w", err)
		}
		ev.End = end.Local()
	}

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		ev.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}
	if p := ve.GetProperty(propertyColor); p != nil {
		ev.Color = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if strings.EqualFold(strings.TrimSpace(c), categoryCompleted) {
				ev.Completed = true
			}
		}
	}
	return ev, nil
}
