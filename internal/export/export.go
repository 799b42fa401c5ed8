// Package export writes schedule snapshots as JSON, YAML or iCalendar and
// reads them back.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "ics", "ical", "icalendar":
		return FormatICS, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json, yaml or ics)", s)
	}
}

// Write encodes state to w.
func Write(w io.Writer, state schedule.State, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatICS:
		return writeICS(w, state)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// ReadSnapshot decodes a JSON or YAML snapshot written by Write.
func ReadSnapshot(r io.Reader, format Format) (schedule.State, error) {
	var state schedule.State
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&state); err != nil {
			return state, fmt.Errorf("decoding json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&state); err != nil {
			return state, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return state, fmt.Errorf("%s is not a snapshot format", format)
	}
	return state, nil
}
