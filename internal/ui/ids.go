package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// shortIDLen is how many characters of an id the CLI prints.
const shortIDLen = 8

var errAmbiguousID = errors.New("id prefix matches more than one entry")

// shortID returns the printable prefix of id.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// matchPrefix returns the single id starting with prefix.
// An exact match wins over longer ids that share the prefix.
func matchPrefix(ids []string, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty id")
	}

	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %q", errAmbiguousID, prefix)
	}
}

// resolveBlock finds the block whose id starts with prefix.
func resolveBlock(store *schedule.Store, prefix string) (schedule.TimeBlock, error) {
	blocks := store.TimeBlocks()
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}

	id, err := matchPrefix(ids, prefix)
	if err != nil {
		return schedule.TimeBlock{}, err
	}
	b, ok := store.TimeBlock(id)
	if id == "" || !ok {
		return schedule.TimeBlock{}, fmt.Errorf("%w: %s", schedule.ErrTimeBlockNotFound, prefix)
	}
	return b, nil
}

// resolveTask finds the task whose id starts with prefix.
func resolveTask(store *schedule.Store, prefix string) (schedule.Task, error) {
	tasks := store.Tasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	id, err := matchPrefix(ids, prefix)
	if err != nil {
		return schedule.Task{}, err
	}
	t, ok := store.Task(id)
	if id == "" || !ok {
		return schedule.Task{}, fmt.Errorf("%w: %s", schedule.ErrTaskNotFound, prefix)
	}
	return t, nil
}

// resolveDay parses a --date flag relative to today.
func (a *App) resolveDay(date string) (time.Time, error) {
	return dateutil.ParseRelativeDate(date, a.now())
}

// resolveTime combines a --date flag and an "HH:MM" clock.
func (a *App) resolveTime(date, clock string) (time.Time, error) {
	day, err := a.resolveDay(date)
	if err != nil {
		return time.Time{}, err
	}
	return dateutil.At(day, clock)
}
