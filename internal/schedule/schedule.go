// Package schedule defines tasks and time blocks and the store that owns them.
//
// The store is the only writer of schedule state. Every mutation is
// validated against the rule that no two time blocks overlap, applied in
// memory, and then written through to a Persister.
package schedule

import (
	"errors"
	"time"
)

// Defaults applied when the caller leaves a value out.
const (
	DefaultDuration   = 45 * time.Minute
	DefaultBlockTitle = "New Time Block"
)

// Validation errors.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidDuration = errors.New("estimated duration cannot be negative")
	ErrInvalidInterval = errors.New("end time must be after start time")
	ErrInvalidRequest  = errors.New("invalid schedule request")
)

// Domain errors.
var (
	ErrConflict          = errors.New("time slot is already occupied")
	ErrTaskNotFound      = errors.New("task not found")
	ErrTimeBlockNotFound = errors.New("time block not found")
)

// Task is an unscheduled to-do item that may later become a time block.
type Task struct {
	ID                string    `json:"id" yaml:"id"`
	Title             string    `json:"title" yaml:"title"`
	Completed         bool      `json:"completed" yaml:"completed"`
	Description       string    `json:"description,omitempty" yaml:"description,omitempty"`
	EstimatedDuration int       `json:"estimatedDuration,omitempty" yaml:"estimatedDuration,omitempty"` // minutes, 0 means unset
	Color             string    `json:"color,omitempty" yaml:"color,omitempty"`
	CreatedAt         time.Time `json:"createdAt" yaml:"createdAt"`
}

// Duration returns the task's estimate, or fallback when none is set.
func (t Task) Duration(fallback time.Duration) time.Duration {
	if t.EstimatedDuration > 0 {
		return time.Duration(t.EstimatedDuration) * time.Minute
	}
	return fallback
}

// TimeBlock is a scheduled interval [Start, End) on the calendar.
type TimeBlock struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
	Completed bool      `json:"completed" yaml:"completed"`
	Color     string    `json:"color,omitempty" yaml:"color,omitempty"`
}

// Duration returns End - Start.
func (b TimeBlock) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Overlaps reports whether the block intersects [start, end).
func (b TimeBlock) Overlaps(start, end time.Time) bool {
	return Overlaps(b.Start, b.End, start, end)
}

// State is a full snapshot of the schedule, as loaded and saved by a Persister.
type State struct {
	Tasks      []Task      `json:"tasks" yaml:"tasks"`
	TimeBlocks []TimeBlock `json:"timeBlocks" yaml:"timeBlocks"`
}

// IsEmpty reports whether the snapshot holds no tasks and no blocks.
func (s State) IsEmpty() bool {
	return len(s.Tasks) == 0 && len(s.TimeBlocks) == 0
}

// TaskUpdate holds a partial task update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title             *string
	Description       *string
	EstimatedDuration *int
	Completed         *bool
	Color             *string
}

// TimeBlockUpdate holds a partial time block update. Nil fields are left unchanged.
type TimeBlockUpdate struct {
	Title     *string
	Start     *time.Time
	End       *time.Time
	Completed *bool
	Color     *string
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Intervals that only touch (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
