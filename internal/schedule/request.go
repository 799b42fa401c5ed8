package schedule

import (
	"fmt"
	"time"
)

// RequestKind names a calendar gesture.
type RequestKind string

const (
	RequestCreate  RequestKind = "create"
	RequestMove    RequestKind = "move"
	RequestResize  RequestKind = "resize"
	RequestConvert RequestKind = "convert"
)

// Request is a typed gesture from a presentation layer.
//
//	create:  Start, optional End and Title
//	move:    BlockID, Start (duration is kept)
//	resize:  BlockID, End, optional Start
//	convert: TaskID, Start
type Request struct {
	Kind    RequestKind
	BlockID string
	TaskID  string
	Title   string
	Start   time.Time
	End     time.Time
}

// Validate checks that the request carries the fields its kind needs.
func (r Request) Validate() error {
	switch r.Kind {
	case RequestCreate:
		if r.Start.IsZero() {
			return fmt.Errorf("%w: create needs a start time", ErrInvalidRequest)
		}
	case RequestMove:
		if r.BlockID == "" || r.Start.IsZero() {
			return fmt.Errorf("%w: move needs a block id and a start time", ErrInvalidRequest)
		}
	case RequestResize:
		if r.BlockID == "" || r.End.IsZero() {
			return fmt.Errorf("%w: resize needs a block id and an end time", ErrInvalidRequest)
		}
	case RequestConvert:
		if r.TaskID == "" || r.Start.IsZero() {
			return fmt.Errorf("%w: convert needs a task id and a start time", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}
	return nil
}

// Apply validates and commits a request as one atomic step, returning the
// resulting block. On error the schedule is unchanged and the caller should
// revert any preview it has drawn.
func (s *Store) Apply(r Request) (TimeBlock, error) {
	if err := r.Validate(); err != nil {
		return TimeBlock{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Kind {
	case RequestCreate:
		return s.addTimeBlock(r.Start, r.End, r.Title)
	case RequestConvert:
		return s.convertTask(r.TaskID, r.Start)
	}

	i := s.blockIndex(r.BlockID)
	if i < 0 {
		return TimeBlock{}, fmt.Errorf("%w: %s", ErrTimeBlockNotFound, r.BlockID)
	}
	current := s.blocks[i]

	var u TimeBlockUpdate
	switch r.Kind {
	case RequestMove:
		start := r.Start
		end := r.Start.Add(current.Duration())
		u.Start, u.End = &start, &end
	case RequestResize:
		end := r.End
		u.End = &end
		if !r.Start.IsZero() {
			start := r.Start
			u.Start = &start
		}
	}

	if err := s.updateTimeBlock(r.BlockID, u); err != nil {
		return TimeBlock{}, err
	}
	return s.blocks[i], nil
}
