package schedule

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Persister loads and saves full schedule snapshots.
type Persister interface {
	// Load returns the last saved state, or an empty State when nothing was saved.
	Load(ctx context.Context) (State, error)

	// Save stores the complete state. It replaces whatever was saved before.
	Save(ctx context.Context, state State) error
}

// Store owns all tasks and time blocks.
// It is safe for concurrent use; each operation applies atomically.
type Store struct {
	mu        sync.Mutex
	persister Persister
	tasks     []Task      // creation order
	blocks    []TimeBlock // insertion order; readers sort by start

	now             func() time.Time
	newID           func() string
	logger          *slog.Logger
	defaultDuration time.Duration
	saveTimeout     time.Duration
	onSaveError     func(error)
	saveErr         error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for task creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the function that mints task and block IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultDuration sets the block length used when no end or estimate is given.
func WithDefaultDuration(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.defaultDuration = d
		}
	}
}

// WithSaveTimeout bounds each write-through save.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// WithSaveErrorHandler registers a callback for failed saves.
// The callback runs while the store is locked and must not call back into it.
func WithSaveErrorHandler(fn func(error)) Option {
	return func(s *Store) {
		s.onSaveError = fn
	}
}

// New creates an empty store backed by p. A nil Persister keeps state in memory only.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister:       p,
		now:             time.Now,
		newID:           uuid.NewString,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultDuration: DefaultDuration,
		saveTimeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and seeds it from p.Load.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := New(p, opts...)
	if p == nil {
		return s, nil
	}

	state, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	s.seed(state)
	return s, nil
}

// seed installs loaded state. Stored data that already breaks the
// no-overlap rule is kept, since it is the user's, but reported.
func (s *Store) seed(state State) {
	s.tasks = slices.Clone(state.Tasks)
	s.blocks = slices.Clone(state.TimeBlocks)

	for i, b := range s.blocks {
		if !b.End.After(b.Start) {
			s.logger.Warn("stored time block has an empty interval", "id", b.ID, "title", b.Title)
		}
		for _, other := range s.blocks[i+1:] {
			if b.Overlaps(other.Start, other.End) {
				s.logger.Warn("stored time blocks overlap",
					"id", b.ID, "other_id", other.ID,
					"title", b.Title, "other_title", other.Title)
			}
		}
	}
	s.logger.Debug("schedule loaded", "tasks", len(s.tasks), "time_blocks", len(s.blocks))
}

// DefaultDuration returns the block length used when none is given.
func (s *Store) DefaultDuration() time.Duration {
	return s.defaultDuration
}

// SaveErr returns the error from the most recent failed save, or nil once a
// later save succeeds. In-memory state stays authoritative either way.
func (s *Store) SaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// CheckConflict reports whether [start, end) overlaps any time block other
// than excludeID. It has no side effects.
func (s *Store) CheckConflict(start, end time.Time, excludeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := s.findConflict(start, end, excludeID)
	return found
}

// FindConflict returns the first block, by start time, that overlaps
// [start, end), ignoring excludeID.
func (s *Store) FindConflict(start, end time.Time, excludeID string) (TimeBlock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findConflict(start, end, excludeID)
}

func (s *Store) findConflict(start, end time.Time, excludeID string) (TimeBlock, bool) {
	var (
		hit   TimeBlock
		found bool
	)
	for _, b := range s.blocks {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.Overlaps(start, end) {
			continue
		}
		if !found || b.Start.Before(hit.Start) {
			hit, found = b, true
		}
	}
	return hit, found
}

func conflictError(b TimeBlock) error {
	return fmt.Errorf("%w by %q (%s-%s)",
		ErrConflict, b.Title, b.Start.Format("15:04"), b.End.Format("15:04"))
}

// AddTimeBlock creates a block for [start, end).
// A zero end means start plus the default duration; an empty title means
// DefaultBlockTitle. Returns ErrInvalidInterval or ErrConflict without
// changing state.
func (s *Store) AddTimeBlock(start, end time.Time, title string) (TimeBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTimeBlock(start, end, title)
}

func (s *Store) addTimeBlock(start, end time.Time, title string) (TimeBlock, error) {
	if end.IsZero() {
		end = start.Add(s.defaultDuration)
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultBlockTitle
	}
	if !end.After(start) {
		return TimeBlock{}, ErrInvalidInterval
	}
	if hit, found := s.findConflict(start, end, ""); found {
		return TimeBlock{}, conflictError(hit)
	}

	block := TimeBlock{
		ID:    s.newID(),
		Title: title,
		Start: start,
		End:   end,
	}
	s.blocks = append(s.blocks, block)
	s.logger.Debug("time block added", "id", block.ID, "start", block.Start, "end", block.End)
	s.persist("add time block")
	return block, nil
}

// UpdateTimeBlock merges u into the block with the given id.
// When u moves either edge, the resulting interval is checked against every
// other block. Returns ErrTimeBlockNotFound, ErrEmptyTitle,
// ErrInvalidInterval or ErrConflict without changing state.
func (s *Store) UpdateTimeBlock(id string, u TimeBlockUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateTimeBlock(id, u)
}

func (s *Store) updateTimeBlock(id string, u TimeBlockUpdate) error {
	i := s.blockIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTimeBlockNotFound, id)
	}

	updated := s.blocks[i]
	if u.Title != nil {
		if strings.TrimSpace(*u.Title) == "" {
			return ErrEmptyTitle
		}
		updated.Title = *u.Title
	}
	if u.Start != nil {
		updated.Start = *u.Start
	}
	if u.End != nil {
		updated.End = *u.End
	}
	if u.Start != nil || u.End != nil {
		if !updated.End.After(updated.Start) {
			return ErrInvalidInterval
		}
		if hit, found := s.findConflict(updated.Start, updated.End, id); found {
			return conflictError(hit)
		}
	}
	if u.Completed != nil {
		updated.Completed = *u.Completed
	}
	if u.Color != nil {
		updated.Color = *u.Color
	}

	s.blocks[i] = updated
	s.logger.Debug("time block updated", "id", id, "start", updated.Start, "end", updated.End)
	s.persist("update time block")
	return nil
}

// DeleteTimeBlock removes the block. Unknown ids are ignored.
func (s *Store) DeleteTimeBlock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.blockIndex(id)
	if i < 0 {
		return
	}
	s.blocks = slices.Delete(s.blocks, i, i+1)
	s.logger.Debug("time block deleted", "id", id)
	s.persist("delete time block")
}

// ToggleTimeBlockCompletion flips the block's completed flag. Unknown ids are ignored.
func (s *Store) ToggleTimeBlockCompletion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.blockIndex(id)
	if i < 0 {
		return
	}
	s.blocks[i].Completed = !s.blocks[i].Completed
	s.persist("toggle time block")
}

// AddTask creates a task. estimatedDuration is in minutes; 0 leaves it unset.
func (s *Store) AddTask(title, description string, estimatedDuration int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(title) == "" {
		return Task{}, ErrEmptyTitle
	}
	if estimatedDuration < 0 {
		return Task{}, ErrInvalidDuration
	}

	t := Task{
		ID:                s.newID(),
		Title:             title,
		Description:       description,
		EstimatedDuration: estimatedDuration,
		CreatedAt:         s.now(),
	}
	s.tasks = append(s.tasks, t)
	s.logger.Debug("task added", "id", t.ID, "title", t.Title)
	s.persist("add task")
	return t, nil
}

// UpdateTask merges u into the task with the given id.
func (s *Store) UpdateTask(id string, u TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	updated := s.tasks[i]
	if u.Title != nil {
		if strings.TrimSpace(*u.Title) == "" {
			return ErrEmptyTitle
		}
		updated.Title = *u.Title
	}
	if u.Description != nil {
		updated.Description = *u.Description
	}
	if u.EstimatedDuration != nil {
		if *u.EstimatedDuration < 0 {
			return ErrInvalidDuration
		}
		updated.EstimatedDuration = *u.EstimatedDuration
	}
	if u.Completed != nil {
		updated.Completed = *u.Completed
	}
	if u.Color != nil {
		updated.Color = *u.Color
	}

	s.tasks[i] = updated
	s.persist("update task")
	return nil
}

// DeleteTask removes the task. Unknown ids are ignored.
func (s *Store) DeleteTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.logger.Debug("task deleted", "id", id)
	s.persist("delete task")
}

// ToggleTaskCompletion flips the task's completed flag. Unknown ids are ignored.
func (s *Store) ToggleTaskCompletion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.persist("toggle task")
}

// ConvertTaskToTimeBlock turns a task into a block starting at start.
// The block lasts the task's estimate, or the default duration, and takes
// the task's title and color. The task is removed in the same step. On
// ErrTaskNotFound or ErrConflict nothing changes and the task survives.
func (s *Store) ConvertTaskToTimeBlock(taskID string, start time.Time) (TimeBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convertTask(taskID, start)
}

func (s *Store) convertTask(taskID string, start time.Time) (TimeBlock, error) {
	i := s.taskIndex(taskID)
	if i < 0 {
		return TimeBlock{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	t := s.tasks[i]
	end := start.Add(t.Duration(s.defaultDuration))
	if hit, found := s.findConflict(start, end, ""); found {
		return TimeBlock{}, conflictError(hit)
	}

	block := TimeBlock{
		ID:    s.newID(),
		Title: t.Title,
		Start: start,
		End:   end,
		Color: t.Color,
	}
	s.blocks = append(s.blocks, block)
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.logger.Debug("task converted", "task_id", taskID, "block_id", block.ID, "start", start, "end", end)
	s.persist("convert task")
	return block, nil
}

// Tasks returns a copy of all tasks in creation order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Task returns the task with the given id.
func (s *Store) Task(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// TimeBlocks returns a copy of all blocks sorted by start time.
func (s *Store) TimeBlocks() []TimeBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedBlocks(s.blocks)
}

// TimeBlock returns the block with the given id.
func (s *Store) TimeBlock(id string) (TimeBlock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.blockIndex(id)
	if i < 0 {
		return TimeBlock{}, false
	}
	return s.blocks[i], true
}

// TimeBlocksBetween returns blocks starting in [from, to), sorted by start time.
func (s *Store) TimeBlocksBetween(from, to time.Time) []TimeBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []TimeBlock
	for _, b := range s.blocks {
		if !b.Start.Before(from) && b.Start.Before(to) {
			result = append(result, b)
		}
	}
	return sortedBlocks(result)
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	return State{
		Tasks:      slices.Clone(s.tasks),
		TimeBlocks: sortedBlocks(s.blocks),
	}
}

// persist writes the current state through to the persister. A failed save
// leaves the in-memory change in place and is recorded for SaveErr.
func (s *Store) persist(op string) {
	if s.persister == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, s.snapshot()); err != nil {
		s.saveErr = fmt.Errorf("saving after %s: %w", op, err)
		s.logger.Warn("save failed, keeping in-memory state", "op", op, "error", err)
		if s.onSaveError != nil {
			s.onSaveError(s.saveErr)
		}
		return
	}
	s.saveErr = nil
}

func (s *Store) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) blockIndex(id string) int {
	return slices.IndexFunc(s.blocks, func(b TimeBlock) bool { return b.ID == id })
}

func sortedBlocks(blocks []TimeBlock) []TimeBlock {
	result := slices.Clone(blocks)
	slices.SortFunc(result, func(a, b TimeBlock) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}
