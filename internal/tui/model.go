// Package tui provides the terminal user interface for chronoblock.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/chronoblock/internal/config"
	"github.com/javiermolinar/chronoblock/internal/dateutil"
	"github.com/javiermolinar/chronoblock/internal/logging"
	"github.com/javiermolinar/chronoblock/internal/schedule"
	"github.com/javiermolinar/chronoblock/internal/scheduler"
	"github.com/javiermolinar/chronoblock/internal/tui/commands"
	"github.com/javiermolinar/chronoblock/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMove        // Dragging a block; nothing is committed until enter
	ModeInput       // Typing into the prompt
)

func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModeInput:
		return "input"
	default:
		return "normal"
	}
}

// pane is the focused side of the screen.
type pane int

const (
	paneTimeline pane = iota
	paneTasks
)

// inputKind says what the prompt is collecting.
type inputKind int

const (
	inputNewBlock inputKind = iota
	inputNewTask
	inputRenameBlock
	inputRenameTask
)

const (
	statusTimeout = 4 * time.Second
	nowInterval   = time.Minute
)

// movePreview is the uncommitted position of the block being moved.
type movePreview struct {
	blockID  string
	title    string
	start    time.Time
	end      time.Time
	blocker  schedule.TimeBlock
	conflict bool
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	store  *schedule.Store
	config *config.Config
	sched  *scheduler.Scheduler
	logger *slog.Logger
	now    func() time.Time

	styles *Styles

	// View state
	day        time.Time // midnight of the shown day
	cursor     int       // slot index on the timeline
	taskCursor int
	scroll     int
	focus      pane
	mode       Mode
	move       *movePreview

	// Prompt
	input     textinput.Model
	inputKind inputKind
	targetID  string // block or task being renamed

	// Cached store reads, refreshed by reload
	blocks []schedule.TimeBlock
	tasks  []schedule.Task

	width  int
	height int

	status    string
	statusErr bool
	statusSeq int
	nowTime   time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for key and event tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithScheduler overrides the scheduler built from the config.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(m *Model) {
		if s != nil {
			m.sched = s
		}
	}
}

// New creates a new TUI model over store.
func New(store *schedule.Store, cfg *config.Config, opts ...Option) Model {
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 50

	m := Model{
		store:  store,
		config: cfg,
		logger: logging.Discard(),
		now:    time.Now,
		input:  ti,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.sched == nil {
		m.sched = scheduler.New(cfg.Schedule.Workdays, cfg.Schedule.DayStart, cfg.Schedule.DayEnd, cfg.SlotStep())
	}

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		m.logger.Warn("loading theme", "theme", cfg.UI.Theme, "error", err)
	}
	m.styles = NewStyles(theme.NewPalette(t))

	m.nowTime = m.now()
	m.day = dateutil.TruncateToDay(m.nowTime)
	m.reload()
	m.cursor = m.slotFor(m.nowTime)
	return m
}

// Init starts the now-marker ticker.
func (m Model) Init() tea.Cmd {
	return commands.TickNow(nowInterval)
}

// Run starts the TUI over store and blocks until the user quits.
func Run(store *schedule.Store, cfg *config.Config, opts ...Option) error {
	m := New(store, cfg, opts...)
	m.logger.Debug("tui started", "day", m.day.Format(time.DateOnly))

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// reload refreshes the cached blocks for the shown day and the task list.
func (m *Model) reload() {
	from, to := dateutil.DayRange(m.day)
	m.blocks = m.store.TimeBlocksBetween(from, to)
	m.tasks = m.store.Tasks()
	if m.taskCursor >= len(m.tasks) {
		m.taskCursor = max(len(m.tasks)-1, 0)
	}
	m.clampCursor()
}

// timelineBounds returns the span drawn on the timeline: the working
// window, widened to include any block or preview that spills outside it.
func (m Model) timelineBounds() (start, end time.Time) {
	start, end = m.sched.DayBounds(m.day)
	step := m.sched.Step()

	widen := func(s, e time.Time) {
		if s.Before(start) {
			start = scheduler.Snap(s, step)
		}
		if e.After(end) {
			end = scheduler.Snap(e.Add(step-1), step)
		}
	}
	for _, b := range m.blocks {
		widen(b.Start, b.End)
	}
	if m.move != nil && sameDay(m.move.start, m.day) {
		widen(m.move.start, m.move.end)
	}

	dayStart, dayEnd := dateutil.DayRange(m.day)
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		end = start.Add(step)
	}
	return start, end
}

// slotCount returns the number of rows on the timeline.
func (m Model) slotCount() int {
	start, end := m.timelineBounds()
	return int((end.Sub(start) + m.sched.Step() - 1) / m.sched.Step())
}

// slotTime returns the start of slot i.
func (m Model) slotTime(i int) time.Time {
	start, _ := m.timelineBounds()
	return start.Add(time.Duration(i) * m.sched.Step())
}

// slotFor returns the slot containing t, clamped to the timeline.
func (m Model) slotFor(t time.Time) int {
	start, _ := m.timelineBounds()
	i := int(t.Sub(start) / m.sched.Step())
	return min(max(i, 0), m.slotCount()-1)
}

func (m *Model) clampCursor() {
	m.cursor = min(max(m.cursor, 0), m.slotCount()-1)
}

// cursorTime returns the start of the slot under the cursor.
func (m Model) cursorTime() time.Time {
	return m.slotTime(m.cursor)
}

// blockAt returns the block covering t on the shown day.
func (m Model) blockAt(t time.Time) (schedule.TimeBlock, bool) {
	for _, b := range m.blocks {
		if !t.Before(b.Start) && t.Before(b.End) {
			return b, true
		}
	}
	return schedule.TimeBlock{}, false
}

// selectedBlock returns the block under the timeline cursor.
func (m Model) selectedBlock() (schedule.TimeBlock, bool) {
	return m.blockAt(m.cursorTime())
}

// selectedTask returns the task under the sidebar cursor.
func (m Model) selectedTask() (schedule.Task, bool) {
	if m.taskCursor < 0 || m.taskCursor >= len(m.tasks) {
		return schedule.Task{}, false
	}
	return m.tasks[m.taskCursor], true
}

// setDay switches the shown day and keeps the cursor at the same clock time.
func (m *Model) setDay(day time.Time) {
	at := m.cursorTime()
	clock := time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute
	m.day = dateutil.TruncateToDay(day)
	m.reload()
	m.cursor = m.slotFor(onDay(m.day, clock))
}

// visibleRows returns how many timeline rows fit on screen.
func (m Model) visibleRows() int {
	h := m.height
	if h == 0 {
		h = defaultHeight
	}
	return max(h-chromeLines, 1)
}

// ensureCursorVisible scrolls so the cursor row is on screen.
func (m *Model) ensureCursorVisible() {
	rows := m.visibleRows()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+rows {
		m.scroll = m.cursor - rows + 1
	}
	m.scroll = max(min(m.scroll, m.slotCount()-rows), 0)
}

// setStatus shows msg until it is replaced or times out.
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = msg
	m.statusErr = isErr
	return commands.ClearStatusAfter(statusTimeout, m.statusSeq)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// onDay returns day at the wall clock offset.
func onDay(day time.Time, offset time.Duration) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		int(offset/time.Hour), int(offset%time.Hour/time.Minute), 0, 0, day.Location())
}
