package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/chronoblock/internal/config"
	"github.com/javiermolinar/chronoblock/internal/schedule"
	"github.com/javiermolinar/chronoblock/internal/scheduler"
	"github.com/javiermolinar/chronoblock/internal/tui/commands"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// testNow is Thursday 2025-01-09 10:05.
var testNow = time.Date(2025, 1, 9, 10, 5, 0, 0, time.Local)

func at(day int, clock string) time.Time {
	var h, m int
	_, _ = fmt.Sscanf(clock, "%d:%d", &h, &m)
	return time.Date(2025, 1, day, h, m, 0, 0, time.Local)
}

func newStore(p schedule.Persister) *schedule.Store {
	n := 0
	return schedule.New(p,
		schedule.WithClock(func() time.Time { return testNow }),
		schedule.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func newModel(t *testing.T, store *schedule.Store) Model {
	t.Helper()
	s := scheduler.New([]string{"monday", "tuesday", "wednesday", "thursday", "friday"}, "09:00", "17:00", 15*time.Minute)
	return New(store, config.Default(),
		WithClock(func() time.Time { return testNow }),
		WithScheduler(s),
	)
}

func addBlock(t *testing.T, store *schedule.Store, start, end time.Time, title string) schedule.TimeBlock {
	t.Helper()
	b, err := store.AddTimeBlock(start, end, title)
	if err != nil {
		t.Fatalf("AddTimeBlock(%s): %v", title, err)
	}
	return b
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys and drops the returned commands.
func press(m Model, keys ...string) Model {
	for _, k := range keys {
		updated, _ := m.Update(key(k))
		m = updated.(Model)
	}
	return m
}

// submit sends k, runs the store command it returns and feeds the reply back.
func submit(t *testing.T, m Model, k string) Model {
	t.Helper()
	updated, cmd := m.Update(key(k))
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("key %q returned no command", k)
	}
	msg := cmd()
	switch msg.(type) {
	case commands.AppliedMsg, commands.RejectedMsg, commands.MutatedMsg, commands.ErrMsg:
	default:
		t.Fatalf("key %q returned %T, want a store reply", k, msg)
	}
	updated, _ = m.Update(msg)
	return updated.(Model)
}

func TestNew_CursorStartsAtNow(t *testing.T) {
	m := newModel(t, newStore(nil))

	if !m.day.Equal(at(9, "00:00")) {
		t.Errorf("day = %v, want 2025-01-09", m.day)
	}
	if got := m.cursorTime(); !got.Equal(at(9, "10:00")) {
		t.Errorf("cursor at %v, want 10:00", got)
	}
	if m.mode != ModeNormal || m.focus != paneTimeline {
		t.Errorf("mode %v focus %v, want normal on the timeline", m.mode, m.focus)
	}
}

func TestTimelineWidensForBlocksOutsideWindow(t *testing.T) {
	store := newStore(nil)
	addBlock(t, store, at(9, "07:30"), at(9, "08:00"), "Gym")
	addBlock(t, store, at(9, "17:00"), at(9, "17:50"), "Call")
	m := newModel(t, store)

	start, end := m.timelineBounds()
	if !start.Equal(at(9, "07:30")) || !end.Equal(at(9, "18:00")) {
		t.Errorf("bounds = %s-%s, want 07:30-18:00", start.Format("15:04"), end.Format("15:04"))
	}
}

func TestQuickAddBlock(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantTitle string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{name: "range", line: "Standup 09:00-09:30", wantTitle: "Standup", wantStart: at(9, "09:00"), wantEnd: at(9, "09:30")},
		{name: "cursor and duration", line: "Focus 30m", wantTitle: "Focus", wantStart: at(9, "10:00"), wantEnd: at(9, "10:30")},
		{name: "start only uses default", line: "Review 14:00", wantTitle: "Review", wantStart: at(9, "14:00"), wantEnd: at(9, "14:45")},
		{name: "empty uses defaults", line: "", wantTitle: schedule.DefaultBlockTitle, wantStart: at(9, "10:00"), wantEnd: at(9, "10:45")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(nil)
			m := press(newModel(t, store), "n")
			if m.mode != ModeInput {
				t.Fatalf("mode = %v, want input", m.mode)
			}
			if tt.line != "" {
				m = press(m, tt.line)
			}
			m = submit(t, m, "enter")

			blocks := store.TimeBlocks()
			if len(blocks) != 1 {
				t.Fatalf("got %d blocks, want 1", len(blocks))
			}
			b := blocks[0]
			if b.Title != tt.wantTitle || !b.Start.Equal(tt.wantStart) || !b.End.Equal(tt.wantEnd) {
				t.Errorf("got %q %s, want %q %s", b.Title, span(b.Start, b.End), tt.wantTitle, span(tt.wantStart, tt.wantEnd))
			}
			if m.mode != ModeNormal {
				t.Errorf("mode = %v after submit, want normal", m.mode)
			}
			if !strings.HasPrefix(m.status, "Created ") || m.statusErr {
				t.Errorf("status = %q", m.status)
			}
			if !m.cursorTime().Equal(tt.wantStart) {
				t.Errorf("cursor at %v, want the new block", m.cursorTime())
			}
		})
	}
}

func TestQuickAddConflictIsRejected(t *testing.T) {
	store := newStore(nil)
	addBlock(t, store, at(9, "10:00"), at(9, "11:00"), "Standup")
	m := press(newModel(t, store), "n", "Clash 10:30 30m")
	m = submit(t, m, "enter")

	if len(store.TimeBlocks()) != 1 {
		t.Errorf("got %d blocks, want the original only", len(store.TimeBlocks()))
	}
	if !m.statusErr || !strings.Contains(m.status, "Cannot create block") || !strings.Contains(m.status, `"Standup"`) {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}
}

func TestQuickAddParseError(t *testing.T) {
	store := newStore(nil)
	m := press(newModel(t, store), "n", "Nap 0m", "enter")

	if len(store.TimeBlocks()) != 0 {
		t.Error("nothing should be created")
	}
	if !m.statusErr {
		t.Errorf("status = %q, want an error", m.status)
	}
}

func TestInputEscCancels(t *testing.T) {
	store := newStore(nil)
	m := press(newModel(t, store), "n", "Standup", "esc")

	if m.mode != ModeNormal {
		t.Errorf("mode = %v, want normal", m.mode)
	}
	if len(store.TimeBlocks()) != 0 {
		t.Error("esc should not create a block")
	}
}

func TestMoveCommit(t *testing.T) {
	store := newStore(nil)
	b := addBlock(t, store, at(9, "10:00"), at(9, "10:30"), "Review")
	m := press(newModel(t, store), "m")
	if m.mode != ModeMove || m.move == nil {
		t.Fatalf("mode = %v, want move", m.mode)
	}

	m = press(m, "j", "j")
	if !m.move.start.Equal(at(9, "10:30")) || m.move.conflict {
		t.Fatalf("preview at %v conflict=%v", m.move.start, m.move.conflict)
	}
	if got, _ := store.TimeBlock(b.ID); !got.Start.Equal(at(9, "10:00")) {
		t.Fatal("dragging must not touch the store")
	}

	m = submit(t, m, "enter")
	got, _ := store.TimeBlock(b.ID)
	if !got.Start.Equal(at(9, "10:30")) || !got.End.Equal(at(9, "11:00")) {
		t.Errorf("block at %s, want 10:30-11:00", span(got.Start, got.End))
	}
	if m.mode != ModeNormal || m.move != nil {
		t.Errorf("mode = %v move = %v after drop", m.mode, m.move)
	}
	if m.status != "Moved Review to 10:30-11:00" {
		t.Errorf("status = %q", m.status)
	}
}

func TestMoveConflictRevertsPreview(t *testing.T) {
	store := newStore(nil)
	a := addBlock(t, store, at(9, "10:00"), at(9, "10:30"), "Review")
	addBlock(t, store, at(9, "10:30"), at(9, "11:30"), "Lunch")

	m := press(newModel(t, store), "m", "j")
	if !m.move.conflict || m.move.blocker.Title != "Lunch" {
		t.Fatalf("preview conflict=%v blocker=%q, want Lunch", m.move.conflict, m.move.blocker.Title)
	}
	m.width, m.height = 120, 40
	if view := m.View(); !strings.Contains(view, "overlaps Lunch") {
		t.Errorf("view does not flag the conflict:\n%s", view)
	}

	m = submit(t, m, "enter")
	got, _ := store.TimeBlock(a.ID)
	if !got.Start.Equal(at(9, "10:00")) {
		t.Errorf("block moved to %v, want unchanged", got.Start)
	}
	if m.move != nil || m.mode != ModeNormal {
		t.Error("preview should be dropped after rejection")
	}
	if !m.statusErr || !strings.Contains(m.status, "Cannot move block") {
		t.Errorf("status = %q", m.status)
	}
}

func TestMoveTouchingIsAllowed(t *testing.T) {
	store := newStore(nil)
	a := addBlock(t, store, at(9, "10:00"), at(9, "10:30"), "Review")
	addBlock(t, store, at(9, "11:00"), at(9, "12:00"), "Lunch")

	m := press(newModel(t, store), "m", "j", "j")
	if m.move.conflict {
		t.Fatal("a block ending where another starts does not conflict")
	}
	submit(t, m, "enter")
	if got, _ := store.TimeBlock(a.ID); !got.End.Equal(at(9, "11:00")) {
		t.Errorf("end = %v, want 11:00", got.End)
	}
}

func TestMoveCancel(t *testing.T) {
	store := newStore(nil)
	b := addBlock(t, store, at(9, "10:00"), at(9, "10:30"), "Review")
	m := press(newModel(t, store), "m", "J", "esc")

	if m.mode != ModeNormal || m.move != nil {
		t.Errorf("mode = %v, want normal with no preview", m.mode)
	}
	if got, _ := store.TimeBlock(b.ID); !got.Start.Equal(b.Start) {
		t.Error("cancelled move changed the block")
	}
}

func TestMoveToNextDay(t *testing.T) {
	store := newStore(nil)
	b := addBlock(t, store, at(9, "10:00"), at(9, "10:30"), "Review")
	m := press(newModel(t, store), "m", "l")

	if !m.day.Equal(at(10, "00:00")) {
		t.Errorf("view should follow the preview, day = %v", m.day)
	}
	submit(t, m, "enter")
	if got, _ := store.TimeBlock(b.ID); !got.Start.Equal(at(10, "10:00")) {
		t.Errorf("start = %v, want Jan 10 10:00", got.Start)
	}
}

func TestMoveWithoutBlock(t *testing.T) {
	m := press(newModel(t, newStore(nil)), "m")
	if m.mode != ModeNormal || !m.statusErr {
		t.Errorf("mode = %v status = %q", m.mode, m.status)
	}
}

func TestResize(t *testing.T) {
	store := newStore(nil)
	b := addBlock(t, store, at(9, "10:00"), at(9, "10:15"), "Review")
	m := newModel(t, store)

	m = submit(t, m, "+")
	if got, _ := store.TimeBlock(b.ID); !got.End.Equal(at(9, "10:30")) {
		t.Fatalf("end = %v, want 10:30", got.End)
	}

	m = submit(t, m, "-")
	m = submit(t, m, "-")
	got, _ := store.TimeBlock(b.ID)
	if !got.End.Equal(at(9, "10:15")) {
		t.Errorf("end = %v, want 10:15 after the empty resize is refused", got.End)
	}
	if !m.statusErr || !strings.Contains(m.status, schedule.ErrInvalidInterval.Error()) {
		t.Errorf("status = %q", m.status)
	}
}

func TestResizeIntoNeighbourIsRejected(t *testing.T) {
	store := newStore(nil)
	b := addBlock(t, store, at(9, "10:00"), at(9, "10:30"), "Review")
	addBlock(t, store, at(9, "10:30"), at(9, "11:00"), "Lunch")

	m := submit(t, newModel(t, store), "+")
	if got, _ := store.TimeBlock(b.ID); !got.End.Equal(at(9, "10:30")) {
		t.Errorf("end = %v, want unchanged", got.End)
	}
	if !strings.Contains(m.status, "Cannot resize block") {
		t.Errorf("status = %q", m.status)
	}
}

func TestToggleRenameDelete(t *testing.T) {
	store := newStore(nil)
	b := addBlock(t, store, at(9, "10:00"), at(9, "10:30"), "Review")
	m := newModel(t, store)

	m = submit(t, m, "x")
	if got, _ := store.TimeBlock(b.ID); !got.Completed {
		t.Error("x should complete the block")
	}

	m = press(m, "r")
	if m.input.Value() != "Review" {
		t.Errorf("rename prompt = %q, want the current title", m.input.Value())
	}
	m = press(m, "ctrl+u", "Code review")
	m = submit(t, m, "enter")
	if got, _ := store.TimeBlock(b.ID); got.Title != "Code review" {
		t.Errorf("title = %q", got.Title)
	}

	m = submit(t, m, "d")
	if len(store.TimeBlocks()) != 0 {
		t.Error("d should delete the block")
	}
	if m.status != "Deleted Code review" {
		t.Errorf("status = %q", m.status)
	}
}

func TestTaskAddAndSchedule(t *testing.T) {
	store := newStore(nil)
	m := press(newModel(t, store), "a", "Write intro 20m")
	m = submit(t, m, "enter")

	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Write intro" || tasks[0].EstimatedDuration != 20 {
		t.Fatalf("tasks = %+v", tasks)
	}

	m = press(m, "tab")
	if m.focus != paneTasks {
		t.Fatal("tab should focus the task list")
	}
	m = submit(t, m, "s")

	if len(store.Tasks()) != 0 {
		t.Error("scheduled task should leave the list")
	}
	blocks := store.TimeBlocks()
	if len(blocks) != 1 || !blocks[0].Start.Equal(at(9, "10:00")) || !blocks[0].End.Equal(at(9, "10:20")) {
		t.Fatalf("blocks = %+v", blocks)
	}
	if m.status != "Scheduled Write intro at 10:00-10:20" {
		t.Errorf("status = %q", m.status)
	}
}

func TestTaskScheduleConflictKeepsTask(t *testing.T) {
	store := newStore(nil)
	addBlock(t, store, at(9, "10:00"), at(9, "11:00"), "Standup")
	if _, err := store.AddTask("Write intro", "", 0); err != nil {
		t.Fatal(err)
	}

	m := submit(t, press(newModel(t, store), "tab"), "s")
	if len(store.Tasks()) != 1 {
		t.Error("task should survive a refused conversion")
	}
	if !strings.Contains(m.status, "Cannot schedule task") {
		t.Errorf("status = %q", m.status)
	}
}

func TestTaskWithStartTimeIsRefused(t *testing.T) {
	store := newStore(nil)
	m := press(newModel(t, store), "a", "Write 10:00", "enter")

	if len(store.Tasks()) != 0 {
		t.Error("no task should be added")
	}
	if !m.statusErr {
		t.Errorf("status = %q, want an error", m.status)
	}
}

func TestTaskToggleAndDelete(t *testing.T) {
	store := newStore(nil)
	task, err := store.AddTask("Read paper", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	m := press(newModel(t, store), "tab")

	m = submit(t, m, "x")
	if got, _ := store.Task(task.ID); !got.Completed {
		t.Error("x should complete the task")
	}
	submit(t, m, "d")
	if len(store.Tasks()) != 0 {
		t.Error("d should delete the task")
	}
}

func TestDayNavigation(t *testing.T) {
	m := newModel(t, newStore(nil))

	tests := []struct {
		key  string
		want time.Time
	}{
		{"l", at(10, "00:00")},
		{"h", at(9, "00:00")},
		{"h", at(8, "00:00")},
		{"L", at(15, "00:00")},
		{"t", at(9, "00:00")},
		{"H", at(2, "00:00")},
	}
	for _, tt := range tests {
		m = press(m, tt.key)
		if !m.day.Equal(tt.want) {
			t.Errorf("after %q day = %s, want %s", tt.key, m.day.Format(time.DateOnly), tt.want.Format(time.DateOnly))
		}
	}
	if !m.cursorTime().Equal(at(2, "10:00")) {
		t.Errorf("cursor should keep its clock time, got %v", m.cursorTime())
	}
}

func TestCursorMovement(t *testing.T) {
	store := newStore(nil)
	addBlock(t, store, at(9, "13:00"), at(9, "14:00"), "Lunch")
	m := newModel(t, store)

	m = press(m, "j")
	if !m.cursorTime().Equal(at(9, "10:15")) {
		t.Errorf("j: cursor at %v", m.cursorTime())
	}
	m = press(m, "J")
	if !m.cursorTime().Equal(at(9, "13:00")) {
		t.Errorf("J: cursor at %v, want the next block", m.cursorTime())
	}
	m = press(m, "g")
	if m.cursor != 0 {
		t.Errorf("g: cursor = %d", m.cursor)
	}
	m = press(m, "k")
	if m.cursor != 0 {
		t.Errorf("k at the top: cursor = %d", m.cursor)
	}
	m = press(m, "G")
	if !m.cursorTime().Equal(at(9, "16:45")) {
		t.Errorf("G: cursor at %v", m.cursorTime())
	}
}

func TestView(t *testing.T) {
	store := newStore(nil)
	addBlock(t, store, at(9, "09:00"), at(9, "09:30"), "Standup")
	if _, err := store.AddTask("Read paper", "", 20); err != nil {
		t.Fatal(err)
	}
	m := newModel(t, store)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := updated.(Model).View()

	for _, want := range []string{
		"chronoblock",
		"Thursday, Jan 9 2025",
		"(today)",
		"○ Standup  09:00-09:30",
		"Tasks (1 open)",
		"Read paper 20m",
		"1 blocks · 30m · 0% done",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

type failingPersister struct{}

func (failingPersister) Load(context.Context) (schedule.State, error) {
	return schedule.State{}, nil
}

func (failingPersister) Save(context.Context, schedule.State) error {
	return errors.New("disk full")
}

func TestViewShowsSaveError(t *testing.T) {
	store := newStore(failingPersister{})
	addBlock(t, store, at(9, "09:00"), at(9, "09:30"), "Standup")

	view := newModel(t, store).View()
	if !strings.Contains(view, "Not saved") || !strings.Contains(view, "disk full") {
		t.Errorf("view should report the save failure:\n%s", view)
	}
}

func TestClearStatusOnlyClearsLatest(t *testing.T) {
	m := newModel(t, newStore(nil))
	m.setStatus("first", false)
	m.setStatus("second", false)

	updated, _ := m.Update(commands.ClearStatusMsg{Seq: 1})
	m = updated.(Model)
	if m.status != "second" {
		t.Errorf("stale clear removed %q", m.status)
	}

	updated, _ = m.Update(commands.ClearStatusMsg{Seq: 2})
	if got := updated.(Model).status; got != "" {
		t.Errorf("status = %q, want cleared", got)
	}
}

func TestAgendaText(t *testing.T) {
	blocks := []schedule.TimeBlock{
		{Title: "Standup", Start: at(9, "09:00"), End: at(9, "09:30"), Completed: true},
		{Title: "Deep work", Start: at(9, "10:00"), End: at(9, "11:30")},
	}
	want := "Thursday, Jan 9 2025\n[x] 09:00-09:30 Standup\n[ ] 10:00-11:30 Deep work\n"
	if got := agendaText(at(9, "00:00"), blocks); got != want {
		t.Errorf("agendaText() =\n%s\nwant\n%s", got, want)
	}
	if got := agendaText(at(9, "00:00"), nil); !strings.Contains(got, "Nothing scheduled.") {
		t.Errorf("empty agenda = %q", got)
	}
}
