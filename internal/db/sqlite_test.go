package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// sampleState returns a small schedule shared by the adapter tests.
func sampleState() schedule.State {
	day := time.Date(2025, 1, 9, 0, 0, 0, 0, time.Local)
	return schedule.State{
		Tasks: []schedule.Task{
			{ID: "t-2", Title: "Write intro", EstimatedDuration: 20, CreatedAt: day.Add(7 * time.Hour)},
			{ID: "t-1", Title: "Read paper", Description: "section 3", Color: "#89b4fa", CreatedAt: day.Add(8 * time.Hour)},
		},
		TimeBlocks: []schedule.TimeBlock{
			{ID: "b-1", Title: "Standup", Start: day.Add(9 * time.Hour), End: day.Add(9*time.Hour + 30*time.Minute)},
			{ID: "b-2", Title: "Focus", Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour), Completed: true, Color: "#a6e3a1"},
		},
	}
}

// assertStateEqual compares states by value, using time.Equal for timestamps.
func assertStateEqual(t *testing.T, got, want schedule.State) {
	t.Helper()

	if len(got.Tasks) != len(want.Tasks) {
		t.Fatalf("got %d tasks, want %d", len(got.Tasks), len(want.Tasks))
	}
	for i := range want.Tasks {
		g, w := got.Tasks[i], want.Tasks[i]
		if !g.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("task %d: CreatedAt = %v, want %v", i, g.CreatedAt, w.CreatedAt)
		}
		g.CreatedAt, w.CreatedAt = time.Time{}, time.Time{}
		if g != w {
			t.Errorf("task %d: got %+v, want %+v", i, g, w)
		}
	}

	if len(got.TimeBlocks) != len(want.TimeBlocks) {
		t.Fatalf("got %d time blocks, want %d", len(got.TimeBlocks), len(want.TimeBlocks))
	}
	for i := range want.TimeBlocks {
		g, w := got.TimeBlocks[i], want.TimeBlocks[i]
		if !g.Start.Equal(w.Start) || !g.End.Equal(w.End) {
			t.Errorf("block %d: got %v-%v, want %v-%v", i, g.Start, g.End, w.Start, w.End)
		}
		g.Start, g.End, w.Start, w.End = time.Time{}, time.Time{}, time.Time{}, time.Time{}
		if g != w {
			t.Errorf("block %d: got %+v, want %+v", i, g, w)
		}
	}
}

func TestSQLite_LoadEmpty(t *testing.T) {
	repo := newTestRepo(t)

	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !state.IsEmpty() {
		t.Errorf("expected empty state, got %+v", state)
	}
}

func TestSQLite_SaveAndLoad(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	want := sampleState()

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertStateEqual(t, got, want)
}

func TestSQLite_SaveReplacesPreviousState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	smaller := sampleState()
	smaller.Tasks = smaller.Tasks[:1]
	smaller.TimeBlocks = nil
	if err := repo.Save(ctx, smaller); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertStateEqual(t, got, smaller)
}

func TestSQLite_PreservesTaskOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	state := sampleState() // t-2 before t-1
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Tasks[0].ID != "t-2" || got.Tasks[1].ID != "t-1" {
		t.Errorf("task order not preserved: %s, %s", got.Tasks[0].ID, got.Tasks[1].ID)
	}
}

func TestSQLite_DuplicateIDRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	bad := sampleState()
	bad.TimeBlocks = append(bad.TimeBlocks, bad.TimeBlocks[0])
	if err := repo.Save(ctx, bad); err == nil {
		t.Fatal("expected error for duplicate block id")
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertStateEqual(t, got, sampleState())
}

func TestSQLite_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	repo, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed on reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertStateEqual(t, got, sampleState())
}

func TestSQLite_WithStore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	store, err := schedule.Open(ctx, repo)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	start := time.Date(2025, 1, 9, 14, 0, 0, 0, time.Local)
	task, err := store.AddTask("Write intro", "", 20)
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if _, err := store.ConvertTaskToTimeBlock(task.ID, start); err != nil {
		t.Fatalf("ConvertTaskToTimeBlock failed: %v", err)
	}
	if err := store.SaveErr(); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Tasks) != 0 || len(got.TimeBlocks) != 1 {
		t.Fatalf("unexpected stored state: %+v", got)
	}
	if !got.TimeBlocks[0].End.Equal(start.Add(20 * time.Minute)) {
		t.Errorf("got end %v, want 14:20", got.TimeBlocks[0].End)
	}
}

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}
