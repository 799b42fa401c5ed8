package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestRequestValidate(t *testing.T) {
	start := at("09:00")
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"create", Request{Kind: RequestCreate, Start: start}, false},
		{"create without start", Request{Kind: RequestCreate}, true},
		{"move", Request{Kind: RequestMove, BlockID: "b", Start: start}, false},
		{"move without id", Request{Kind: RequestMove, Start: start}, true},
		{"resize", Request{Kind: RequestResize, BlockID: "b", End: start}, false},
		{"resize without end", Request{Kind: RequestResize, BlockID: "b"}, true},
		{"convert", Request{Kind: RequestConvert, TaskID: "t", Start: start}, false},
		{"convert without task", Request{Kind: RequestConvert, Start: start}, true},
		{"unknown kind", Request{Kind: "drag"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestApply_Create(t *testing.T) {
	s, _ := newTestStore(t)

	b, err := s.Apply(Request{Kind: RequestCreate, Start: at("09:00"), Title: "Standup"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !b.End.Equal(at("09:45")) {
		t.Errorf("got end %v, want 09:45", b.End)
	}

	_, err = s.Apply(Request{Kind: RequestCreate, Start: at("09:30")})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestApply_MoveKeepsDuration(t *testing.T) {
	s, _ := newTestStore(t)
	b := mustAddBlock(t, s, "09:00", "10:30", "Focus")

	moved, err := s.Apply(Request{Kind: RequestMove, BlockID: b.ID, Start: at("13:00")})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !moved.Start.Equal(at("13:00")) || !moved.End.Equal(at("14:30")) {
		t.Errorf("got %v-%v, want 13:00-14:30", moved.Start, moved.End)
	}
	if moved.ID != b.ID || moved.Title != b.Title {
		t.Errorf("move changed identity: %+v", moved)
	}
}

func TestApply_MoveConflictReverts(t *testing.T) {
	s, _ := newTestStore(t)
	b := mustAddBlock(t, s, "09:00", "10:00", "Focus")
	mustAddBlock(t, s, "11:00", "12:00", "Lunch")

	_, err := s.Apply(Request{Kind: RequestMove, BlockID: b.ID, Start: at("10:30")})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, _ := s.TimeBlock(b.ID)
	if !got.Start.Equal(at("09:00")) {
		t.Errorf("block moved despite conflict: %v", got.Start)
	}
}

func TestApply_Resize(t *testing.T) {
	s, _ := newTestStore(t)
	b := mustAddBlock(t, s, "09:00", "10:00", "Focus")

	resized, err := s.Apply(Request{Kind: RequestResize, BlockID: b.ID, End: at("10:15")})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !resized.Start.Equal(at("09:00")) || !resized.End.Equal(at("10:15")) {
		t.Errorf("got %v-%v, want 09:00-10:15", resized.Start, resized.End)
	}

	resized, err = s.Apply(Request{Kind: RequestResize, BlockID: b.ID, Start: at("08:30"), End: at("09:30")})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !resized.Start.Equal(at("08:30")) || !resized.End.Equal(at("09:30")) {
		t.Errorf("got %v-%v, want 08:30-09:30", resized.Start, resized.End)
	}

	_, err = s.Apply(Request{Kind: RequestResize, BlockID: b.ID, End: at("08:00")})
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestApply_Convert(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Read paper", "", 30)

	b, err := s.Apply(Request{Kind: RequestConvert, TaskID: task.ID, Start: at("15:00")})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if b.Duration() != 30*time.Minute {
		t.Errorf("got duration %v, want 30m", b.Duration())
	}
	if len(s.Tasks()) != 0 {
		t.Error("expected task removed")
	}
}

func TestApply_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Apply(Request{Kind: RequestMove, BlockID: "missing", Start: at("09:00")})
	if !errors.Is(err, ErrTimeBlockNotFound) {
		t.Errorf("expected ErrTimeBlockNotFound, got %v", err)
	}
	_, err = s.Apply(Request{Kind: RequestConvert, TaskID: "missing", Start: at("09:00")})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
