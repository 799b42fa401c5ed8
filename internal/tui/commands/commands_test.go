package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

func TestApplyReturnsAppliedMsg(t *testing.T) {
	store := schedule.New(nil)
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)

	msg := Apply(store, schedule.Request{Kind: schedule.RequestCreate, Title: "Standup", Start: start})()

	applied, ok := msg.(AppliedMsg)
	if !ok {
		t.Fatalf("got %T, want AppliedMsg", msg)
	}
	if applied.Kind != schedule.RequestCreate || applied.Block.Title != "Standup" {
		t.Errorf("unexpected message %+v", applied)
	}
}

func TestApplyReturnsRejectedMsg(t *testing.T) {
	store := schedule.New(nil)
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)
	if _, err := store.AddTimeBlock(start, start.Add(time.Hour), "Standup"); err != nil {
		t.Fatal(err)
	}

	req := schedule.Request{Kind: schedule.RequestCreate, Start: start.Add(30 * time.Minute)}
	msg := Apply(store, req)()

	rejected, ok := msg.(RejectedMsg)
	if !ok {
		t.Fatalf("got %T, want RejectedMsg", msg)
	}
	if !errors.Is(rejected.Err, schedule.ErrConflict) {
		t.Errorf("got error %v, want ErrConflict", rejected.Err)
	}
	if rejected.Request != req {
		t.Errorf("request not carried back: %+v", rejected.Request)
	}
}

func TestMutate(t *testing.T) {
	if msg := Mutate("done", func() error { return nil })(); msg != (MutatedMsg{Status: "done"}) {
		t.Errorf("got %#v", msg)
	}

	boom := errors.New("boom")
	msg := Mutate("done", func() error { return boom })()
	if e, ok := msg.(ErrMsg); !ok || !errors.Is(e.Err, boom) {
		t.Errorf("got %#v, want ErrMsg", msg)
	}
}

func TestCopyToClipboard(t *testing.T) {
	orig := clipboardWrite
	t.Cleanup(func() { clipboardWrite = orig })

	var copied string
	clipboardWrite = func(s string) error {
		copied = s
		return nil
	}

	msg := CopyToClipboard("09:00-09:30 Standup", "Copied")()
	if msg != (StatusMsg{Msg: "Copied"}) {
		t.Errorf("got %#v", msg)
	}
	if copied != "09:00-09:30 Standup" {
		t.Errorf("clipboard got %q", copied)
	}

	clipboardWrite = func(string) error { return errors.New("no clipboard") }
	if _, ok := CopyToClipboard("x", "Copied")().(ErrMsg); !ok {
		t.Error("expected ErrMsg when the clipboard is unavailable")
	}
}
