package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/javiermolinar/chronoblock/internal/schedule"
)

// StorageKey names the single document the JSON adapter keeps.
const StorageKey = "chronoblock-storage"

// jsonVersion is written into every document.
const jsonVersion = 1

// document is the on-disk JSON shape.
type document struct {
	State   schedule.State `json:"state"`
	Version int            `json:"version"`
}

// JSONFile stores the schedule as one JSON document on disk.
type JSONFile struct {
	path string
}

// NewJSONFile returns an adapter for the document at path. The file is
// created on the first save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the document location.
func (j *JSONFile) Path() string {
	return j.path
}

// Load reads the document. A missing file yields an empty state.
func (j *JSONFile) Load(ctx context.Context) (schedule.State, error) {
	if err := ctx.Err(); err != nil {
		return schedule.State{}, err
	}

	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return schedule.State{}, nil
		}
		return schedule.State{}, fmt.Errorf("reading %s: %w", j.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return schedule.State{}, fmt.Errorf("parsing %s: %w", j.path, err)
	}
	if doc.Version > jsonVersion {
		return schedule.State{}, fmt.Errorf("%s has version %d, newest supported is %d", j.path, doc.Version, jsonVersion)
	}

	for i := range doc.State.Tasks {
		doc.State.Tasks[i].CreatedAt = doc.State.Tasks[i].CreatedAt.Local()
	}
	for i := range doc.State.TimeBlocks {
		b := &doc.State.TimeBlocks[i]
		b.Start, b.End = b.Start.Local(), b.End.Local()
	}
	return doc.State, nil
}

// Save writes the document through a temp file and rename, so a crash
// never leaves a half-written file behind.
func (j *JSONFile) Save(ctx context.Context, state schedule.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(document{State: state, Version: jsonVersion}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+StorageKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), j.path); err != nil {
		return fmt.Errorf("replacing %s: %w", j.path, err)
	}
	return nil
}

// Close is a no-op; JSONFile holds no open handles.
func (j *JSONFile) Close() error {
	return nil
}
