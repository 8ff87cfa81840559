package queue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskqueue-go/jobqueue/codec"
	"github.com/taskqueue-go/jobqueue/fsutils"
)

// fileSchemaVersion is bumped whenever the on-disk fileState layout changes.
const fileSchemaVersion = 1

// fileState is the top-level structure persisted to the file.
type fileState struct {
	SchemaVersion int    `json:"schemaVersion" xml:"schemaVersion" yaml:"schemaVersion"`
	Jobs          []*Job `json:"jobs" xml:"jobs" yaml:"jobs"`
}

// FileAdapter is a file-backed Adapter. It persists every job to a single
// file using the codec package; the serialization format (YAML, JSON, or
// XML) is determined from the file extension via fsutils.LookupContentType.
// Each WriteTx reads the whole file into a fresh jobStore, runs fn against
// it, and -- only if fn returns nil -- rewrites the file atomically
// (temp file then rename). A failing fn leaves the file untouched.
type FileAdapter struct {
	mu   sync.Mutex
	path string
	c    codec.Codec
}

// NewFileAdapter creates a FileAdapter that persists state to the given
// file path. The directory is created if missing; the file itself is
// created with an empty job list if it does not already exist.
func NewFileAdapter(path string) (*FileAdapter, error) {
	contentType := fsutils.LookupContentType(path)

	c, err := codec.GetDefault(contentType)
	if err != nil {
		return nil, fmt.Errorf("queue: unsupported file type %q for %s: %w", contentType, filepath.Base(path), err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	fa := &FileAdapter{path: path, c: c}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.DebugF("FileAdapter: creating initial state file %s", path)
		if writeErr := fa.writeState(&fileState{SchemaVersion: fileSchemaVersion}); writeErr != nil {
			logger.ErrorF("FileAdapter: failed to create initial state file %s: %v", path, writeErr)
			return nil, writeErr
		}
	}

	logger.InfoF("FileAdapter: initialized with path=%s contentType=%s", path, contentType)
	return fa, nil
}

func (fa *FileAdapter) readState() (*fileState, error) {
	f, err := os.Open(fa.path)
	if err != nil {
		logger.ErrorF("FileAdapter: failed to open state file %s: %v", fa.path, err)
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var state fileState
	if err := fa.c.Read(f, &state); err != nil {
		logger.ErrorF("FileAdapter: failed to decode state file %s: %v", fa.path, err)
		return nil, err
	}
	return &state, nil
}

// writeState persists the full state to the file atomically: it writes to
// a temp file first, then renames it over the real path.
func (fa *FileAdapter) writeState(state *fileState) error {
	state.SchemaVersion = fileSchemaVersion

	tmp := fa.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		logger.ErrorF("FileAdapter: failed to create temp file %s: %v", tmp, err)
		return err
	}

	if writeErr := fa.c.Write(state, f); writeErr != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		logger.ErrorF("FileAdapter: failed to encode state to %s: %v", tmp, writeErr)
		return writeErr
	}
	if closeErr := f.Close(); closeErr != nil {
		_ = os.Remove(tmp)
		return closeErr
	}

	return os.Rename(tmp, fa.path)
}

// WriteTx loads the current file state into a fresh jobStore, runs fn
// against it, and rewrites the file only if fn succeeds.
func (fa *FileAdapter) WriteTx(_ context.Context, fn func(tx Tx) error) error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	state, err := fa.readState()
	if err != nil {
		return err
	}

	store := newJobStore()
	for _, j := range state.Jobs {
		if err := store.Insert(j); err != nil {
			return err
		}
	}

	if err := fn(store); err != nil {
		return err
	}

	state.Jobs = store.all()
	return fa.writeState(state)
}

// Close is a no-op; the file is opened and closed on each WriteTx.
func (fa *FileAdapter) Close() error {
	return nil
}
