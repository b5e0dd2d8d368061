package runner

import (
	"os"
	"path/filepath"
)

// markerFileName is the zero-byte flag file signalling that a
// continuable conversation exists. It lives in the shared temp
// directory and is cleared only by OS temp cleanup or Reset.
const markerFileName = "ai-cli-conversation"

// Tracker records whether a continuable conversation has started this
// session. Presence of the marker file is the entire contract.
type Tracker struct {
	path string
}

// NewTracker creates a tracker backed by the platform temp directory.
func NewTracker() *Tracker {
	return &Tracker{path: filepath.Join(os.TempDir(), markerFileName)}
}

// NewTrackerAt creates a tracker with an explicit marker path.
func NewTrackerAt(path string) *Tracker {
	return &Tracker{path: path}
}

// HasHistory reports whether the marker exists.
func (t *Tracker) HasHistory() bool {
	_, err := os.Stat(t.path)
	return err == nil
}

// MarkStarted creates the marker. Idempotent; creation errors are
// swallowed because the marker is a best-effort signal.
func (t *Tracker) MarkStarted() {
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	f.Close()
}

// Reset removes the marker so the next exchange starts fresh.
func (t *Tracker) Reset() {
	os.Remove(t.path)
}

// Path returns the marker file location.
func (t *Tracker) Path() string {
	return t.path
}
