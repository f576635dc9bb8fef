package resolve

import (
	"fmt"
)

// SkippedItem records an entry that was skipped after a failure.
type SkippedItem struct {
	Path   string
	Reason string
}

// State carries the skip-all flag and the skipped-item record across one run.
// The flag only ever moves from false to true.
type State struct {
	skipAll bool
	skipped []SkippedItem
}

// NewState creates a State; skipAll comes from configuration.
func NewState(skipAll bool) *State {
	return &State{skipAll: skipAll}
}

// SkipAll reports whether failures are currently auto-skipped.
func (s *State) SkipAll() bool { return s.skipAll }

// Skipped returns the recorded items in the order they were skipped.
func (s *State) Skipped() []SkippedItem {
	return append([]SkippedItem(nil), s.skipped...)
}

// Handle resolves err through r, records the skip and updates the skip-all
// flag. It returns an *AbortError when the run must stop.
func (s *State) Handle(r *Resolver, path string, err error, phase Phase) error {
	d := r.Resolve(path, err, phase, s.skipAll)
	if d.Aborted() {
		return &AbortError{Path: path, Phase: phase, Err: err}
	}
	if d.SkipAll && !s.skipAll {
		s.skipAll = true
		r.log.LogInfo("Will skip all subsequent errors")
	}
	if d.Diagnostic != "" {
		r.log.LogWarn(d.Diagnostic)
	}
	s.skipped = append(s.skipped, SkippedItem{
		Path:   path,
		Reason: fmt.Sprintf("%s: %v", phase, err),
	})
	return nil
}
