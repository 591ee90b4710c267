package backend

import (
	"sync"
)

// State records the outcome of backend discovery. It is constructed once and
// injected into the components that need it, rather than living as an
// ambient global; tests get a fresh State per case.
//
// The selection fields are written exactly once, by the locator's single
// probe. LastError may be updated afterwards by callers recording
// operational failures.
type State struct {
	mu sync.RWMutex

	available      bool
	usingFallback  bool
	backendKind    Kind
	backendVersion string
	loadedFrom     string
	lastError      string
}

// NewState returns an empty, unresolved bridge state.
func NewState() *State {
	return &State{}
}

// recordSelection stores the locator's decision. First success wins; the
// locator's sync.Once guarantees a single caller.
func (s *State) recordSelection(b Backend, loadedFrom string, loadErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.available = b.Kind() == KindNative
	s.usingFallback = b.Kind() == KindFallback
	s.backendKind = b.Kind()
	s.backendVersion = b.Version()
	s.loadedFrom = loadedFrom
	if loadErr != nil {
		s.lastError = loadErr.Error()
	}
}

// RecordError notes the most recent operational failure.
func (s *State) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err.Error()
}

// Available reports whether a native backend was loaded.
func (s *State) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// UsingFallback reports whether the software fallback is serving requests.
func (s *State) UsingFallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usingFallback
}

// Snapshot returns the selection fields as a read-only view.
func (s *State) Snapshot() (kind Kind, version, loadedFrom, lastError string, available bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backendKind, s.backendVersion, s.loadedFrom, s.lastError, s.available
}
