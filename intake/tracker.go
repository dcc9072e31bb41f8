package intake

import "sync"

// Tracker remembers which paths have been imported and which are being
// imported right now, so one path is never copied twice concurrently or
// copied again after success. State lives for the life of the process.
//
// A path is never in both sets.
type Tracker struct {
	mu        sync.Mutex
	completed map[string]struct{}
	inFlight  map[string]struct{}
}

// NewTracker returns an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		completed: make(map[string]struct{}),
		inFlight:  make(map[string]struct{}),
	}
}

// Claim marks path as in flight. It returns false when path is already
// in flight or already completed, in which case nothing changes.
func (t *Tracker) Claim(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.completed[path]; ok {
		return false
	}
	if _, ok := t.inFlight[path]; ok {
		return false
	}
	t.inFlight[path] = struct{}{}
	return true
}

// ReleaseFailure drops an in-flight claim so a later event may retry the path
func (t *Tracker) ReleaseFailure(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, path)
}

// CommitSuccess moves path from in flight to completed
func (t *Tracker) CommitSuccess(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, path)
	t.completed[path] = struct{}{}
}

// Snapshot returns the sizes of both sets, read under one lock
func (t *Tracker) Snapshot() (completed, inFlight int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed), len(t.inFlight)
}
