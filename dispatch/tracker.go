package dispatch

import (
	"sync"

	"glasskey/platform"
)

// Tracker remembers which foreign window should receive injected input.
// Capture snapshots the focused window when the keyboard appears; Observe
// keeps the snapshot fresh from a foreground watcher; Invalidate drops it
// when the keyboard hides. The watcher callback runs off the UI thread on
// Windows, hence the mutex.
type Tracker struct {
	backend platform.Backend

	mu     sync.Mutex
	handle platform.FocusHandle
}

func NewTracker(b platform.Backend) *Tracker {
	return &Tracker{backend: b}
}

// Capture snapshots the currently focused foreign window. On failure the
// tracker is left empty and dispatching stays inert.
func (t *Tracker) Capture() error {
	h, err := t.backend.CaptureFocus()
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.handle = platform.NoFocus
		return err
	}
	t.handle = h
	return nil
}

// Observe records a foreground change reported by a platform watcher.
func (t *Tracker) Observe(h platform.FocusHandle) {
	if h == platform.NoFocus {
		return
	}
	t.mu.Lock()
	t.handle = h
	t.mu.Unlock()
}

// Invalidate drops the current target; dispatches are no-ops until the next
// Capture or Observe.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	t.handle = platform.NoFocus
	t.mu.Unlock()
}

// Current returns the tracked target, reporting false when there is none.
func (t *Tracker) Current() (platform.FocusHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle, t.handle != platform.NoFocus
}
