package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glasskey/platform"
)

func TestTrackerCaptureStoresHandle(t *testing.T) {
	b := newFakeBackend()
	tr := NewTracker(b)

	require.NoError(t, tr.Capture())
	h, ok := tr.Current()
	assert.True(t, ok)
	assert.Equal(t, platform.FocusHandle(42), h)
}

func TestTrackerObserveUpdatesTarget(t *testing.T) {
	b := newFakeBackend()
	tr := NewTracker(b)
	require.NoError(t, tr.Capture())

	tr.Observe(77)
	h, ok := tr.Current()
	assert.True(t, ok)
	assert.Equal(t, platform.FocusHandle(77), h)
}

func TestTrackerObserveIgnoresNoFocus(t *testing.T) {
	b := newFakeBackend()
	tr := NewTracker(b)
	require.NoError(t, tr.Capture())

	tr.Observe(platform.NoFocus)
	_, ok := tr.Current()
	assert.True(t, ok, "a bogus watcher event must not drop the target")
}

func TestTrackerInvalidate(t *testing.T) {
	b := newFakeBackend()
	tr := NewTracker(b)
	require.NoError(t, tr.Capture())

	tr.Invalidate()
	_, ok := tr.Current()
	assert.False(t, ok)
}

// The foreground watcher callback runs off the UI thread on Windows.
func TestTrackerConcurrentObserve(t *testing.T) {
	b := newFakeBackend()
	tr := NewTracker(b)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(h platform.FocusHandle) {
			defer wg.Done()
			tr.Observe(h)
			tr.Current()
		}(platform.FocusHandle(i))
	}
	wg.Wait()

	_, ok := tr.Current()
	assert.True(t, ok)
}
