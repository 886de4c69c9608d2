package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glasskey/keyboard"
	"glasskey/platform"
)

// fakeBackend records every injection call so tests can assert ordering.
type fakeBackend struct {
	focus      platform.FocusHandle
	captureErr error
	invalid    map[platform.FocusHandle]bool

	activateErr error
	sendErr     error
	clipErr     error

	clipboard string
	calls     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{focus: 42, invalid: map[platform.FocusHandle]bool{}}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) CaptureFocus() (platform.FocusHandle, error) {
	if f.captureErr != nil {
		return platform.NoFocus, f.captureErr
	}
	return f.focus, nil
}

func (f *fakeBackend) IsValid(h platform.FocusHandle) bool {
	return h != platform.NoFocus && !f.invalid[h]
}

func (f *fakeBackend) Activate(h platform.FocusHandle) error {
	f.calls = append(f.calls, fmt.Sprintf("activate %d", h))
	return f.activateErr
}

func (f *fakeBackend) SendChar(r rune) error {
	f.calls = append(f.calls, "char "+string(r))
	return f.sendErr
}

func (f *fakeBackend) SendKey(k platform.Key) error {
	f.calls = append(f.calls, fmt.Sprintf("key %d", k))
	return f.sendErr
}

func (f *fakeBackend) SendPaste() error {
	f.calls = append(f.calls, "paste")
	return f.sendErr
}

func (f *fakeBackend) SetClipboard(text string) error {
	if f.clipErr != nil {
		return f.clipErr
	}
	f.clipboard = text
	f.calls = append(f.calls, "clip "+text)
	return nil
}

func emitKey(base, shifted rune) keyboard.Key {
	return keyboard.Key{Label: string(base), Base: base, Shifted: shifted, Action: keyboard.ActionEmit}
}

func actionKey(a keyboard.Action) keyboard.Key {
	return keyboard.Key{Label: "special", Action: a}
}

func newDispatcher(t *testing.T, b *fakeBackend) (*Dispatcher, *Tracker) {
	t.Helper()
	tr := NewTracker(b)
	m := &keyboard.Modifiers{}
	return New(b, tr, m), tr
}

func TestDispatchInertWithoutCapture(t *testing.T) {
	b := newFakeBackend()
	d, _ := newDispatcher(t, b)

	err := d.Dispatch(emitKey('a', 'A'))
	assert.ErrorIs(t, err, ErrNoFocusTarget)
	assert.Empty(t, b.calls, "backend must not be touched without a target")
}

func TestCaptureThenInvalidateIsNoOp(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)

	require.NoError(t, tr.Capture())
	tr.Invalidate()

	assert.NotPanics(t, func() {
		err := d.Dispatch(emitKey('a', 'A'))
		assert.ErrorIs(t, err, ErrNoFocusTarget)
	})
	assert.Empty(t, b.calls)
}

func TestCaptureFailureLeavesTrackerEmpty(t *testing.T) {
	b := newFakeBackend()
	b.captureErr = errors.New("nothing focused")
	d, tr := newDispatcher(t, b)

	require.Error(t, tr.Capture())
	_, ok := tr.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, d.Dispatch(emitKey('a', 'A')), ErrNoFocusTarget)
}

func TestStaleTargetIsNonFatal(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	b.invalid[42] = true
	err := d.Dispatch(emitKey('a', 'A'))
	assert.ErrorIs(t, err, ErrStaleFocus)
	assert.Empty(t, b.calls)

	// The target coming back (or a fresh capture) makes the next press work.
	b.invalid[42] = false
	require.NoError(t, d.Dispatch(emitKey('a', 'A')))
	assert.Equal(t, []string{"activate 42", "char a"}, b.calls)
}

func TestEmitResolvesThroughModifiers(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	key := emitKey('a', 'A')

	require.NoError(t, d.Dispatch(key))
	require.NoError(t, d.Dispatch(actionKey(keyboard.ActionToggleCaps)))
	require.NoError(t, d.Dispatch(key))
	require.NoError(t, d.Dispatch(actionKey(keyboard.ActionToggleShift)))
	require.NoError(t, d.Dispatch(key)) // caps XOR shift cancels
	require.NoError(t, d.Dispatch(key)) // shift was one-shot

	var chars []string
	for _, c := range b.calls {
		if len(c) > 5 && c[:5] == "char " {
			chars = append(chars, c[5:])
		}
	}
	assert.Equal(t, []string{"a", "A", "a", "A"}, chars)
}

func TestNamedKeysReachTheBackend(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	require.NoError(t, d.Dispatch(actionKey(keyboard.ActionBackspace)))
	require.NoError(t, d.Dispatch(actionKey(keyboard.ActionArrowLeft)))

	assert.Equal(t, []string{
		"activate 42", fmt.Sprintf("key %d", platform.KeyBackspace),
		"activate 42", fmt.Sprintf("key %d", platform.KeyArrowLeft),
	}, b.calls)
}

func TestPasteClipboardBeforePasteChord(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	require.NoError(t, d.Paste("hello"))
	assert.Equal(t, []string{"clip hello", "activate 42", "paste"}, b.calls)
	assert.Equal(t, "hello", b.clipboard)
}

func TestPasteEmptyTextIsNoOp(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	require.NoError(t, d.Paste(""))
	assert.Empty(t, b.calls)
}

func TestPasteClipboardUnavailable(t *testing.T) {
	b := newFakeBackend()
	b.clipErr = errors.New("no clipboard service")
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	err := d.Paste("hello")
	assert.ErrorIs(t, err, ErrClipboardUnavailable)
	assert.Empty(t, b.calls, "paste chord must not be sent when the copy failed")
}

func TestActivateFailureReportsStaleFocus(t *testing.T) {
	b := newFakeBackend()
	b.activateErr = errors.New("window refused focus")
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	err := d.Dispatch(emitKey('x', 'X'))
	assert.ErrorIs(t, err, ErrStaleFocus)
}

func TestCloseInvalidatesAndRunsCallback(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	closed := false
	d.OnClose(func() { closed = true })

	require.NoError(t, d.Dispatch(actionKey(keyboard.ActionClose)))
	assert.True(t, closed)
	_, ok := tr.Current()
	assert.False(t, ok)
	assert.Empty(t, b.calls, "close never injects input")
}

func TestPasteActionUsesBufferSource(t *testing.T) {
	b := newFakeBackend()
	d, tr := newDispatcher(t, b)
	require.NoError(t, tr.Capture())

	d.BufferSource(func() string { return "buffered" })
	require.NoError(t, d.Dispatch(actionKey(keyboard.ActionPaste)))
	assert.Equal(t, "buffered", b.clipboard)
}
