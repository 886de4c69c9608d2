package dispatch

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"glasskey/keyboard"
	"glasskey/platform"
)

var (
	// ErrNoFocusTarget means no foreign window was captured; dispatching is
	// inert until one is.
	ErrNoFocusTarget = errors.New("no focus target")

	// ErrStaleFocus means the captured window has closed since capture.
	ErrStaleFocus = errors.New("focus target no longer exists")

	// ErrClipboardUnavailable means the system clipboard could not be written.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)

// Dispatcher turns logical key actions into synthesized input against the
// tracked foreign window. Every failure is logged and returned but never
// fatal: the keyboard stays open and the next press tries again from
// scratch. No retries.
type Dispatcher struct {
	backend platform.Backend
	tracker *Tracker
	mods    *keyboard.Modifiers
	log     *logrus.Entry

	closeFn  func()        // hides the window; set by the shell
	bufferFn func() string // source text for ActionPaste keys
}

func New(b platform.Backend, t *Tracker, m *keyboard.Modifiers) *Dispatcher {
	return &Dispatcher{
		backend:  b,
		tracker:  t,
		mods:     m,
		log:      logrus.WithField("component", "dispatch"),
		closeFn:  func() {},
		bufferFn: func() string { return "" },
	}
}

// OnClose registers the shell callback run by ActionClose.
func (d *Dispatcher) OnClose(fn func()) { d.closeFn = fn }

// BufferSource registers where ActionPaste keys take their text from.
func (d *Dispatcher) BufferSource(fn func() string) { d.bufferFn = fn }

var actionKeys = map[keyboard.Action]platform.Key{
	keyboard.ActionBackspace:  platform.KeyBackspace,
	keyboard.ActionEnter:      platform.KeyEnter,
	keyboard.ActionArrowUp:    platform.KeyArrowUp,
	keyboard.ActionArrowDown:  platform.KeyArrowDown,
	keyboard.ActionArrowLeft:  platform.KeyArrowLeft,
	keyboard.ActionArrowRight: platform.KeyArrowRight,
}

// Dispatch executes one key press against the tracked target. Modifier
// toggles and Close never touch the backend.
func (d *Dispatcher) Dispatch(k keyboard.Key) error {
	switch k.Action {
	case keyboard.ActionToggleCaps:
		d.mods.ToggleCaps()
		return nil
	case keyboard.ActionToggleShift:
		d.mods.ToggleShift()
		return nil
	case keyboard.ActionClose:
		d.tracker.Invalidate()
		d.closeFn()
		return nil
	case keyboard.ActionPaste:
		return d.Paste(d.bufferFn())
	}

	h, err := d.target()
	if err != nil {
		return err
	}

	switch k.Action {
	case keyboard.ActionEmit, keyboard.ActionSpace:
		r := d.mods.Resolve(k)
		if r == 0 {
			return nil
		}
		err = d.inject(h, func() error { return d.backend.SendChar(r) })
	default:
		pk, ok := actionKeys[k.Action]
		if !ok {
			return fmt.Errorf("no handler for key %q", k.Label)
		}
		err = d.inject(h, func() error { return d.backend.SendKey(pk) })
	}
	if err != nil {
		d.log.WithError(err).WithField("key", k.Label).Warn("dispatch failed")
	}
	return err
}

// Paste copies text to the system clipboard and issues the paste chord to
// the target. The caller keeps its buffer when this fails.
func (d *Dispatcher) Paste(text string) error {
	if text == "" {
		return nil
	}
	h, err := d.target()
	if err != nil {
		return err
	}
	if err := d.backend.SetClipboard(text); err != nil {
		d.log.WithError(err).Warn("clipboard write failed")
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	if err := d.inject(h, d.backend.SendPaste); err != nil {
		d.log.WithError(err).Warn("paste failed")
		return err
	}
	return nil
}

// target resolves the tracked handle, distinguishing "never had one" from
// "had one and it died".
func (d *Dispatcher) target() (platform.FocusHandle, error) {
	h, ok := d.tracker.Current()
	if !ok {
		return platform.NoFocus, ErrNoFocusTarget
	}
	if !d.backend.IsValid(h) {
		d.log.WithField("handle", fmt.Sprintf("%#x", uintptr(h))).Info("target window gone")
		return platform.NoFocus, ErrStaleFocus
	}
	return h, nil
}

func (d *Dispatcher) inject(h platform.FocusHandle, send func() error) error {
	if err := d.backend.Activate(h); err != nil {
		return fmt.Errorf("%w: %v", ErrStaleFocus, err)
	}
	return send()
}
