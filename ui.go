package main

import (
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"glasskey/config"
	"glasskey/dispatch"
	"glasskey/keyboard"
	"glasskey/localization"
	"glasskey/platform"
)

// shell owns the keyboard window: the key grid, the local text buffer, the
// drag/opacity/topmost window styling, and the wiring from button presses to
// the dispatcher.
type shell struct {
	fyneApp fyne.App
	win     fyne.Window

	cfg    config.Config
	labels localization.LabelSet
	geo    geometry

	backend platform.Backend
	wm      platform.WindowManager
	tracker *dispatch.Tracker
	mods    *keyboard.Modifiers
	disp    *dispatch.Dispatcher

	keys    keyboard.Layout
	buttons [][]*widget.Button
	buffer  *widget.Entry
	status  *widget.Label

	// grid focus for arrow-key navigation
	focusRow, focusCol int

	// window position, updated by dragging
	winX, winY int

	log *logrus.Entry
}

func newShell(cfg config.Config, labels localization.LabelSet, geo geometry, backend platform.Backend, wm platform.WindowManager) *shell {
	s := &shell{
		cfg:     cfg,
		labels:  labels,
		geo:     geo,
		backend: backend,
		wm:      wm,
		keys:    keyboard.DefaultLayout(),
		mods:    &keyboard.Modifiers{},
		winX:    geo.x,
		winY:    geo.y,
		log:     logrus.WithField("component", "shell"),
	}
	s.tracker = dispatch.NewTracker(backend)
	s.disp = dispatch.New(backend, s.tracker, s.mods)
	s.disp.OnClose(func() { s.win.Close() })
	s.disp.BufferSource(func() string {
		if s.buffer == nil {
			return ""
		}
		return s.buffer.Text
	})
	return s
}

func (s *shell) Run() {
	s.fyneApp = app.New()
	s.fyneApp.Settings().SetTheme(newKeyTheme(s.cfg))

	s.win = s.fyneApp.NewWindow(s.labels.AppTitle)
	s.win.Resize(fyne.NewSize(float32(s.geo.width), float32(s.geo.height)))
	s.win.SetPadded(false)

	s.win.SetContent(s.buildContent())

	// Snapshot the foreign focus target before our own window can steal it.
	if err := s.tracker.Capture(); err == nil {
		s.status.SetText(s.labels.StatusReady)
	} else {
		s.log.WithError(err).Warn("no focus target at startup")
		s.status.SetText(s.labels.StatusNoTarget)
	}

	if watcher, ok := s.backend.(platform.ForegroundWatcher); ok {
		if err := watcher.StartWatch(s.tracker.Observe); err != nil {
			s.log.WithError(err).Warn("foreground watcher unavailable")
		}
		s.win.SetOnClosed(func() {
			watcher.StopWatch()
			s.tracker.Invalidate()
		})
	} else {
		s.win.SetOnClosed(s.tracker.Invalidate)
	}

	s.win.Canvas().SetOnTypedKey(s.onTypedKey)

	go s.applyWindowStyle()
	s.win.ShowAndRun()
}

func (s *shell) buildContent() fyne.CanvasObject {
	s.buffer = widget.NewEntry()
	s.buffer.SetPlaceHolder(s.labels.BufferPlaceholder)

	s.status = widget.NewLabel("")
	s.status.Truncation = fyne.TextTruncateEllipsis

	grip := newDragStrip(s.dragWindow)

	rows := make([]fyne.CanvasObject, 0, len(s.keys))
	cols := keyboard.GridColumns()
	for _, rowKeys := range s.keys {
		var buttons []*widget.Button
		objects := make([]fyne.CanvasObject, 0, len(rowKeys))
		for _, k := range rowKeys {
			key := k
			btn := widget.NewButton(key.Label, func() { s.onKey(key) })
			buttons = append(buttons, btn)
			objects = append(objects, btn)
		}
		s.buttons = append(s.buttons, buttons)
		rows = append(rows, container.New(&keyRowLayout{keys: rowKeys, cols: cols}, objects...))
	}
	grid := container.NewGridWithRows(len(rows), rows...)

	var top fyne.CanvasObject = container.NewVBox(grip, s.buffer)
	if s.cfg.TypingMode == config.ModeDirect {
		// No local buffer in direct mode; keys go straight to the target.
		top = container.NewVBox(grip)
	}

	s.highlightFocused(true)
	return container.NewBorder(top, s.status, nil, nil, grid)
}

// onKey handles a pressed on-screen key. In buffer mode character keys edit
// the local entry and Enter flushes it to the target as one paste; in direct
// mode every key is synthesized immediately.
func (s *shell) onKey(k keyboard.Key) {
	switch k.Action {
	case keyboard.ActionToggleCaps, keyboard.ActionToggleShift, keyboard.ActionClose:
		_ = s.disp.Dispatch(k)
		s.refreshKeyCaps()
		return
	}

	if s.cfg.TypingMode == config.ModeBuffer {
		s.onBufferKey(k)
		return
	}

	s.report(s.disp.Dispatch(k))
	s.refreshKeyCaps()
}

func (s *shell) onBufferKey(k keyboard.Key) {
	switch k.Action {
	case keyboard.ActionEmit, keyboard.ActionSpace:
		r := s.mods.Resolve(k)
		if r != 0 {
			s.buffer.SetText(s.buffer.Text + string(r))
		}
		s.refreshKeyCaps()
	case keyboard.ActionBackspace:
		runes := []rune(s.buffer.Text)
		if len(runes) > 0 {
			s.buffer.SetText(string(runes[:len(runes)-1]))
		}
	case keyboard.ActionEnter, keyboard.ActionPaste:
		s.flushBuffer()
	case keyboard.ActionArrowUp:
		s.moveFocus(keyboard.Up)
	case keyboard.ActionArrowDown:
		s.moveFocus(keyboard.Down)
	case keyboard.ActionArrowLeft:
		s.moveFocus(keyboard.Left)
	case keyboard.ActionArrowRight:
		s.moveFocus(keyboard.Right)
	}
}

// flushBuffer pastes the local buffer into the target window and closes the
// keyboard, mirroring the original Enter behavior. The buffer survives a
// failed paste so nothing typed is lost.
func (s *shell) flushBuffer() {
	text := s.buffer.Text
	if text == "" {
		s.setStatus(s.labels.StatusNothingToPaste)
		return
	}
	if err := s.disp.Paste(text); err != nil {
		s.report(err)
		return
	}
	s.buffer.SetText("")
	s.setStatus(s.labels.StatusPasted)
	s.win.Close()
}

// report maps a dispatch error onto the transient status line. nil resets it
// to ready.
func (s *shell) report(err error) {
	switch {
	case err == nil:
		s.setStatus(s.labels.StatusReady)
	case errors.Is(err, dispatch.ErrNoFocusTarget):
		s.setStatus(s.labels.StatusNoTarget)
	case errors.Is(err, dispatch.ErrStaleFocus):
		s.setStatus(s.labels.StatusTargetGone)
	case errors.Is(err, dispatch.ErrClipboardUnavailable):
		s.setStatus(fmt.Sprintf(s.labels.StatusClipboardFormat, err))
	case errors.Is(err, platform.ErrUnsupported):
		s.setStatus(fmt.Sprintf(s.labels.StatusUnsupportedFormat, err))
	default:
		s.setStatus(fmt.Sprintf(s.labels.StatusDispatchFailFormat, err))
	}
}

// setStatus updates the transient status line. All callers run on the UI
// event loop.
func (s *shell) setStatus(msg string) {
	s.status.SetText(msg)
}

// refreshKeyCaps re-cases the letter keys and highlights the modifier keys
// to match the current caps/shift state.
func (s *shell) refreshKeyCaps() {
	upper := s.mods.Caps() != s.mods.Shift()
	for r, rowKeys := range s.keys {
		for c, k := range rowKeys {
			btn := s.buttons[r][c]
			switch k.Action {
			case keyboard.ActionEmit:
				label := string(k.Base)
				if upper && k.Shifted != 0 {
					label = string(k.Shifted)
				}
				if btn.Text != label {
					btn.SetText(label)
				}
			case keyboard.ActionToggleCaps:
				s.setImportance(btn, s.mods.Caps() || (r == s.focusRow && c == s.focusCol))
			case keyboard.ActionToggleShift:
				s.setImportance(btn, s.mods.Shift() || (r == s.focusRow && c == s.focusCol))
			}
		}
	}
}

func (s *shell) setImportance(btn *widget.Button, active bool) {
	imp := widget.MediumImportance
	if active {
		imp = widget.HighImportance
	}
	if btn.Importance != imp {
		btn.Importance = imp
		btn.Refresh()
	}
}

// moveFocus shifts the arrow-key grid highlight.
func (s *shell) moveFocus(dir keyboard.Direction) {
	s.highlightFocused(false)
	s.focusRow, s.focusCol = s.keys.Neighbor(s.focusRow, s.focusCol, dir)
	s.highlightFocused(true)
}

func (s *shell) highlightFocused(on bool) {
	if s.focusRow >= len(s.buttons) || s.focusCol >= len(s.buttons[s.focusRow]) {
		return
	}
	s.setImportance(s.buttons[s.focusRow][s.focusCol], on)
}

func (s *shell) activateFocused() {
	if s.focusRow >= len(s.keys) || s.focusCol >= len(s.keys[s.focusRow]) {
		return
	}
	s.onKey(s.keys[s.focusRow][s.focusCol])
}

// onTypedKey drives grid navigation from a physical keyboard: arrows move
// the highlight, Enter presses the highlighted key, Escape closes.
func (s *shell) onTypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape:
		s.win.Close()
	case fyne.KeyUp:
		s.moveFocus(keyboard.Up)
	case fyne.KeyDown:
		s.moveFocus(keyboard.Down)
	case fyne.KeyLeft:
		s.moveFocus(keyboard.Left)
	case fyne.KeyRight:
		s.moveFocus(keyboard.Right)
	case fyne.KeyReturn, fyne.KeyEnter:
		s.activateFocused()
	}
}

// dragWindow applies a drag delta from the grip strip to the OS window.
func (s *shell) dragWindow(dx, dy int) {
	s.winX += dx
	s.winY += dy
	if err := s.wm.Move(s.winX, s.winY); err != nil {
		s.log.WithError(err).Debug("window move failed")
	}
}

// applyWindowStyle binds the native window once it exists, positions it, and
// fades it in to the configured opacity. Everything here is best effort; a
// window manager that refuses any of it leaves a plain opaque window.
func (s *shell) applyWindowStyle() {
	// The toolkit needs a moment to create and map the native window.
	var err error
	for i := 0; i < 10; i++ {
		time.Sleep(200 * time.Millisecond)
		if err = s.wm.Bind(s.labels.AppTitle); err == nil {
			break
		}
	}
	if err != nil {
		s.log.WithError(err).Warn("could not bind native window; drag and opacity disabled")
		return
	}

	if err := s.wm.Move(s.winX, s.winY); err != nil {
		s.log.WithError(err).Debug("initial move failed")
	}
	if s.cfg.AlwaysOnTop {
		if err := s.wm.SetAlwaysOnTop(true); err != nil {
			s.log.WithError(err).Debug("always-on-top failed")
		}
	}
	s.fadeIn()
}

// fadeIn ramps opacity from invisible to the configured level in small
// steps, like the original window did.
func (s *shell) fadeIn() {
	target := s.cfg.Opacity
	for a := 0.0; a < target; a += 0.05 {
		if err := s.wm.SetOpacity(a); err != nil {
			// No compositor support; settle for the final value attempt.
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.wm.SetOpacity(target); err != nil {
		s.log.WithError(err).Debug("opacity not supported")
	}
}
