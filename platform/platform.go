// Package platform abstracts the OS services the keyboard depends on: focus
// queries, input synthesis, the clipboard, and window management. Each target
// OS provides its own implementation behind a build tag; unsupported systems
// get an inert backend so the UI still runs.
package platform

import "errors"

// FocusHandle is an opaque reference to the OS window that should receive
// synthesized input. Zero means no target.
type FocusHandle uintptr

const NoFocus FocusHandle = 0

// Key names the non-character keys the dispatcher can synthesize.
type Key int

const (
	KeyBackspace Key = iota
	KeyEnter
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// ErrUnsupported is returned by backends that cannot perform an operation on
// the current OS or with the tools available on it.
var ErrUnsupported = errors.New("operation not supported on this platform")

// Backend is the input-injection capability surface.
type Backend interface {
	// Name identifies the backend for logging.
	Name() string

	// CaptureFocus returns the currently focused foreign window, excluding
	// this process's own windows. Returns NoFocus and an error when nothing
	// suitable has focus.
	CaptureFocus() (FocusHandle, error)

	// IsValid reports whether the handle still refers to a live window.
	IsValid(h FocusHandle) bool

	// Activate gives the window input focus before injection.
	Activate(h FocusHandle) error

	SendChar(r rune) error
	SendKey(k Key) error

	// SendPaste issues the platform paste chord (Ctrl+V) to the active window.
	SendPaste() error

	// SetClipboard replaces the system clipboard text.
	SetClipboard(text string) error
}

// WindowManager moves and styles the keyboard's own window, which the GUI
// toolkit does not expose. Bind must be called with the window title after
// the window is shown; the other calls are no-ops until it succeeds.
type WindowManager interface {
	Bind(title string) error
	Move(x, y int) error
	SetOpacity(alpha float64) error
	SetAlwaysOnTop(onTop bool) error
}

// ForegroundWatcher is an optional Backend capability: event-driven
// notification whenever the foreground window changes, excluding this
// process. The callback may run off the UI thread.
type ForegroundWatcher interface {
	StartWatch(onChange func(FocusHandle)) error
	StopWatch()
}
