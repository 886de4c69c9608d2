//go:build !windows && !linux

package platform

// Inert backend for platforms without an injection implementation. The UI
// still renders and the local buffer can be edited; every dispatch reports
// ErrUnsupported.
type nullBackend struct{}

// New returns the inert backend.
func New() (Backend, WindowManager) {
	b := nullBackend{}
	return b, b
}

func (nullBackend) Name() string                       { return "none" }
func (nullBackend) CaptureFocus() (FocusHandle, error) { return NoFocus, ErrUnsupported }
func (nullBackend) IsValid(FocusHandle) bool           { return false }
func (nullBackend) Activate(FocusHandle) error         { return ErrUnsupported }
func (nullBackend) SendChar(rune) error                { return ErrUnsupported }
func (nullBackend) SendKey(Key) error                  { return ErrUnsupported }
func (nullBackend) SendPaste() error                   { return ErrUnsupported }
func (nullBackend) SetClipboard(string) error          { return ErrUnsupported }

func (nullBackend) Bind(string) error         { return ErrUnsupported }
func (nullBackend) Move(int, int) error       { return ErrUnsupported }
func (nullBackend) SetOpacity(float64) error  { return ErrUnsupported }
func (nullBackend) SetAlwaysOnTop(bool) error { return ErrUnsupported }
