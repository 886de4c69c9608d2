//go:build linux

package platform

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// The Linux backend shells out to the usual X11 desktop tools: xdotool for
// focus queries and key synthesis, wl-copy (Wayland) with an xclip fallback
// for the clipboard, and wmctrl for the always-on-top hint. Missing tools
// surface as wrapped ErrUnsupported errors, never crashes.
type x11Backend struct {
	own FocusHandle // the keyboard's own window id, once bound
}

// New returns the Linux backend. The same value implements Backend and
// WindowManager.
func New() (Backend, WindowManager) {
	b := &x11Backend{}
	return b, b
}

func (b *x11Backend) Name() string { return "x11" }

func haveTool(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func xdotool(args ...string) (string, error) {
	if !haveTool("xdotool") {
		return "", fmt.Errorf("xdotool not installed: %w", ErrUnsupported)
	}
	var out bytes.Buffer
	cmd := exec.Command("xdotool", args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("xdotool %s: %w", args[0], err)
	}
	return strings.TrimSpace(out.String()), nil
}

func (b *x11Backend) CaptureFocus() (FocusHandle, error) {
	out, err := xdotool("getactivewindow")
	if err != nil {
		return NoFocus, err
	}
	id, err := strconv.ParseUint(out, 10, 64)
	if err != nil {
		return NoFocus, fmt.Errorf("unexpected xdotool output %q", out)
	}
	h := FocusHandle(id)
	if h == NoFocus || (b.own != NoFocus && h == b.own) {
		return NoFocus, fmt.Errorf("no foreign window has focus")
	}
	return h, nil
}

func (b *x11Backend) IsValid(h FocusHandle) bool {
	if h == NoFocus {
		return false
	}
	_, err := xdotool("getwindowname", windowID(h))
	return err == nil
}

func (b *x11Backend) Activate(h FocusHandle) error {
	_, err := xdotool("windowactivate", "--sync", windowID(h))
	return err
}

func (b *x11Backend) SendChar(r rune) error {
	_, err := xdotool("type", "--clearmodifiers", "--", string(r))
	return err
}

var x11KeyNames = map[Key]string{
	KeyBackspace:  "BackSpace",
	KeyEnter:      "Return",
	KeyArrowUp:    "Up",
	KeyArrowDown:  "Down",
	KeyArrowLeft:  "Left",
	KeyArrowRight: "Right",
}

func (b *x11Backend) SendKey(k Key) error {
	name, ok := x11KeyNames[k]
	if !ok {
		return fmt.Errorf("unknown key %d", k)
	}
	_, err := xdotool("key", "--clearmodifiers", name)
	return err
}

func (b *x11Backend) SendPaste() error {
	_, err := xdotool("key", "--clearmodifiers", "ctrl+v")
	return err
}

// SetClipboard tries wl-copy first (Wayland), then xclip (X11).
func (b *x11Backend) SetClipboard(text string) error {
	if haveTool("wl-copy") {
		if err := pipeTo(text, "wl-copy"); err == nil {
			return nil
		}
	}
	if haveTool("xclip") {
		return pipeTo(text, "xclip", "-selection", "clipboard")
	}
	return fmt.Errorf("neither wl-copy nor xclip available: %w", ErrUnsupported)
}

func pipeTo(text string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ---- WindowManager ----

func (b *x11Backend) Bind(title string) error {
	out, err := xdotool("search", "--name", "^"+title+"$")
	if err != nil {
		return err
	}
	// Take the first match when the search returns several ids.
	first := strings.Fields(out)
	if len(first) == 0 {
		return fmt.Errorf("window %q not found", title)
	}
	id, err := strconv.ParseUint(first[0], 10, 64)
	if err != nil {
		return fmt.Errorf("unexpected xdotool output %q", out)
	}
	b.own = FocusHandle(id)
	return nil
}

func (b *x11Backend) Move(x, y int) error {
	if b.own == NoFocus {
		return ErrUnsupported
	}
	_, err := xdotool("windowmove", windowID(b.own), strconv.Itoa(x), strconv.Itoa(y))
	return err
}

// SetOpacity writes _NET_WM_WINDOW_OPACITY; compositing window managers pick
// it up, others ignore it.
func (b *x11Backend) SetOpacity(alpha float64) error {
	if b.own == NoFocus {
		return ErrUnsupported
	}
	if !haveTool("xprop") {
		return fmt.Errorf("xprop not installed: %w", ErrUnsupported)
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	val := uint64(alpha * 0xFFFFFFFF)
	cmd := exec.Command("xprop",
		"-id", windowID(b.own),
		"-f", "_NET_WM_WINDOW_OPACITY", "32c",
		"-set", "_NET_WM_WINDOW_OPACITY", strconv.FormatUint(val, 10),
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("xprop: %w", err)
	}
	return nil
}

func (b *x11Backend) SetAlwaysOnTop(onTop bool) error {
	if b.own == NoFocus {
		return ErrUnsupported
	}
	if !haveTool("wmctrl") {
		return fmt.Errorf("wmctrl not installed: %w", ErrUnsupported)
	}
	op := "add,above"
	if !onTop {
		op = "remove,above"
	}
	cmd := exec.Command("wmctrl", "-i", "-r", windowID(b.own), "-b", op)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wmctrl: %w", err)
	}
	return nil
}

func windowID(h FocusHandle) string {
	return strconv.FormatUint(uint64(h), 10)
}
