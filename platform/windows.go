//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procIsWindow                 = user32.NewProc("IsWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procSendInput                = user32.NewProc("SendInput")
	procVkKeyScanExW             = user32.NewProc("VkKeyScanExW")
	procMapVirtualKeyExW         = user32.NewProc("MapVirtualKeyExW")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procFindWindowW              = user32.NewProc("FindWindowW")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procGetWindowLongW           = user32.NewProc("GetWindowLongW")
	procSetWindowLongW           = user32.NewProc("SetWindowLongW")
	procSetLayeredWindowAttrs    = user32.NewProc("SetLayeredWindowAttributes")
	procOpenClipboard            = user32.NewProc("OpenClipboard")
	procCloseClipboard           = user32.NewProc("CloseClipboard")
	procEmptyClipboard           = user32.NewProc("EmptyClipboard")
	procSetClipboardData         = user32.NewProc("SetClipboardData")
	procSetWinEventHook          = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent           = user32.NewProc("UnhookWinEvent")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
)

const (
	inputKeyboard     = 1
	keyeventfExtended = 0x0001
	keyeventfKeyUp    = 0x0002
	keyeventfUnicode  = 0x0004
	keyeventfScancode = 0x0008

	vkShift     = 0x10
	vkControl   = 0x11
	vkBack      = 0x08
	vkReturn    = 0x0D
	vkLeft      = 0x25
	vkUp        = 0x26
	vkRight     = 0x27
	vkDown      = 0x28
	vkV         = 0x56
	mapvkVKToVSC = 0

	cfUnicodeText = 13
	gmemMoveable  = 0x0002

	gwlExStyle  = 0xFFFFFFEC // GWL_EXSTYLE (-20) as the DWORD user32 expects
	wsExLayered = 0x00080000
	lwaAlpha    = 0x00000002

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010

	hwndTopmost   = ^uintptr(0)     // (HWND)-1
	hwndNoTopmost = ^uintptr(0) - 1 // (HWND)-2

	eventSystemForeground = 0x0003
	winEventOutOfContext  = 0x0000

	activateSettle = 100 * time.Millisecond
)

type keyboardInput struct {
	WVK         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type input struct {
	Type  uint32
	_pad1 uint32
	Ki    keyboardInput
	_pad2 uint64
}

type winBackend struct {
	own windows.Handle // the keyboard's own top-level window, once bound

	hook        windows.Handle
	callbackRef uintptr // prevent GC of the hook callback
}

// New returns the Windows backend. The same value implements Backend,
// WindowManager and ForegroundWatcher.
func New() (Backend, WindowManager) {
	b := &winBackend{}
	return b, b
}

func (b *winBackend) Name() string { return "windows" }

func windowPID(hwnd windows.Handle) uint32 {
	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	return pid
}

func (b *winBackend) isOwn(hwnd windows.Handle) bool {
	if hwnd == 0 {
		return true
	}
	if b.own != 0 && hwnd == b.own {
		return true
	}
	return windowPID(hwnd) == windows.GetCurrentProcessId()
}

func (b *winBackend) CaptureFocus() (FocusHandle, error) {
	r, _, _ := procGetForegroundWindow.Call()
	hwnd := windows.Handle(r)
	if b.isOwn(hwnd) {
		return NoFocus, fmt.Errorf("no foreign window has focus")
	}
	return FocusHandle(hwnd), nil
}

func (b *winBackend) IsValid(h FocusHandle) bool {
	if h == NoFocus {
		return false
	}
	r, _, _ := procIsWindow.Call(uintptr(h))
	return r != 0
}

func (b *winBackend) Activate(h FocusHandle) error {
	r, _, _ := procSetForegroundWindow.Call(uintptr(h))
	if r == 0 {
		return fmt.Errorf("SetForegroundWindow failed for %#x", uintptr(h))
	}
	// Give the target time to accept focus before input arrives.
	time.Sleep(activateSettle)
	return nil
}

func sendInputCall(ins []input) error {
	if len(ins) == 0 {
		return nil
	}
	ret, _, err := procSendInput.Call(
		uintptr(len(ins)),
		uintptr(unsafe.Pointer(&ins[0])),
		unsafe.Sizeof(input{}),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed: %v", err)
	}
	return nil
}

func keyEvent(vk, scan uint16, flags uint32) input {
	return input{
		Type: inputKeyboard,
		Ki:   keyboardInput{WVK: vk, WScan: scan, DwFlags: flags},
	}
}

func tapVK(vk uint16, extended bool) error {
	flags := uint32(0)
	if extended {
		flags = keyeventfExtended
	}
	return sendInputCall([]input{
		keyEvent(vk, 0, flags),
		keyEvent(vk, 0, flags|keyeventfKeyUp),
	})
}

func sendUnicodeUnit(u uint16) error {
	return sendInputCall([]input{
		keyEvent(0, u, keyeventfUnicode),
		keyEvent(0, u, keyeventfUnicode|keyeventfKeyUp),
	})
}

func systemHKL() windows.Handle {
	h, _, _ := procGetKeyboardLayout.Call(0)
	return windows.Handle(h)
}

func vkKeyScanEx(r rune, hkl windows.Handle) (vk uint16, shift byte, ok bool) {
	if r > 0xFFFF {
		return 0, 0, false
	}
	res, _, _ := procVkKeyScanExW.Call(uintptr(uint16(r)), uintptr(hkl))
	v := int16(res)
	if v == -1 {
		return 0, 0, false
	}
	return uint16(byte(v & 0xFF)), byte((v >> 8) & 0xFF), true
}

func mapVirtualKeyEx(vk uint16, hkl windows.Handle) uint16 {
	r, _, _ := procMapVirtualKeyExW.Call(uintptr(vk), uintptr(mapvkVKToVSC), uintptr(hkl))
	return uint16(r & 0xFFFF)
}

func tapScan(sc uint16, down bool) input {
	flags := uint32(keyeventfScancode)
	if !down {
		flags |= keyeventfKeyUp
	}
	return keyEvent(0, sc, flags)
}

// SendChar prefers a physical key tap resolved against the active layout so
// the target sees realistic scan codes; characters the layout cannot produce
// fall back to a unicode injection.
func (b *winBackend) SendChar(r rune) error {
	hkl := systemHKL()

	vk, shift, ok := vkKeyScanEx(r, hkl)
	if !ok {
		return sendUnicodeFallback(r)
	}
	sc := mapVirtualKeyEx(vk, hkl)
	if sc == 0 {
		return sendUnicodeFallback(r)
	}
	// Only the plain and shifted planes are handled physically; AltGr
	// combinations go through the unicode path.
	if shift&^0x01 != 0 {
		return sendUnicodeFallback(r)
	}

	var ins []input
	if shift&0x01 != 0 {
		ins = append(ins, keyEvent(vkShift, 0, 0))
	}
	ins = append(ins, tapScan(sc, true), tapScan(sc, false))
	if shift&0x01 != 0 {
		ins = append(ins, keyEvent(vkShift, 0, keyeventfKeyUp))
	}
	return sendInputCall(ins)
}

func sendUnicodeFallback(r rune) error {
	units := []uint16{uint16(r)}
	if r > 0xFFFF {
		u, err := windows.UTF16FromString(string(r))
		if err != nil {
			return err
		}
		units = units[:0]
		for _, x := range u {
			if x != 0 {
				units = append(units, x)
			}
		}
	}
	for _, u := range units {
		if err := sendUnicodeUnit(u); err != nil {
			return err
		}
	}
	return nil
}

func (b *winBackend) SendKey(k Key) error {
	switch k {
	case KeyBackspace:
		return tapVK(vkBack, false)
	case KeyEnter:
		return tapVK(vkReturn, false)
	case KeyArrowUp:
		return tapVK(vkUp, true)
	case KeyArrowDown:
		return tapVK(vkDown, true)
	case KeyArrowLeft:
		return tapVK(vkLeft, true)
	case KeyArrowRight:
		return tapVK(vkRight, true)
	}
	return fmt.Errorf("unknown key %d", k)
}

func (b *winBackend) SendPaste() error {
	return sendInputCall([]input{
		keyEvent(vkControl, 0, 0),
		keyEvent(vkV, 0, 0),
		keyEvent(vkV, 0, keyeventfKeyUp),
		keyEvent(vkControl, 0, keyeventfKeyUp),
	})
}

func (b *winBackend) SetClipboard(text string) error {
	units, err := windows.UTF16FromString(text)
	if err != nil {
		return err
	}
	size := uintptr(len(units)) * 2

	r, _, _ := procOpenClipboard.Call(0)
	if r == 0 {
		return fmt.Errorf("OpenClipboard failed")
	}
	defer procCloseClipboard.Call()

	procEmptyClipboard.Call()

	hMem, _, _ := procGlobalAlloc.Call(gmemMoveable, size)
	if hMem == 0 {
		return fmt.Errorf("GlobalAlloc failed")
	}
	p, _, _ := procGlobalLock.Call(hMem)
	if p == 0 {
		procGlobalFree.Call(hMem)
		return fmt.Errorf("GlobalLock failed")
	}
	dst := unsafe.Slice((*uint16)(unsafe.Pointer(p)), len(units))
	copy(dst, units)
	procGlobalUnlock.Call(hMem)

	// The clipboard owns hMem after a successful SetClipboardData.
	if r, _, _ := procSetClipboardData.Call(cfUnicodeText, hMem); r == 0 {
		procGlobalFree.Call(hMem)
		return fmt.Errorf("SetClipboardData failed")
	}
	return nil
}

// ---- WindowManager ----

func (b *winBackend) Bind(title string) error {
	ptr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	r, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(ptr)))
	if r == 0 {
		return fmt.Errorf("window %q not found", title)
	}
	b.own = windows.Handle(r)
	return nil
}

func (b *winBackend) Move(x, y int) error {
	if b.own == 0 {
		return ErrUnsupported
	}
	r, _, _ := procSetWindowPos.Call(
		uintptr(b.own), 0,
		uintptr(x), uintptr(y), 0, 0,
		swpNoSize|swpNoActivate,
	)
	if r == 0 {
		return fmt.Errorf("SetWindowPos failed")
	}
	return nil
}

func (b *winBackend) SetOpacity(alpha float64) error {
	if b.own == 0 {
		return ErrUnsupported
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	style, _, _ := procGetWindowLongW.Call(uintptr(b.own), uintptr(gwlExStyle))
	procSetWindowLongW.Call(uintptr(b.own), uintptr(gwlExStyle), style|wsExLayered)
	r, _, _ := procSetLayeredWindowAttrs.Call(uintptr(b.own), 0, uintptr(byte(alpha*255)), lwaAlpha)
	if r == 0 {
		return fmt.Errorf("SetLayeredWindowAttributes failed")
	}
	return nil
}

func (b *winBackend) SetAlwaysOnTop(onTop bool) error {
	if b.own == 0 {
		return ErrUnsupported
	}
	after := hwndTopmost
	if !onTop {
		after = hwndNoTopmost
	}
	r, _, _ := procSetWindowPos.Call(
		uintptr(b.own), after, 0, 0, 0, 0,
		swpNoSize|swpNoMove|swpNoActivate,
	)
	if r == 0 {
		return fmt.Errorf("SetWindowPos failed")
	}
	return nil
}

// ---- ForegroundWatcher ----

// StartWatch installs a WinEventHook for EVENT_SYSTEM_FOREGROUND and reports
// every foreign window that takes the foreground. The callback runs on the
// hook's thread, not the UI loop.
func (b *winBackend) StartWatch(onChange func(FocusHandle)) error {
	cb := windows.NewCallback(func(
		hWinEventHook uintptr,
		event uint32,
		hwnd uintptr,
		idObject, idChild, idThread, dwmsEventTime uintptr,
	) uintptr {
		h := windows.Handle(hwnd)
		if h != 0 && !b.isOwn(h) {
			onChange(FocusHandle(h))
		}
		return 0
	})
	b.callbackRef = cb

	r, _, err := procSetWinEventHook.Call(
		uintptr(eventSystemForeground),
		uintptr(eventSystemForeground),
		0,
		cb,
		0,
		0,
		uintptr(winEventOutOfContext),
	)
	if r == 0 {
		return fmt.Errorf("SetWinEventHook failed: %v", err)
	}
	b.hook = windows.Handle(r)
	return nil
}

func (b *winBackend) StopWatch() {
	if b.hook != 0 {
		procUnhookWinEvent.Call(uintptr(b.hook))
		b.hook = 0
	}
	b.callbackRef = 0
}
