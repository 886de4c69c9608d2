package keyboard

// Modifiers tracks the caps-lock and transient shift toggles. Caps persists
// until toggled again; shift applies to the next emitted character only.
// Not safe for concurrent use; all mutation happens on the UI event loop.
type Modifiers struct {
	caps  bool
	shift bool
}

func (m *Modifiers) ToggleCaps()  { m.caps = !m.caps }
func (m *Modifiers) ToggleShift() { m.shift = !m.shift }

func (m *Modifiers) Caps() bool  { return m.caps }
func (m *Modifiers) Shift() bool { return m.shift }

// Resolve returns the character the key emits under the current modifier
// state: the shifted glyph when exactly one of caps/shift is active, the base
// glyph otherwise. The transient shift is consumed either way.
func (m *Modifiers) Resolve(k Key) rune {
	r := k.Base
	if (m.caps != m.shift) && k.Shifted != 0 {
		r = k.Shifted
	}
	m.shift = false
	return r
}
