package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func letterKey(r rune) Key {
	return charKey(0, 0, r)
}

func TestResolveShiftedIffExactlyOneModifier(t *testing.T) {
	cases := []struct {
		name  string
		caps  bool
		shift bool
		want  rune
	}{
		{"plain", false, false, 'a'},
		{"caps only", true, false, 'A'},
		{"shift only", false, true, 'A'},
		{"caps and shift cancel", true, true, 'a'},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &Modifiers{}
			if tc.caps {
				m.ToggleCaps()
			}
			if tc.shift {
				m.ToggleShift()
			}
			assert.Equal(t, tc.want, m.Resolve(letterKey('a')))
		})
	}
}

func TestShiftIsOneShot(t *testing.T) {
	m := &Modifiers{}
	m.ToggleShift()
	assert.True(t, m.Shift())

	assert.Equal(t, 'A', m.Resolve(letterKey('a')))
	assert.False(t, m.Shift(), "shift must clear after one emit")
	assert.Equal(t, 'a', m.Resolve(letterKey('a')))
}

func TestShiftConsumedEvenWhenCancelled(t *testing.T) {
	m := &Modifiers{}
	m.ToggleCaps()
	m.ToggleShift()

	// XOR cancels, but the transient shift is still consumed.
	assert.Equal(t, 'a', m.Resolve(letterKey('a')))
	assert.False(t, m.Shift())
	assert.Equal(t, 'A', m.Resolve(letterKey('a')), "caps persists")
}

func TestResolveKeyWithoutShiftedGlyph(t *testing.T) {
	m := &Modifiers{}
	m.ToggleCaps()

	space := Key{Base: ' ', Action: ActionSpace}
	assert.Equal(t, ' ', m.Resolve(space))
}

func TestCapsPersistsAcrossEmits(t *testing.T) {
	m := &Modifiers{}
	m.ToggleCaps()
	for i := 0; i < 3; i++ {
		assert.Equal(t, 'Q', m.Resolve(letterKey('q')))
	}
	m.ToggleCaps()
	assert.Equal(t, 'q', m.Resolve(letterKey('q')))
}

func TestDigitsShiftToSymbols(t *testing.T) {
	m := &Modifiers{}
	m.ToggleShift()
	assert.Equal(t, '!', m.Resolve(letterKey('1')))
	assert.Equal(t, '2', m.Resolve(letterKey('2')), "shift consumed by previous emit")
}
