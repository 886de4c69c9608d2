package keyboard

// Action is the logical operation a key triggers when pressed.
type Action int

const (
	ActionEmit Action = iota
	ActionToggleCaps
	ActionToggleShift
	ActionBackspace
	ActionEnter
	ActionSpace
	ActionArrowUp
	ActionArrowDown
	ActionArrowLeft
	ActionArrowRight
	ActionPaste
	ActionClose
)

// Grid column widths, in layout units out of gridColumns per row.
const (
	gridColumns    = 12
	backspaceWidth = 2
	enterWidth     = 2
	shiftWidth     = 1
	spaceWidth     = 6
	closeWidth     = 1
)

// Key describes a single pressable key. Immutable after layout construction.
type Key struct {
	Label   string
	Row     int
	Col     int
	Width   int
	Base    rune
	Shifted rune
	Action  Action
}

// Layout is the full key grid, one slice per visual row.
type Layout [][]Key

// GridColumns is the number of layout columns a row is divided into.
func GridColumns() int { return gridColumns }

var shiftedDigits = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
}

func charKey(row, col int, base rune) Key {
	k := Key{
		Label:  string(base),
		Row:    row,
		Col:    col,
		Width:  1,
		Base:   base,
		Action: ActionEmit,
	}
	if base >= 'a' && base <= 'z' {
		k.Shifted = base - 'a' + 'A'
	} else if s, ok := shiftedDigits[base]; ok {
		k.Shifted = s
	}
	return k
}

func specialKey(row, col, width int, label string, action Action) Key {
	return Key{Label: label, Row: row, Col: col, Width: width, Action: action}
}

// DefaultLayout returns the QWERTY grid: a digit row with backspace, three
// letter rows with caps, enter, shift and close keys, and a bottom row with
// space and arrow keys.
func DefaultLayout() Layout {
	rows := [][]rune{
		[]rune("1234567890"),
		[]rune("qwertyuiop"),
		[]rune("asdfghjkl"),
		[]rune("zxcvbnm"),
	}

	var l Layout

	// Row 0: digits + backspace.
	var r0 []Key
	col := 0
	for _, c := range rows[0] {
		r0 = append(r0, charKey(0, col, c))
		col++
	}
	r0 = append(r0, specialKey(0, col, backspaceWidth, "⌫", ActionBackspace))
	l = append(l, r0)

	// Row 1: top letter row.
	var r1 []Key
	col = 1
	for _, c := range rows[1] {
		r1 = append(r1, charKey(1, col, c))
		col++
	}
	l = append(l, r1)

	// Row 2: caps + home row + enter.
	r2 := []Key{specialKey(2, 0, 1, "⇪", ActionToggleCaps)}
	col = 1
	for _, c := range rows[2] {
		r2 = append(r2, charKey(2, col, c))
		col++
	}
	r2 = append(r2, specialKey(2, col, enterWidth, "↵", ActionEnter))
	l = append(l, r2)

	// Row 3: shift + bottom letter row + close.
	r3 := []Key{specialKey(3, 1, shiftWidth, "⇧", ActionToggleShift)}
	col = 2
	for _, c := range rows[3] {
		r3 = append(r3, charKey(3, col, c))
		col++
	}
	r3 = append(r3, specialKey(3, 10, closeWidth, "⨯", ActionClose))
	l = append(l, r3)

	// Row 4: space + arrows.
	r4 := []Key{specialKey(4, 1, spaceWidth, "⎵", ActionSpace)}
	r4[0].Base = ' '
	r4 = append(r4,
		specialKey(4, 7, 1, "←", ActionArrowLeft),
		specialKey(4, 8, 1, "↑", ActionArrowUp),
		specialKey(4, 9, 1, "↓", ActionArrowDown),
		specialKey(4, 10, 1, "→", ActionArrowRight),
	)
	l = append(l, r4)

	return l
}

type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Neighbor returns the row/col indices of the key reached by moving from the
// key at (row, col) in the given direction. Left/right wrap within the row;
// up/down wrap across rows and pick the key whose grid column is closest to
// the current one, since rows have different lengths.
func (l Layout) Neighbor(row, col int, dir Direction) (int, int) {
	if row < 0 || row >= len(l) || col < 0 || col >= len(l[row]) {
		return 0, 0
	}
	switch dir {
	case Left:
		return row, (col - 1 + len(l[row])) % len(l[row])
	case Right:
		return row, (col + 1) % len(l[row])
	}

	cur := l[row][col].Col
	next := row
	if dir == Up {
		next = (row - 1 + len(l)) % len(l)
	} else {
		next = (row + 1) % len(l)
	}

	closest := 0
	best := -1
	for i, k := range l[next] {
		d := k.Col - cur
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
			closest = i
		}
	}
	return next, closest
}
