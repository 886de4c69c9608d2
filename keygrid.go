package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"glasskey/config"
	"glasskey/keyboard"
)

// keyGutter is the spacing between keys, matching the tight original look.
const keyGutter = 2

// keyRowLayout places a row's keys on a fixed column grid so wide keys
// (space, backspace, enter) span several columns and rows of different
// lengths stay aligned.
type keyRowLayout struct {
	keys []keyboard.Key
	cols int
}

func (l *keyRowLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	h := float32(0)
	for _, o := range objects {
		if m := o.MinSize().Height; m > h {
			h = m
		}
	}
	return fyne.NewSize(float32(l.cols)*40, h+2*keyGutter)
}

func (l *keyRowLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	unit := size.Width / float32(l.cols)
	for i, o := range objects {
		if i >= len(l.keys) {
			break
		}
		k := l.keys[i]
		o.Move(fyne.NewPos(float32(k.Col)*unit+keyGutter, keyGutter))
		o.Resize(fyne.NewSize(unit*float32(k.Width)-2*keyGutter, size.Height-2*keyGutter))
	}
}

// dragStrip is the grab area at the top of the window. Fyne reports drag
// deltas; the shell turns them into OS window moves.
type dragStrip struct {
	widget.BaseWidget
	onDrag func(dx, dy int)
}

func newDragStrip(onDrag func(dx, dy int)) *dragStrip {
	d := &dragStrip{onDrag: onDrag}
	d.ExtendBaseWidget(d)
	return d
}

func (d *dragStrip) CreateRenderer() fyne.WidgetRenderer {
	grip := canvas.NewRectangle(theme.Color(theme.ColorNameButton))
	grip.CornerRadius = 3
	return widget.NewSimpleRenderer(grip)
}

func (d *dragStrip) MinSize() fyne.Size {
	return fyne.NewSize(40, 10)
}

func (d *dragStrip) Dragged(e *fyne.DragEvent) {
	d.onDrag(int(e.Dragged.DX), int(e.Dragged.DY))
}

func (d *dragStrip) DragEnd() {}

// keyTheme maps the configured colors onto the toolkit theme, falling back
// to the dark theme for everything the settings don't cover.
type keyTheme struct {
	cfg  config.Config
	base fyne.Theme
}

func newKeyTheme(cfg config.Config) fyne.Theme {
	return &keyTheme{cfg: cfg, base: theme.DarkTheme()}
}

func (t *keyTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return config.MustColor(t.cfg.BackgroundColor)
	case theme.ColorNameButton, theme.ColorNameInputBackground:
		return config.MustColor(t.cfg.KeyColor)
	case theme.ColorNameForeground:
		return config.MustColor(t.cfg.TextColor)
	case theme.ColorNameHover, theme.ColorNamePrimary, theme.ColorNameFocus:
		return config.MustColor(t.cfg.KeyHoverColor)
	}
	return t.base.Color(name, variant)
}

func (t *keyTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *keyTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *keyTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		// The configured size is in point units from the settings file;
		// halve it to land near the toolkit's text scale.
		return float32(t.cfg.FontSize) * 0.5
	}
	return t.base.Size(name)
}
