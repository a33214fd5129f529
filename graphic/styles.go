package graphic

import "github.com/nsf/termbox-go"

// Styles are the colors used by the preview.
type Styles struct {
	Foreground termbox.Attribute
	Background termbox.Attribute
	Accent     termbox.Attribute
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Foreground: termbox.ColorDefault,
		Background: termbox.ColorDefault,
		Accent:     termbox.ColorMagenta | termbox.AttrBold,
	}
}

// AsUInt16s returns the styles as plain numbers, for flag parsing.
func (s Styles) AsUInt16s() (uint16, uint16, uint16) {
	return uint16(s.Foreground), uint16(s.Background), uint16(s.Accent)
}

// StylesFromUInt16 builds styles from numbers produced by AsUInt16s.
func StylesFromUInt16(fg, bg, accent uint16) Styles {
	return Styles{
		Foreground: termbox.Attribute(fg),
		Background: termbox.Attribute(bg),
		Accent:     termbox.Attribute(accent),
	}
}
