package graphic

import (
	"math"

	"github.com/nsf/termbox-go"
)

const (
	// BarRune is a full block
	BarRune rune = '█'

	// SpaceRune is an empty cell
	SpaceRune rune = ' '

	// NumRunes number of runes for sub step bars
	NumRunes = 8
)

var (
	// lower blocks, growing upward
	upRunes = [NumRunes]rune{
		SpaceRune, '▁', '▂', '▃', '▄', '▅', '▆', '▇',
	}

	// left blocks, growing rightward
	rightRunes = [NumRunes]rune{
		SpaceRune, '▏', '▎', '▍', '▌', '▋', '▊', '▉',
	}
)

// Canvas is a grid of terminal cells.
type Canvas interface {
	Size() (int, int)
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
}

type termboxCanvas struct{}

func (termboxCanvas) Size() (int, int) {
	return termbox.Size()
}

func (termboxCanvas) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(x, y, ch, fg, bg)
}

// stopAndTop splits a level in [0, 1] over size cells into whole cells and
// the eighth of the partial cell.
func stopAndTop(value float64, size int) (whole, part int) {
	switch {
	case math.IsNaN(value), value <= 0, size <= 0:
		return 0, 0
	case value > 1:
		value = 1
	}

	eighths := int(value * float64(size) * NumRunes)
	return eighths / NumRunes, eighths % NumRunes
}

// drawMeter draws a vertical bar with its base on row bottom.
func drawMeter(c Canvas, col, bottom, width, height int, value float64, fg, bg termbox.Attribute) {
	whole, part := stopAndTop(value, height)

	for xCol := col; xCol < col+width; xCol++ {
		xRow := bottom

		for xRow > bottom-whole {
			c.SetCell(xCol, xRow, BarRune, fg, bg)
			xRow--
		}

		if part > 0 {
			c.SetCell(xCol, xRow, upRunes[part], fg, bg)
		}
	}
}

// drawGauge draws a horizontal bar starting at col.
func drawGauge(c Canvas, col, row, width int, value float64, fg, bg termbox.Attribute) {
	whole, part := stopAndTop(value, width)

	xCol := col
	for ; xCol < col+whole; xCol++ {
		c.SetCell(xCol, row, BarRune, fg, bg)
	}

	if part > 0 {
		c.SetCell(xCol, row, rightRunes[part], fg, bg)
	}
}

// drawText writes s from col, clipped at maxCol. It returns the next column.
func drawText(c Canvas, col, row, maxCol int, s string, fg, bg termbox.Attribute) int {
	for _, r := range s {
		if col >= maxCol {
			break
		}
		c.SetCell(col, row, r, fg, bg)
		col++
	}
	return col
}
