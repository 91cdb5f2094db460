// Package backend wraps the terminal screen: it draws cells and turns
// terminal key presses into hotkey events.
package backend

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Canvas is a grid of styled cells. tcell.Screen satisfies it.
type Canvas interface {
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Size() (width, height int)
}

// Rect is a screen rectangle. Right and Bottom are exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Width returns the number of columns.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the number of rows.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rect has no cells.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Contains reports whether (x, y) lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// DrawText writes s at (x, y), stopping after limit cells, and returns the
// number of cells written. A negative limit means no limit.
func DrawText(c Canvas, x, y, limit int, s string, style tcell.Style) int {
	n := 0
	for _, r := range s {
		if limit >= 0 && n >= limit {
			break
		}
		c.SetContent(x+n, y, r, nil, style)
		n++
	}
	return n
}

// Fill sets every cell of r to ch.
func Fill(c Canvas, r Rect, ch rune, style tcell.Style) {
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			c.SetContent(x, y, ch, nil, style)
		}
	}
}

// HLine draws a w cell wide line starting with left and ending with right.
func HLine(c Canvas, x, y, w int, left, mid, right rune, style tcell.Style) {
	if w <= 0 {
		return
	}
	c.SetContent(x, y, left, nil, style)
	for i := 1; i < w-1; i++ {
		c.SetContent(x+i, y, mid, nil, style)
	}
	if w > 1 {
		c.SetContent(x+w-1, y, right, nil, style)
	}
}

// Box draws a single-line border around r.
func Box(c Canvas, r Rect, style tcell.Style) {
	if r.Empty() {
		return
	}
	HLine(c, r.Left, r.Top, r.Width(), tcell.RuneULCorner, tcell.RuneHLine, tcell.RuneURCorner, style)
	for y := r.Top + 1; y < r.Bottom-1; y++ {
		c.SetContent(r.Left, y, tcell.RuneVLine, nil, style)
		c.SetContent(r.Right-1, y, tcell.RuneVLine, nil, style)
	}
	if r.Height() > 1 {
		HLine(c, r.Left, r.Bottom-1, r.Width(), tcell.RuneLLCorner, tcell.RuneHLine, tcell.RuneLRCorner, style)
	}
}

// Cell is one cell of a MemCanvas.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// MemCanvas is an in-memory Canvas. Writes outside its bounds are
// ignored.
type MemCanvas struct {
	mu     sync.RWMutex
	cells  []Cell
	width  int
	height int
}

// NewMemCanvas creates a blank canvas.
func NewMemCanvas(width, height int) *MemCanvas {
	c := &MemCanvas{width: width, height: height}
	c.cells = make([]Cell, width*height)
	c.Clear()
	return c
}

// SetContent implements Canvas.
func (c *MemCanvas) SetContent(x, y int, mainc rune, _ []rune, style tcell.Style) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y*c.width+x] = Cell{Rune: mainc, Style: style}
}

// Size implements Canvas.
func (c *MemCanvas) Size() (int, int) {
	return c.width, c.height
}

// Cell returns the cell at (x, y), or a blank cell outside the bounds.
func (c *MemCanvas) Cell(x, y int) Cell {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
	return c.cells[y*c.width+x]
}

// Row returns the text of row y.
func (c *MemCanvas) Row(y int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if y < 0 || y >= c.height {
		return ""
	}
	var sb strings.Builder
	for _, cell := range c.cells[y*c.width : (y+1)*c.width] {
		sb.WriteRune(cell.Rune)
	}
	return sb.String()
}

// String returns all rows joined by newlines.
func (c *MemCanvas) String() string {
	rows := make([]string, c.height)
	for y := range rows {
		rows[y] = c.Row(y)
	}
	return strings.Join(rows, "\n")
}

// Clear blanks every cell.
func (c *MemCanvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
}
