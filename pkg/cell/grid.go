package cell

import (
	"github.com/mattn/go-runewidth"
)

// Grid is a fixed-size 2D array of cells for one frame. The application owns
// a logical grid and mutates it freely between renders; the renderer owns a
// physical grid recording what was last sent to the terminal.
type Grid struct {
	width  int
	height int
	cells  []Cell // row-major
}

// NewGrid returns a grid of blank cells.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{width: width, height: height, cells: make([]Cell, width*height)}
	g.Clear()
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// At returns a pointer to the cell at (x, y), or nil when out of bounds.
func (g *Grid) At(x, y int) *Cell {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return nil
	}
	return &g.cells[y*g.width+x]
}

// Set copies c into position (x, y), ignoring out-of-bounds writes.
func (g *Grid) Set(x, y int, c Cell) {
	if p := g.At(x, y); p != nil {
		*p = c
	}
}

// PutText writes s starting at (x, y) with the given attributes, advancing
// by display width. Wide glyphs occupy two columns; the shadow column is
// left blank with the same attributes so equality checks stay coherent.
func (g *Grid) PutText(x, y int, s string, attr Attributes) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		g.Set(x, y, Cell{Attributes: attr, Ch: r})
		if w > 1 {
			g.Set(x+1, y, Cell{Attributes: attr, Ch: ' '})
		}
		x += w
	}
}

// Clear resets every cell to a blank.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = NewCell()
	}
}

// Fill sets every cell to c.
func (g *Grid) Fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// Resize grows or shrinks the grid, preserving the overlapping region and
// blanking any newly exposed cells.
func (g *Grid) Resize(width, height int) {
	if width == g.width && height == g.height {
		return
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	next := NewGrid(width, height)
	for y := 0; y < min(height, g.height); y++ {
		for x := 0; x < min(width, g.width); x++ {
			next.cells[y*width+x] = g.cells[y*g.width+x]
		}
	}
	*g = *next
}

// CopyFrom makes g an exact copy of src, resizing if needed.
func (g *Grid) CopyFrom(src *Grid) {
	if g.width != src.width || g.height != src.height {
		g.width = src.width
		g.height = src.height
		g.cells = make([]Cell, len(src.cells))
	}
	copy(g.cells, src.cells)
}
