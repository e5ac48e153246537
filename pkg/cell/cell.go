// Package cell defines the styled character and image cells that make up a
// terminal grid, along with the color model shared by the parser, renderer,
// and sixel encoder.
package cell

// BasicColor is one of the eight ECMA-48 indexed colors. The value maps
// directly onto SGR parameters: 30+color for foreground, 40+color for
// background.
type BasicColor uint8

// The eight ECMA-48 colors, in SGR parameter order.
const (
	Black BasicColor = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

// RGB is a 24-bit truecolor value packed as 0xRRGGBB.
type RGB uint32

// Channels splits an RGB value into its 8-bit components.
func (c RGB) Channels() (r, g, b int) {
	return int(c >> 16 & 0xFF), int(c >> 8 & 0xFF), int(c & 0xFF)
}

// PackRGB builds an RGB value from 8-bit components. Components are clamped
// to [0, 255].
func PackRGB(r, g, b int) RGB {
	return RGB(clamp8(r)<<16 | clamp8(g)<<8 | clamp8(b))
}

func clamp8(x int) uint32 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint32(x)
}

// Attributes is the styling of a single cell. A cell is either in indexed
// mode (Fore/Back hold BasicColor values) or in RGB mode (ForeRGB/BackRGB
// hold truecolor values); the two modes never mix within one cell.
type Attributes struct {
	Fore BasicColor
	Back BasicColor

	ForeRGB RGB
	BackRGB RGB
	// RGBMode selects which pair of color fields is live.
	RGBMode bool

	Bold      bool
	Reverse   bool
	Blink     bool
	Underline bool
}

// DefaultAttributes is white-on-black indexed text with no style flags,
// matching the terminal state after an SGR reset.
func DefaultAttributes() Attributes {
	return Attributes{Fore: White, Back: Black}
}

// Equal reports whether every attribute field matches.
func (a Attributes) Equal(b Attributes) bool {
	return a == b
}

// SameStyle reports whether the style flags (but not colors) match.
func (a Attributes) SameStyle(b Attributes) bool {
	return a.Bold == b.Bold && a.Reverse == b.Reverse &&
		a.Blink == b.Blink && a.Underline == b.Underline
}

// Cell is one grid position: either a styled character or a fragment of a
// larger bitmap occupying one character cell.
type Cell struct {
	Attributes

	// Ch is the display glyph. Ignored when Image is set.
	Ch rune

	// Image, when non-nil, makes this an image-fragment cell.
	Image *Image

	// Inverted marks an image fragment as selection-highlighted. Inverted
	// fragments are rendered as solid white and are never cached.
	Inverted bool
}

// NewCell returns a blank text cell with default attributes.
func NewCell() Cell {
	return Cell{Attributes: DefaultAttributes(), Ch: ' '}
}

// IsImage reports whether the cell carries bitmap content.
func (c *Cell) IsImage() bool {
	return c.Image != nil
}

// IsBlank reports whether the cell is a space with default attributes and no
// image content. Blank detection drives the renderer's clear-to-end-of-line
// collapse.
func (c *Cell) IsBlank() bool {
	return c.Ch == ' ' && c.Image == nil &&
		c.Attributes == DefaultAttributes()
}

// Equal compares every field of two cells, including image content. It is
// the "needs redraw" predicate used by the differential renderer.
func (c *Cell) Equal(o *Cell) bool {
	if c.Attributes != o.Attributes {
		return false
	}
	if c.Inverted != o.Inverted {
		return false
	}
	if (c.Image == nil) != (o.Image == nil) {
		return false
	}
	if c.Image != nil {
		return c.Image.Equal(o.Image)
	}
	return c.Ch == o.Ch
}

// Reset restores the cell to a blank with default attributes.
func (c *Cell) Reset() {
	*c = NewCell()
}
