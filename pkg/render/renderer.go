// Package render turns a logical cell grid into a minimal stream of
// ECMA-48 escape sequences. It keeps a shadow copy of what the terminal
// currently shows and emits only the differences, with image runs encoded
// as sixel ahead of the text pass.
package render

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
	"github.com/Gaurav-Gosain/gridterm/pkg/sixel"
)

// Renderer computes screen updates. It is not safe for concurrent use; the
// owning terminal serializes Flush calls.
type Renderer struct {
	physical *cell.Grid

	encoder      *sixel.Encoder
	sixelEnabled bool
	rgbColor     bool

	cellWidth  int
	cellHeight int

	cursorX       int
	cursorY       int
	cursorVisible bool
	// cursorOn tracks what the terminal is actually showing, so the
	// visibility sequence is only emitted on change.
	cursorOn bool
	// placedX, placedY remember where the cursor was last addressed, so an
	// idle Flush with an unmoved cursor emits nothing. -1 means unknown.
	placedX int
	placedY int

	// Per-flush counters, reported through the debug logger.
	cellsDrawn int
	imageRuns  int

	// reallyCleared forces a full repaint on the next Flush.
	reallyCleared bool

	logger *log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEncoder enables sixel output through the given encoder.
func WithEncoder(enc *sixel.Encoder) Option {
	return func(r *Renderer) {
		r.encoder = enc
		r.sixelEnabled = enc != nil
	}
}

// WithRGBColor follows indexed color changes with explicit truecolor
// sequences, for terminals that support them.
func WithRGBColor(on bool) Option {
	return func(r *Renderer) { r.rgbColor = on }
}

// WithCellSize sets the pixel dimensions of one character cell, used to
// size sixel output.
func WithCellSize(width, height int) Option {
	return func(r *Renderer) {
		r.cellWidth = width
		r.cellHeight = height
	}
}

// WithLogger routes debug traces to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// New creates a renderer for a width x height screen. The first Flush
// repaints everything.
func New(width, height int, opts ...Option) *Renderer {
	r := &Renderer{
		physical:      cell.NewGrid(width, height),
		cellWidth:     8,
		cellHeight:    16,
		cursorVisible: true,
		cursorOn:      true,
		placedX:       -1,
		placedY:       -1,
		reallyCleared: true,
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resize matches the shadow grid to new screen dimensions and schedules a
// full repaint.
func (r *Renderer) Resize(width, height int) {
	r.physical = cell.NewGrid(width, height)
	r.reallyCleared = true
}

// Clear schedules a full repaint on the next Flush.
func (r *Renderer) Clear() {
	r.reallyCleared = true
}

// SetCursor positions the hardware cursor and sets its visibility. Takes
// effect on the next Flush.
func (r *Renderer) SetCursor(x, y int, visible bool) {
	r.cursorX = x
	r.cursorY = y
	r.cursorVisible = visible
}

// SetCellSize updates the pixel dimensions of one character cell.
func (r *Renderer) SetCellSize(width, height int) {
	r.cellWidth = width
	r.cellHeight = height
}

// SixelEnabled reports whether image cells render as sixel.
func (r *Renderer) SixelEnabled() bool { return r.sixelEnabled }

// Flush computes the escape sequences that bring the terminal from its
// current contents to the logical grid. The cursor is hidden during drawing
// unless it lands inside the screen, in which case it is repositioned after
// the content. A Flush with no pending changes and an unmoved cursor
// returns the empty string.
func (r *Renderer) Flush(logical *cell.Grid) string {
	var sb strings.Builder
	width, height := logical.Width(), logical.Height()
	r.cellsDrawn, r.imageRuns = 0, 0

	if width != r.physical.Width() || height != r.physical.Height() {
		r.Resize(width, height)
	}

	if r.cursorVisible &&
		r.cursorX >= 0 && r.cursorX < width &&
		r.cursorY >= 0 && r.cursorY < height {
		r.flushScreen(&sb, logical)
		sb.WriteString(r.cursor(true))
		// Drawing leaves the terminal cursor at the last cell touched, so
		// any output at all forces a re-address.
		if sb.Len() > 0 || r.cursorX != r.placedX || r.cursorY != r.placedY {
			sb.WriteString(gotoXY(r.cursorX, r.cursorY))
			r.placedX, r.placedY = r.cursorX, r.cursorY
		}
	} else {
		sb.WriteString(r.cursor(false))
		mark := sb.Len()
		r.flushScreen(&sb, logical)
		if sb.Len() > mark {
			r.placedX, r.placedY = -1, -1
		}
	}

	out := sb.String()
	if r.logger != nil {
		r.logger.Debug("flush",
			"cells", r.cellsDrawn, "imageRuns", r.imageRuns, "bytes", len(out))
	}
	return out
}

func (r *Renderer) flushScreen(sb *strings.Builder, logical *cell.Grid) {
	width, height := logical.Width(), logical.Height()

	var lastAttr *cell.Attributes
	if r.reallyCleared {
		a := cell.DefaultAttributes()
		lastAttr = &a
		sb.WriteString(clearAll())
	}

	// A text cell turning into an image cell means sixel will overdraw the
	// whole band, so the row must repaint completely.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			lCell := logical.At(x, y)
			pCell := r.physical.At(x, y)
			if lCell.IsImage() && !pCell.IsImage() {
				r.unsetImageRow(y)
				break
			}
		}
	}

	// Draw image runs first. Sixel output moves the cursor
	// unpredictably, so the text pass below re-addresses every cell it
	// touches after an image.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !logical.At(x, y).IsImage() {
				continue
			}
			right := x
			for right < width && logical.At(right, y).IsImage() &&
				(!logical.At(right, y).Equal(r.physical.At(right, y)) ||
					r.reallyCleared) {
				right++
			}
			if right > x {
				run := make([]cell.Cell, right-x)
				for i := range run {
					lCell := logical.At(x+i, y)
					run[i] = *lCell
					*r.physical.At(x+i, y) = *lCell
				}
				sb.WriteString(r.imageRun(x, y, run))
				r.imageRuns++
			}
			x = right
		}
	}

	for y := 0; y < height; y++ {
		lastAttr = r.flushLine(sb, logical, y, lastAttr)
	}

	r.reallyCleared = false
}

// unsetImageRow blanks the shadow copies of row y's image cells so both the
// image and text passes repaint them.
func (r *Renderer) unsetImageRow(y int) {
	for x := 0; x < r.physical.Width(); x++ {
		if p := r.physical.At(x, y); p.IsImage() {
			p.Reset()
		}
	}
}

// imageRun renders a horizontal run of image cells. With sixel off, the run
// degrades to blank text cells.
func (r *Renderer) imageRun(x, y int, run []cell.Cell) string {
	if !r.sixelEnabled || r.encoder == nil {
		var sb strings.Builder
		sb.WriteString(r.normal())
		sb.WriteString(gotoXY(x, y))
		for range run {
			sb.WriteByte(' ')
		}
		return sb.String()
	}
	payload := r.encoder.Encode(run, r.cellWidth, r.cellHeight)
	return gotoXY(x, y) + "\x1bPq" + payload + "\x1b\\"
}

// flushLine emits the text updates for row y. lastAttr carries the SGR
// state the terminal is left in across rows; nil means unknown.
func (r *Renderer) flushLine(sb *strings.Builder, logical *cell.Grid, y int, lastAttr *cell.Attributes) *cell.Attributes {
	width := logical.Width()

	lastX := -1
	textEnd := 0
	for x := 0; x < width; x++ {
		if !logical.At(x, y).IsBlank() {
			textEnd = x
		}
	}
	// First column beyond the text area.
	textEnd++

	hasImage := false

	for x := 0; x < width; x++ {
		lCell := logical.At(x, y)
		pCell := r.physical.At(x, y)

		if lCell.Equal(pCell) && !r.reallyCleared {
			continue
		}

		if lastAttr == nil {
			a := cell.DefaultAttributes()
			lastAttr = &a
			sb.WriteString(r.normal())
		}

		// Only re-address the cursor when not advancing one cell at a
		// time.
		if lastX != x-1 || lastX == -1 {
			sb.WriteString(gotoXY(x, y))
		}

		if x == textEnd && textEnd < width-1 {
			// Everything from here is blank. Collapse it to one erase.
			for i := x; i < width; i++ {
				r.physical.At(i, y).Reset()
			}
			sb.WriteString(clearRemainingLine())
			a := cell.DefaultAttributes()
			return &a
		}

		if lCell.IsImage() {
			// Already drawn by the image pass.
			hasImage = true
			lastX = x
			*pCell = *lCell
			continue
		}
		if hasImage {
			hasImage = false
			sb.WriteString(gotoXY(x, y))
		}

		sb.WriteString(r.attrDiff(*lastAttr, lCell.Attributes))
		sb.WriteRune(lCell.Ch)
		r.cellsDrawn++

		lastX = x
		*lastAttr = lCell.Attributes
		*pCell = *lCell
	}
	return lastAttr
}

// attrDiff emits the cheapest SGR sequence that takes the terminal from
// attribute state last to want: nothing when equal, a single color channel
// or a color pair when only colors moved, and a full reset otherwise.
func (r *Renderer) attrDiff(last, want cell.Attributes) string {
	if want == last {
		return ""
	}
	if want.SameStyle(last) && want.RGBMode == last.RGBMode {
		if !want.RGBMode {
			foreChanged := want.Fore != last.Fore
			backChanged := want.Back != last.Back
			switch {
			case foreChanged && backChanged:
				return r.colorBoth(want.Bold, want.Fore, want.Back)
			case foreChanged:
				return r.colorOne(want.Bold, want.Fore, true)
			case backChanged:
				return r.colorOne(want.Bold, want.Back, false)
			}
		} else {
			foreChanged := want.ForeRGB != last.ForeRGB
			backChanged := want.BackRGB != last.BackRGB
			switch {
			case foreChanged && backChanged:
				return colorRGBBoth(want.ForeRGB, want.BackRGB)
			case foreChanged:
				return colorRGBOne(want.ForeRGB, true)
			case backChanged:
				return colorRGBOne(want.BackRGB, false)
			}
		}
	}
	if want.RGBMode {
		return colorRGBFull(want)
	}
	return r.colorFull(want)
}

// cursor returns the visibility sequence when the desired state differs
// from what the terminal shows.
func (r *Renderer) cursor(on bool) string {
	if on && !r.cursorOn {
		r.cursorOn = true
		return "\x1b[?25h"
	}
	if !on && r.cursorOn {
		r.cursorOn = false
		return "\x1b[?25l"
	}
	return ""
}
