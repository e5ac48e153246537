package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"

	"github.com/Gaurav-Gosain/gridterm/internal/config"
	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
	"github.com/Gaurav-Gosain/gridterm/pkg/event"
	"github.com/Gaurav-Gosain/gridterm/pkg/term"
)

// demo drives one terminal session: it lays out either an image or the
// test pattern, then reacts to input until quit or disconnect.
type demo struct {
	term   *term.Terminal
	source image.Image
	logger *log.Logger

	// dragging tracks an in-progress selection drag over image cells.
	dragging bool
}

func runDemo(cfg *config.Config, imagePath string) error {
	logger := newLogger(cfg)

	var src image.Image
	if imagePath != "" {
		img, err := loadImage(imagePath)
		if err != nil {
			return err
		}
		src = img
	}

	t, err := term.Open(
		term.WithSixel(cfg.SixelEnabled()),
		term.WithRGBColor(cfg.TrueColorEnabled()),
		term.WithPaletteSize(cfg.Display.PaletteSize),
		term.WithCacheCapacity(cfg.Display.CacheSize),
		term.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer t.Close() //nolint:errcheck

	if imagePath != "" {
		t.SetTitle("gridterm - " + filepath.Base(imagePath))
	} else {
		t.SetTitle("gridterm")
	}

	d := &demo{term: t, source: src, logger: logger}
	d.layout()
	if err := t.Flush(); err != nil {
		return err
	}

	for ev := range t.Events() {
		switch ev := ev.(type) {
		case event.Key:
			if isQuitKey(ev) {
				return nil
			}
		case event.Resize:
			t.Resize(ev.Width, ev.Height)
			d.layout()
		case event.Mouse:
			d.handleMouse(ev)
		case event.Disconnect:
			return nil
		}
		if !t.HasEvents() {
			if err := t.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func isQuitKey(k event.Key) bool {
	if k.Code == event.KeyEscape {
		return true
	}
	if k.Code == event.KeyRune && k.Ch == 'q' && !k.Ctrl && !k.Alt {
		return true
	}
	return k.Code == event.KeyRune && k.Ch == 'C' && k.Ctrl
}

func newLogger(cfg *config.Config) *log.Logger {
	if !cfg.Debug.Trace {
		return log.New(io.Discard)
	}
	out := io.Writer(os.Stderr)
	if cfg.Debug.LogFile != "" {
		// #nosec G304 - log destination is user configuration
		if f, err := os.OpenFile(cfg.Debug.LogFile,
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
			out = f
		}
	}
	logger := log.New(out)
	logger.SetLevel(log.DebugLevel)
	return logger
}

func loadImage(path string) (image.Image, error) {
	// #nosec G304 - the image path is the CLI argument
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close() //nolint:errcheck

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// layout redraws the whole screen for the current size.
func (d *demo) layout() {
	d.term.Screen().Clear()
	if d.source != nil {
		d.layoutImage()
	} else {
		d.layoutPattern()
	}
	d.statusLine()
}

// layoutImage scales the source to the pixel area above the status line and
// slices it into one bitmap fragment per cell.
func (d *demo) layoutImage() {
	screen := d.term.Screen()
	cols, rows := screen.Width(), screen.Height()-1
	if cols < 1 || rows < 1 {
		return
	}
	cellW, cellH := d.term.CellSize()

	scaled := image.NewRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	xdraw.ApproxBiLinear.Scale(scaled, fitRect(scaled.Bounds(), d.source.Bounds()),
		d.source, d.source.Bounds(), xdraw.Over, nil)
	bitmap := cell.FromImage(scaled)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			frag := cell.NewImage(cellW, cellH)
			for py := 0; py < cellH; py++ {
				for px := 0; px < cellW; px++ {
					frag.Set(px, py, bitmap.At(x*cellW+px, y*cellH+py))
				}
			}
			c := cell.NewCell()
			c.Image = frag
			screen.Set(x, y, c)
		}
	}
}

// fitRect scales src into dst preserving aspect ratio, centered.
func fitRect(dst, src image.Rectangle) image.Rectangle {
	dw, dh := dst.Dx(), dst.Dy()
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}
	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	x := (dw - w) / 2
	y := (dh - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// layoutPattern draws a text test card: the indexed color pairs, style
// flags, and a truecolor gradient.
func (d *demo) layoutPattern() {
	screen := d.term.Screen()

	colors := []cell.BasicColor{
		cell.Black, cell.Red, cell.Green, cell.Yellow,
		cell.Blue, cell.Magenta, cell.Cyan, cell.White,
	}
	names := []string{
		"black", "red", "green", "yellow",
		"blue", "magenta", "cyan", "white",
	}

	for i, c := range colors {
		attr := cell.DefaultAttributes()
		attr.Fore = c
		screen.PutText(2, 1+i, fmt.Sprintf("%-8s", names[i]), attr)

		attr.Bold = true
		screen.PutText(12, 1+i, fmt.Sprintf("%-8s", names[i]), attr)

		attr = cell.DefaultAttributes()
		attr.Back = c
		if c == cell.White {
			attr.Fore = cell.Black
		}
		screen.PutText(22, 1+i, "        ", attr)
	}

	styled := cell.DefaultAttributes()
	styled.Underline = true
	screen.PutText(2, 10, "underline", styled)
	styled = cell.DefaultAttributes()
	styled.Reverse = true
	screen.PutText(12, 10, "reverse", styled)
	styled = cell.DefaultAttributes()
	styled.Blink = true
	screen.PutText(22, 10, "blink", styled)

	// Truecolor gradient row.
	width := screen.Width() - 4
	for x := 0; x < width; x++ {
		attr := cell.Attributes{RGBMode: true}
		attr.BackRGB = cell.PackRGB(255*x/max(width-1, 1), 64,
			255-255*x/max(width-1, 1))
		attr.ForeRGB = 0xFFFFFF
		screen.Set(2+x, 12, cell.Cell{Attributes: attr, Ch: ' '})
	}
}

func (d *demo) statusLine() {
	screen := d.term.Screen()
	attr := cell.DefaultAttributes()
	attr.Reverse = true
	y := screen.Height() - 1
	msg := " q quit | drag to highlight | resize to relayout "
	for x := 0; x < screen.Width(); x++ {
		screen.Set(x, y, cell.Cell{Attributes: attr, Ch: ' '})
	}
	screen.PutText(0, y, msg, attr)
}

// handleMouse toggles selection highlight on image cells under a drag.
func (d *demo) handleMouse(m event.Mouse) {
	switch m.Kind {
	case event.MouseDown:
		d.dragging = m.Buttons&event.Button1 != 0
	case event.MouseUp:
		d.dragging = false
		return
	case event.MouseMotion:
		if !d.dragging {
			return
		}
	default:
		return
	}
	if c := d.term.Screen().At(m.X, m.Y); c != nil && c.IsImage() {
		c.Inverted = !c.Inverted
	}
}
