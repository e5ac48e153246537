package sixel

import (
	"strconv"
	"strings"
	"testing"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
	"github.com/Gaurav-Gosain/gridterm/pkg/palette"
)

func imageCell(w, h int, c cell.RGB) cell.Cell {
	img := cell.NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = c
	}
	out := cell.NewCell()
	out.Image = img
	return out
}

func newTestEncoder(t *testing.T, capacity int) *Encoder {
	t.Helper()
	pal, err := palette.New(palette.Size256)
	if err != nil {
		t.Fatal(err)
	}
	return NewEncoder(pal, NewCache(capacity))
}

func TestEncodeSolidWhite(t *testing.T) {
	e := newTestEncoder(t, 4)
	run := []cell.Cell{imageCell(8, 12, 0xFFFFFF)}
	payload := e.Encode(run, 8, 12)

	// White is the last palette slot and the only used color.
	if !strings.Contains(payload, "#255;2;100;100;100") {
		t.Errorf("missing white palette definition in %q", payload)
	}
	// 12 rows = two bands, separated by exactly one "-".
	if got := strings.Count(payload, "-"); got != 1 {
		t.Errorf("band separators = %d, want 1 in %q", got, payload)
	}
	// All 8 columns lit in each band: full-mask runs compress to "!8~".
	if !strings.Contains(payload, "!8~") {
		t.Errorf("expected RLE run !8~ in %q", payload)
	}
}

func TestEncodeCacheHit(t *testing.T) {
	e := newTestEncoder(t, 4)
	run := []cell.Cell{imageCell(8, 12, 0x336699)}

	first := e.Encode(run, 8, 12)
	if e.cache.Len() != 1 {
		t.Fatalf("cache Len() = %d after first encode", e.cache.Len())
	}
	second := e.Encode(run, 8, 12)
	if first != second {
		t.Error("cache hit returned a different payload")
	}
	if e.cache.Len() != 1 {
		t.Errorf("cache Len() = %d after second encode", e.cache.Len())
	}
}

func TestEncodeInvertedBypassesCache(t *testing.T) {
	e := newTestEncoder(t, 4)
	run := []cell.Cell{imageCell(8, 12, 0x000000)}
	run[0].Inverted = true

	payload := e.Encode(run, 8, 12)
	if e.cache.Len() != 0 {
		t.Errorf("inverted run was cached, Len() = %d", e.cache.Len())
	}
	// Inverted fragments paint solid white.
	if !strings.Contains(payload, "#255;2;100;100;100") {
		t.Errorf("inverted black should encode as white, got %q", payload)
	}
}

func TestEncodeNarrowLastCell(t *testing.T) {
	e := newTestEncoder(t, 4)
	run := []cell.Cell{
		imageCell(8, 12, 0xFFFFFF),
		imageCell(3, 12, 0xFFFFFF), // partial final column
	}
	payload := e.Encode(run, 8, 12)
	// Canvas is 8+3=11 columns wide, all white.
	if !strings.Contains(payload, "!11~") {
		t.Errorf("expected 11-column run in %q", payload)
	}
}

func TestEncodeShortBitmapPadsWithBackground(t *testing.T) {
	e := newTestEncoder(t, 4)

	// Default attributes: the second band is entirely padding and paints
	// black.
	run := []cell.Cell{imageCell(8, 6, 0xFFFFFF)}
	payload := e.Encode(run, 8, 12)
	if !strings.Contains(payload, "#0;2;0;0;0") {
		t.Errorf("missing black palette definition in %q", payload)
	}
	parts := strings.Split(payload, "-")
	if len(parts) != 2 {
		t.Fatalf("expected 2 bands, got %d in %q", len(parts), payload)
	}
	if strings.Contains(parts[1], "#255") {
		t.Errorf("padding band should carry no white pixels: %q", parts[1])
	}

	// An indexed red background pads with rendered red, not black.
	run = []cell.Cell{imageCell(8, 6, 0xFFFFFF)}
	run[0].Back = cell.Red
	payload = e.Encode(run, 8, 12)
	parts = strings.Split(payload, "-")
	if len(parts) != 2 {
		t.Fatalf("expected 2 bands, got %d in %q", len(parts), payload)
	}
	if parts[1] == "" {
		t.Fatal("padding band is empty")
	}
	// Dithering may split the red between neighboring palette entries, but
	// none of them is black.
	if strings.Contains(parts[1], "#0") {
		t.Errorf("red-background padding painted black: %q", parts[1])
	}
	red := strconv.Itoa(e.pal.Nearest(0xA80000))
	if !strings.Contains(parts[1], "#"+red) {
		t.Errorf("padding band missing red pass (#%s): %q", red, parts[1])
	}

	// A truecolor background pads with its exact value.
	run = []cell.Cell{imageCell(8, 6, 0x000000)}
	run[0].RGBMode = true
	run[0].BackRGB = 0xFFFFFF
	payload = e.Encode(run, 8, 12)
	parts = strings.Split(payload, "-")
	if len(parts) != 2 {
		t.Fatalf("expected 2 bands, got %d in %q", len(parts), payload)
	}
	if !strings.Contains(parts[1], "#255!8~") {
		t.Errorf("padding band should paint white: %q", parts[1])
	}
}

func TestEncodeNilCacheStillEncodes(t *testing.T) {
	pal, err := palette.New(palette.Size256)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEncoder(pal, nil)
	run := []cell.Cell{imageCell(4, 6, 0xFF0000)}
	if payload := e.Encode(run, 4, 6); payload == "" {
		t.Error("empty payload")
	}
}
