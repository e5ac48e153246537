package cell

import "testing"

func TestRGBChannels(t *testing.T) {
	r, g, b := RGB(0x123456).Channels()
	if r != 0x12 || g != 0x34 || b != 0x56 {
		t.Errorf("Channels() = %d, %d, %d", r, g, b)
	}
	if got := PackRGB(r, g, b); got != 0x123456 {
		t.Errorf("PackRGB round trip = %06x", got)
	}
}

func TestPackRGBClamps(t *testing.T) {
	if got := PackRGB(-5, 300, 128); got != 0x00FF80 {
		t.Errorf("PackRGB(-5, 300, 128) = %06x, want 00ff80", got)
	}
}

func TestCellBlank(t *testing.T) {
	c := NewCell()
	if !c.IsBlank() {
		t.Error("new cell should be blank")
	}

	c.Ch = 'x'
	if c.IsBlank() {
		t.Error("cell with glyph should not be blank")
	}

	c.Reset()
	if !c.IsBlank() {
		t.Error("reset cell should be blank")
	}

	c.Fore = Red
	if c.IsBlank() {
		t.Error("styled space should not be blank")
	}

	c.Reset()
	c.Image = NewImage(8, 16)
	if c.IsBlank() {
		t.Error("image cell should not be blank")
	}
	if !c.IsImage() {
		t.Error("cell with bitmap should report IsImage")
	}
}

func TestCellEqual(t *testing.T) {
	a, b := NewCell(), NewCell()
	if !a.Equal(&b) {
		t.Error("blank cells should be equal")
	}

	b.Ch = 'x'
	if a.Equal(&b) {
		t.Error("different glyph should not be equal")
	}

	b = NewCell()
	b.Bold = true
	if a.Equal(&b) {
		t.Error("different style should not be equal")
	}

	// Image comparison is by content, not pointer.
	a.Image = NewImage(2, 2)
	b = NewCell()
	b.Image = NewImage(2, 2)
	if !a.Equal(&b) {
		t.Error("identical bitmaps should compare equal")
	}
	b.Image.Set(0, 0, 0xFF0000)
	if a.Equal(&b) {
		t.Error("different bitmaps should not compare equal")
	}

	// Inversion changes rendering, so it changes equality.
	b.Image.Set(0, 0, 0)
	b.Inverted = true
	if a.Equal(&b) {
		t.Error("inverted fragment should not equal plain one")
	}
}

func TestImageFingerprint(t *testing.T) {
	a := NewImage(4, 4)
	b := NewImage(4, 4)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical bitmaps should share a fingerprint")
	}

	b.Set(1, 1, 0x808080)
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different content should change the fingerprint")
	}

	// Same pixel count, different shape.
	c := NewImage(8, 2)
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("dimensions should participate in the fingerprint")
	}
}

func TestAttributesSameStyle(t *testing.T) {
	a := DefaultAttributes()
	b := DefaultAttributes()
	b.Fore = Green
	if !a.SameStyle(b) {
		t.Error("color change should not affect SameStyle")
	}
	b.Underline = true
	if a.SameStyle(b) {
		t.Error("flag change should affect SameStyle")
	}
}
