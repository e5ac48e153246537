package cell

import (
	"encoding/binary"
	"hash/fnv"
	"image"
)

// Image is a small truecolor bitmap carried by an image-fragment cell,
// typically one character cell's worth of a larger picture. Pixels are
// row-major 0xRRGGBB values.
type Image struct {
	Width  int
	Height int
	Pix    []RGB

	// fingerprint is computed lazily; zero means "not yet computed".
	fingerprint uint64
}

// NewImage allocates a zeroed (black) bitmap.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]RGB, width*height),
	}
}

// FromImage converts any image.Image into a truecolor bitmap, discarding
// alpha.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Set(x, y, PackRGB(int(r>>8), int(g>>8), int(bl>>8)))
		}
	}
	return out
}

// At returns the pixel at (x, y). Out-of-range coordinates return black.
func (m *Image) At(x, y int) RGB {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

// Set writes the pixel at (x, y), ignoring out-of-range coordinates. Writing
// invalidates the cached fingerprint.
func (m *Image) Set(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = c
	m.fingerprint = 0
}

// Equal reports whether two bitmaps have identical dimensions and pixels.
func (m *Image) Equal(o *Image) bool {
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	return m.Fingerprint() == o.Fingerprint()
}

// Fingerprint returns a content hash of the bitmap, memoized until the next
// Set. It keys the sixel cache.
func (m *Image) Fingerprint() uint64 {
	if m.fingerprint != 0 {
		return m.fingerprint
	}
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.Width))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Height))
	_, _ = h.Write(buf[:])
	for _, p := range m.Pix {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(p))
		_, _ = h.Write(buf[0:4])
	}
	fp := h.Sum64()
	if fp == 0 {
		fp = 1 // keep zero as the "dirty" sentinel
	}
	m.fingerprint = fp
	return fp
}
