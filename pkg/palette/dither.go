package palette

import "github.com/Gaurav-Gosain/gridterm/pkg/cell"

// Indexed is a bitmap whose pixels are palette indices rather than RGB
// values, ready for sixel band encoding.
type Indexed struct {
	Width  int
	Height int
	Pix    []int
}

// At returns the palette index at (x, y).
func (m *Indexed) At(x, y int) int { return m.Pix[y*m.Width+x] }

// pixel is an intermediate value holding diffused error. Channels are
// clamped back to [0, 255] each time error is added.
type pixel struct {
	r, g, b int
}

// Dither quantizes a truecolor bitmap onto the palette using
// Floyd-Steinberg error diffusion. The residual error at each pixel is
// split 7/16 right, 3/16 lower-left, 5/16 below, and 1/16 lower-right,
// clamping each channel to [0, 255]. The input image is not modified.
func (p *Palette) Dither(img *cell.Image) *Indexed {
	width, height := img.Width, img.Height
	out := &Indexed{Width: width, Height: height, Pix: make([]int, width*height)}

	// Working copy accumulates diffused error.
	work := make([]pixel, width*height)
	for i, c := range img.Pix {
		r, g, b := c.Channels()
		work[i] = pixel{r, g, b}
	}

	for y := range height {
		for x := range width {
			i := y*width + x
			old := work[i]
			idx := p.Nearest(cell.PackRGB(old.r, old.g, old.b))
			out.Pix[i] = idx

			pr, pg, pb := p.Color(idx).Channels()
			er := (old.r - pr) / 16
			eg := (old.g - pg) / 16
			eb := (old.b - pb) / 16

			if x < width-1 {
				work[i+1] = work[i+1].add(7*er, 7*eg, 7*eb)
			}
			if y < height-1 {
				row := i + width
				if x > 0 {
					work[row-1] = work[row-1].add(3*er, 3*eg, 3*eb)
				}
				work[row] = work[row].add(5*er, 5*eg, 5*eb)
				if x < width-1 {
					work[row+1] = work[row+1].add(1*er, 1*eg, 1*eb)
				}
			}
		}
	}
	return out
}

func (c pixel) add(dr, dg, db int) pixel {
	return pixel{clamp255(c.r + dr), clamp255(c.g + dg), clamp255(c.b + db)}
}

func clamp255(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
