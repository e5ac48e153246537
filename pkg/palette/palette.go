// Package palette builds the fixed color palette used for sixel output and
// maps truecolor bitmaps onto it: nearest-color lookup through
// hue/saturation/luminance buckets, and Floyd-Steinberg error-diffusion
// dithering.
package palette

import (
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
)

// Supported palette sizes. Xterm patch 335 defines 1024 as the practical
// maximum number of sixel color registers; 2 gives black-and-white output.
const (
	Size2    = 2
	Size256  = 256
	Size512  = 512
	Size1024 = 1024
	Size2048 = 2048
)

// DefaultSize is the palette size used when none is configured.
const DefaultSize = Size1024

// monoThreshold splits the 2-color palette: r^2+g^2+b^2 below it is black.
const monoThreshold = 35568

// colorIdx pairs a generated color with its generation-order index.
type colorIdx struct {
	color cell.RGB
	index int
}

// Palette is an immutable set of colors organized for fast nearest-neighbor
// lookup. Build it once per process and share it across images.
type Palette struct {
	size int

	// colors is sorted ascending by packed RGB; slot 0 is forced to pure
	// black and the last slot to pure white.
	colors []cell.RGB

	// sortedIndex maps generation order to position in colors, so bucket
	// hits resolve to final palette indices in O(1).
	sortedIndex []int

	// hsl buckets generation-order entries by [hue][saturation][luminance].
	hsl [][][]colorIdx

	hueBuckets int
	satStep    int
}

// New constructs a palette of the given size. Size must be one of 2, 256,
// 512, 1024, or 2048.
func New(size int) (*Palette, error) {
	p := &Palette{size: size}
	switch size {
	case Size2:
		p.colors = []cell.RGB{0x000000, 0xFFFFFF}
		p.sortedIndex = []int{0, 1}
		return p, nil
	case Size256, Size512, Size1024, Size2048:
		p.build()
		return p, nil
	default:
		return nil, fmt.Errorf("palette: unsupported size %d", size)
	}
}

// Size returns the number of colors.
func (p *Palette) Size() int { return p.size }

// Color returns the RGB value at palette index i.
func (p *Palette) Color(i int) cell.RGB { return p.colors[i] }

// build generates the palette on the HSL model: 5+ bits of hue, 2+ of
// saturation, 1-3 of luminance depending on size. The colors are converted
// to RGB, sorted ascending, and the ends overwritten with pure black and
// pure white.
func (p *Palette) build() {
	hueBits, satBits, lumBits := 5, 2, 1
	switch p.size {
	case Size512:
		lumBits = 2
	case Size1024:
		lumBits = 3
	case Size2048:
		satBits = 3
		lumBits = 3
	}
	p.hueBuckets = 1 << hueBits
	p.satStep = 100 / (1 << satBits)

	// Luminance brackets the pure color, leaning toward lighter.
	lumBegin, lumStep := 40, 30
	switch lumBits {
	case 2:
		lumBegin, lumStep = 20, 20
	case 3:
		lumBegin, lumStep = 8, 12
	}

	var raw []colorIdx
	for hue := 0; hue < 360-(360%p.hueBuckets); hue += 360 / p.hueBuckets {
		var satList [][]colorIdx
		for sat := p.satStep; sat <= 100; sat += p.satStep {
			var lumList []colorIdx
			for lum := lumBegin; lum < 100; lum += lumStep {
				ci := colorIdx{color: hslToRGB(hue, sat, lum), index: len(raw)}
				raw = append(raw, ci)
				lumList = append(lumList, ci)
			}
			satList = append(satList, lumList)
		}
		p.hsl = append(p.hsl, satList)
	}

	// Sort by color, keeping track of each entry's generation index so
	// bucket entries can still find their final slot. Ties are broken by
	// generation order and de-duplicated afterwards so every palette slot
	// holds a distinct value.
	sorted := make([]colorIdx, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].color != sorted[j].color {
			return sorted[i].color < sorted[j].color
		}
		return sorted[i].index < sorted[j].index
	})

	p.colors = make([]cell.RGB, len(sorted))
	p.sortedIndex = make([]int, len(sorted))
	for i, ci := range sorted {
		c := ci.color
		if i > 0 && c <= p.colors[i-1] {
			c = p.colors[i-1] + 1
		}
		p.colors[i] = c
		p.sortedIndex[ci.index] = i
	}

	// The dimmest color becomes true black and the brightest true white.
	p.colors[0] = 0x000000
	p.colors[len(p.colors)-1] = 0xFFFFFF
}

// Nearest finds the palette index closest to c.
//
// The search brackets the query's hue with its two nearest hue buckets
// (wrapping at the color wheel) and its saturation with the two nearest
// saturation buckets, then scans only those luminance fans exhaustively by
// Euclidean distance. This cuts the candidate set by roughly 97%. Pure black
// and pure white sit outside the bucket grid and are checked last as
// override candidates.
func (p *Palette) Nearest(c cell.RGB) int {
	r, g, b := c.Channels()

	if p.size == Size2 {
		if r*r+g*g+b*b < monoThreshold {
			return 0
		}
		return 1
	}

	hue, sat, _ := rgbToHSL(c)

	best := -1
	bestDiff := 1 << 30

	hue1 := hue / (360 / p.hueBuckets)
	hue2 := hue1 + 1
	if hue1 >= len(p.hsl)-1 {
		// Bracket pure red from above.
		hue1 = len(p.hsl) - 1
		hue2 = 0
	} else if hue1 == 0 {
		// Bracket pure red from below.
		hue2 = len(p.hsl) - 1
	}

	for _, hI := range [2]int{hue1, hue2} {
		sats := p.hsl[hI]

		sMin := sat/p.satStep - 1
		sMax := sMin + 1
		if sMin < 0 {
			sMin, sMax = 0, 1
		} else if sMin >= len(sats)-1 {
			sMax = len(sats) - 1
			sMin = sMax - 1
		}

		for sI := sMin; sI <= sMax; sI++ {
			for _, ci := range sats[sI] {
				r2, g2, b2 := ci.color.Channels()
				d := sq(r2-r) + sq(g2-g) + sq(b2-b)
				if d < bestDiff {
					best = p.sortedIndex[ci.index]
					bestDiff = d
				}
			}
		}
	}

	if r*r+g*g+b*b < bestDiff {
		best = 0 // black wins
	} else if sq(255-r)+sq(255-g)+sq(255-b) < bestDiff {
		best = p.size - 1 // white wins
	}
	return best
}

func sq(x int) int { return x * x }

// hslToRGB converts integer HSL (hue 0-360, sat/lum 0-100) to packed RGB.
func hslToRGB(hue, sat, lum int) cell.RGB {
	s := float64(sat) / 100.0
	l := float64(lum) / 100.0
	c := (1.0 - abs(2.0*l-1.0)) * s
	hp := float64(hue) / 60.0
	x := c * (1.0 - abs(mod2(hp)-1.0))
	var rp, gp, bp float64
	switch {
	case hp <= 1.0:
		rp, gp = c, x
	case hp <= 2.0:
		rp, gp = x, c
	case hp <= 3.0:
		gp, bp = c, x
	case hp <= 4.0:
		gp, bp = x, c
	case hp <= 5.0:
		rp, bp = x, c
	default:
		rp, bp = c, x
	}
	m := l - c/2.0
	return cell.RGB(uint32((rp+m)*255.0)<<16 |
		uint32((gp+m)*255.0)<<8 |
		uint32((bp+m)*255.0))
}

// rgbToHSL decomposes a packed RGB color into integer hue (0-360) and
// saturation/luminance (0-100) for bucket selection.
func rgbToHSL(c cell.RGB) (hue, sat, lum int) {
	r, g, b := c.Channels()
	h, s, l := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.Hsl()
	return int(h), int(s * 100.0), int(l * 100.0)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func mod2(x float64) float64 {
	for x >= 2.0 {
		x -= 2.0
	}
	return x
}
