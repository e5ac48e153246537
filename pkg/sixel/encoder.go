package sixel

import (
	"strconv"
	"strings"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
	"github.com/Gaurav-Gosain/gridterm/pkg/palette"
)

// Encoder turns a horizontal run of image cells into the payload of a
// DECSIXEL sequence (the bytes between "ESC P q" and "ESC \"). The caller
// wraps the payload with cursor positioning and the DCS framing.
type Encoder struct {
	pal   *palette.Palette
	cache *Cache
}

// NewEncoder creates an encoder over the given palette and cache. The cache
// may be nil to disable payload reuse.
func NewEncoder(pal *palette.Palette, cache *Cache) *Encoder {
	return &Encoder{pal: pal, cache: cache}
}

// Palette returns the palette the encoder quantizes against.
func (e *Encoder) Palette() *palette.Palette { return e.pal }

// Encode renders the run as a sixel payload. Each cell contributes a
// cellWidth x cellHeight region; bitmaps narrower or shorter than the cell
// box are padded with the cell's background color. Payloads for
// non-inverted runs are cached by content; inverted cells change every
// cursor blink, so they always re-encode.
func (e *Encoder) Encode(run []cell.Cell, cellWidth, cellHeight int) string {
	cacheable := e.cache != nil
	for i := range run {
		if run[i].Inverted {
			cacheable = false
			break
		}
	}

	var key uint64
	if cacheable {
		key = Key(run)
		if payload, ok := e.cache.Get(key); ok {
			return payload
		}
	}

	img := e.compose(run, cellWidth, cellHeight)
	payload := e.emit(e.pal.Dither(img))

	if cacheable {
		e.cache.Put(key, payload)
	}
	return payload
}

// compose blits the run's bitmaps side by side. Any part of a cell's box
// its bitmap does not cover is filled with the cell's background color, so
// short fragments blend with the text around them. The last cell's bitmap
// may be narrower than the cell box, in which case the canvas shrinks to
// match instead of padding a full column.
func (e *Encoder) compose(run []cell.Cell, cellWidth, cellHeight int) *cell.Image {
	width := len(run) * cellWidth
	if last := run[len(run)-1].Image; last != nil && last.Width < cellWidth {
		width -= cellWidth - last.Width
	}

	out := cell.NewImage(width, cellHeight)
	for i := range run {
		src := run[i].Image
		bg := backgroundRGB(&run[i])
		for y := 0; y < cellHeight; y++ {
			for x := 0; x < cellWidth; x++ {
				dx := i*cellWidth + x
				if dx >= width {
					break
				}
				c := bg
				if src != nil && x < src.Width && y < src.Height {
					c = src.At(x, y)
				}
				if run[i].Inverted {
					// Selection highlight paints the whole box solid
					// white.
					c = 0xFFFFFF
				}
				out.Set(dx, y, c)
			}
		}
	}
	return out
}

// basicBackRGB maps the eight indexed colors to the truecolor values the
// text renderer paints for non-bold backgrounds.
var basicBackRGB = [8]cell.RGB{
	0x000000, 0xA80000, 0x00A800, 0xA85400,
	0x0000A8, 0xA800A8, 0x00A8A8, 0xA8A8A8,
}

// backgroundRGB resolves a cell's background to its rendered truecolor
// value.
func backgroundRGB(c *cell.Cell) cell.RGB {
	if c.RGBMode {
		return c.BackRGB
	}
	return basicBackRGB[c.Back&7]
}

// emit encodes an indexed bitmap as sixel bands. Each six-row band gets one
// pass per palette color present in it, with runs of four or more identical
// sixels compressed as "!<n>".
func (e *Encoder) emit(img *palette.Indexed) string {
	var sb strings.Builder

	used := make([]bool, e.pal.Size())
	for _, idx := range img.Pix {
		used[idx] = true
	}
	for i, ok := range used {
		if !ok {
			continue
		}
		r, g, b := e.pal.Color(i).Channels()
		sb.WriteByte('#')
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(";2;")
		sb.WriteString(strconv.Itoa(r * 100 / 255))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(g * 100 / 255))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(b * 100 / 255))
	}

	for band := 0; band < img.Height; band += 6 {
		rows := img.Height - band
		if rows > 6 {
			rows = 6
		}
		for colorIdx, ok := range used {
			if !ok {
				continue
			}
			masks := make([]byte, img.Width)
			present := false
			for dy := 0; dy < rows; dy++ {
				for x := 0; x < img.Width; x++ {
					if img.At(x, band+dy) == colorIdx {
						masks[x] |= 1 << dy
						present = true
					}
				}
			}
			if !present {
				continue
			}
			sb.WriteByte('#')
			sb.WriteString(strconv.Itoa(colorIdx))
			writeRLE(&sb, masks)
			sb.WriteByte('$')
		}
		if band+6 < img.Height {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// writeRLE emits sixel data characters, compressing runs longer than three.
func writeRLE(sb *strings.Builder, masks []byte) {
	for i := 0; i < len(masks); {
		j := i
		for j < len(masks) && masks[j] == masks[i] {
			j++
		}
		n := j - i
		ch := masks[i] + 63
		if n > 3 {
			sb.WriteByte('!')
			sb.WriteString(strconv.Itoa(n))
			sb.WriteByte(ch)
		} else {
			for ; n > 0; n-- {
				sb.WriteByte(ch)
			}
		}
		i = j
	}
}
