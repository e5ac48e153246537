package render

import (
	"strconv"
	"strings"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
)

// gotoXY moves the cursor to column x, row y (both zero-based).
func gotoXY(x, y int) string {
	return "\x1b[" + strconv.Itoa(y+1) + ";" + strconv.Itoa(x+1) + "H"
}

// clearAll erases the whole screen. Terminals with back-color-erase fill
// with the current background, so the attributes are forced to
// white-on-black first.
func clearAll() string {
	return "\x1b[0;37;40m\x1b[2J"
}

// clearRemainingLine erases from the cursor to the end of the line, with
// the same back-color-erase guard as clearAll.
func clearRemainingLine() string {
	return "\x1b[0;37;40m\x1b[K"
}

// normal resets all attributes to white-on-black.
func (r *Renderer) normal() string {
	return "\x1b[0;37;40m" + r.rgbHint(false, cell.White, true) +
		r.rgbHint(false, cell.Black, false)
}

// boldRGBTable maps the eight indexed colors to the truecolor values xterm
// renders for bold text, so terminals that are truecolor-capable but do not
// brighten bold indexed colors still match.
var boldRGBTable = [8]string{
	"84;84;84", "252;84;84", "84;252;84", "252;252;84",
	"84;84;252", "252;84;252", "84;252;252", "252;252;252",
}

var normalRGBTable = [8]string{
	"0;0;0", "168;0;0", "0;168;0", "168;84;0",
	"0;0;168", "168;0;168", "0;168;168", "168;168;168",
}

// rgbHint follows an indexed SGR with an explicit truecolor sequence for
// the same color, pinning the exact shade on truecolor terminals. Returns
// the empty string when truecolor output is off.
func (r *Renderer) rgbHint(bold bool, color cell.BasicColor, foreground bool) string {
	if !r.rgbColor {
		return ""
	}
	if bold {
		// Bold only brightens the foreground.
		return "\x1b[38;2;" + boldRGBTable[color] + "m"
	}
	if foreground {
		return "\x1b[38;2;" + normalRGBTable[color] + "m"
	}
	return "\x1b[48;2;" + normalRGBTable[color] + "m"
}

// colorOne emits a single indexed color change, foreground or background.
func (r *Renderer) colorOne(bold bool, color cell.BasicColor, foreground bool) string {
	param := 40 + int(color)
	if foreground {
		param = 30 + int(color)
	}
	return "\x1b[" + strconv.Itoa(param) + "m" +
		r.rgbHint(bold, color, foreground)
}

// colorBoth emits both indexed colors in one sequence.
func (r *Renderer) colorBoth(bold bool, fore, back cell.BasicColor) string {
	return "\x1b[" + strconv.Itoa(30+int(fore)) + ";" +
		strconv.Itoa(40+int(back)) + "m" +
		r.rgbHint(bold, fore, true) + r.rgbHint(false, back, false)
}

// colorRGBOne emits a single truecolor change.
func colorRGBOne(c cell.RGB, foreground bool) string {
	red, green, blue := c.Channels()
	intro := "\x1b[48;2;"
	if foreground {
		intro = "\x1b[38;2;"
	}
	return intro + strconv.Itoa(red) + ";" + strconv.Itoa(green) + ";" +
		strconv.Itoa(blue) + "m"
}

// colorRGBBoth emits both truecolor channels.
func colorRGBBoth(fore, back cell.RGB) string {
	return colorRGBOne(fore, true) + colorRGBOne(back, false)
}

// sgrPrefix builds the reset-plus-flags header shared by the full
// attribute sequences, e.g. "\x1b[0;1;7;" for bold reverse.
func sgrPrefix(a cell.Attributes) string {
	var sb strings.Builder
	sb.WriteString("\x1b[0;")
	if a.Bold {
		sb.WriteString("1;")
	}
	if a.Reverse {
		sb.WriteString("7;")
	}
	if a.Blink {
		sb.WriteString("5;")
	}
	if a.Underline {
		sb.WriteString("4;")
	}
	return sb.String()
}

// colorFull resets everything and applies the cell's flags and indexed
// colors in one sequence.
func (r *Renderer) colorFull(a cell.Attributes) string {
	return sgrPrefix(a) + strconv.Itoa(30+int(a.Fore)) + ";" +
		strconv.Itoa(40+int(a.Back)) + "m" +
		r.rgbHint(a.Bold, a.Fore, true) + r.rgbHint(false, a.Back, false)
}

// colorRGBFull resets everything and applies the cell's flags and truecolor
// colors.
func colorRGBFull(a cell.Attributes) string {
	prefix := sgrPrefix(a)
	// Drop the trailing separator before closing the flags sequence.
	return prefix[:len(prefix)-1] + "m" + colorRGBBoth(a.ForeRGB, a.BackRGB)
}
