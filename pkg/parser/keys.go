package parser

import (
	"strconv"

	"github.com/Gaurav-Gosain/gridterm/pkg/event"
)

// controlKey maps a C0 control byte to its key event: CR/LF become Enter,
// TAB and ESC map to their own keys, and everything else comes back as
// ctrl+letter (0x01 -> ctrl+A).
func controlKey(ch rune, alt bool) event.Key {
	switch ch {
	case 0x0D, 0x0A:
		return event.Key{Code: event.KeyEnter, Alt: alt}
	case 0x1B:
		return event.Key{Code: event.KeyEscape, Alt: alt}
	case '\t':
		return event.Key{Code: event.KeyTab, Alt: alt}
	default:
		return event.Key{Code: event.KeyRune, Ch: ch + 0x40, Alt: alt, Ctrl: true}
	}
}

// csiFinal resolves the letter final bytes shared by CSI_ENTRY and
// CSI_PARAM: arrows, Home/End, and back-tab.
func csiFinal(ch rune, alt, ctrl, shift bool) (event.Key, bool) {
	var code event.KeyCode
	switch ch {
	case 'A':
		code = event.KeyUp
	case 'B':
		code = event.KeyDown
	case 'C':
		code = event.KeyRight
	case 'D':
		code = event.KeyLeft
	case 'H':
		code = event.KeyHome
	case 'F':
		code = event.KeyEnd
	case 'Z':
		return event.Key{Code: event.KeyBackTab}, true
	default:
		return event.Key{}, false
	}
	return event.Key{Code: code, Alt: alt, Ctrl: ctrl, Shift: shift}, true
}

// csiFnKeyCodes is the fixed CSI Pn ~ special-key table.
var csiFnKeyCodes = map[int]event.KeyCode{
	1:  event.KeyHome,
	2:  event.KeyInsert,
	3:  event.KeyDelete,
	4:  event.KeyEnd,
	5:  event.KeyPgUp,
	6:  event.KeyPgDn,
	15: event.KeyF5,
	17: event.KeyF6,
	18: event.KeyF7,
	19: event.KeyF8,
	20: event.KeyF9,
	21: event.KeyF10,
	23: event.KeyF11,
	24: event.KeyF12,
}

// csiFnKey resolves CSI Pn ; Pm ~ to a special key with modifiers.
func (p *Parser) csiFnKey() (event.Key, bool) {
	key := 0
	if len(p.params) > 0 {
		key = atoi(p.params[0], 0)
	}
	code, ok := csiFnKeyCodes[key]
	if !ok {
		return event.Key{}, false
	}
	k := event.Key{Code: code}
	if len(p.params) > 1 {
		k.Shift = csiIsShift(p.params[1])
		k.Alt = csiIsAlt(p.params[1])
		k.Ctrl = csiIsCtrl(p.params[1])
	}
	return k, true
}

// csiIsShift reports whether a CSI modifier parameter includes shift.
func csiIsShift(s string) bool {
	switch s {
	case "2", "4", "6", "8":
		return true
	}
	return false
}

// csiIsAlt reports whether a CSI modifier parameter includes alt.
func csiIsAlt(s string) bool {
	switch s {
	case "3", "4", "7", "8":
		return true
	}
	return false
}

// csiIsCtrl reports whether a CSI modifier parameter includes ctrl.
func csiIsCtrl(s string) bool {
	switch s {
	case "5", "6", "7", "8":
		return true
	}
	return false
}

func atoi(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
