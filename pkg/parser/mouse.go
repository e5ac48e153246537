package parser

import (
	"github.com/Gaurav-Gosain/gridterm/pkg/event"
)

// feedMouseLegacy accumulates the three raw bytes of an X10/1005-style mouse
// report: button code and 1-based coordinates, each offset by +32.
func (p *Parser) feedMouseLegacy(events []event.Event, ch rune) []event.Event {
	p.params[0] += string(ch)
	if len([]rune(p.params[0])) < 3 {
		return events
	}
	raw := []rune(p.params[0])
	buttons := int(raw[0]) - 32
	x := int(raw[1]) - 32 - 1
	y := int(raw[2]) - 32 - 1
	events = append(events, p.legacyMouse(buttons, x, y))
	p.reset()
	return events
}

// legacyMouse decodes a legacy button code. The protocol reports one shared
// "release" code, so held-button state decides which button came up and
// whether code 3 means release or bare motion.
func (p *Parser) legacyMouse(buttons, x, y int) event.Mouse {
	m := event.Mouse{Kind: event.MouseDown}
	m.X, m.Y = p.clampMouse(x, y)

	switch buttons {
	case 0:
		m.Buttons = event.Button1
		p.held1 = true
	case 1:
		m.Buttons = event.Button2
		p.held2 = true
	case 2:
		m.Buttons = event.Button3
		p.held3 = true
	case 3:
		// Release or move.
		if !p.held1 && !p.held2 && !p.held3 {
			m.Kind = event.MouseMotion
		} else {
			m.Kind = event.MouseUp
		}
		if p.held1 {
			p.held1 = false
			m.Buttons |= event.Button1
		}
		if p.held2 {
			p.held2 = false
			m.Buttons |= event.Button2
		}
		if p.held3 {
			p.held3 = false
			m.Buttons |= event.Button3
		}
	case 32:
		m.Buttons = event.Button1
		p.held1 = true
		m.Kind = event.MouseMotion
	case 33:
		m.Buttons = event.Button2
		p.held2 = true
		m.Kind = event.MouseMotion
	case 34:
		m.Buttons = event.Button3
		p.held3 = true
		m.Kind = event.MouseMotion
	case 96, 97:
		// Dragging with button 2 down after a wheel turn.
		m.Buttons = event.Button2
		p.held2 = true
		m.Kind = event.MouseMotion
	case 64:
		m.Kind = event.MouseWheelUp
	case 65:
		m.Kind = event.MouseWheelDown
	default:
		// Unknown code: degrade to motion so the UI stays responsive.
		m.Kind = event.MouseMotion
	}
	return m
}

// feedMouseSGR accumulates the ;-separated decimal parameters of an SGR
// (1006) mouse report, terminated by M (press) or m (release).
func (p *Parser) feedMouseSGR(events []event.Event, ch rune) []event.Event {
	switch {
	case ch >= '0' && ch <= '9':
		p.appendParamDigit(ch)
		return events
	case ch == ';':
		p.params = append(p.params, "")
		return events
	case ch == 'M' || ch == 'm':
		if m, ok := p.sgrMouse(ch == 'm'); ok {
			events = append(events, m)
		}
	}
	p.reset()
	return events
}

// sgrMouse decodes an SGR mouse report. Coordinates are 1-based decimals.
func (p *Parser) sgrMouse(release bool) (event.Mouse, bool) {
	if len(p.params) < 3 {
		return event.Mouse{}, false
	}
	buttons := atoi(p.params[0], -1)
	x := atoi(p.params[1], 0) - 1
	y := atoi(p.params[2], 0) - 1

	m := event.Mouse{Kind: event.MouseDown}
	m.X, m.Y = p.clampMouse(x, y)
	if release {
		m.Kind = event.MouseUp
	}

	switch buttons {
	case 0:
		m.Buttons = event.Button1
	case 1:
		m.Buttons = event.Button2
	case 2:
		m.Buttons = event.Button3
	case 35:
		m.Kind = event.MouseMotion
	case 32:
		m.Buttons = event.Button1
		m.Kind = event.MouseMotion
	case 33:
		m.Buttons = event.Button2
		m.Kind = event.MouseMotion
	case 34:
		m.Buttons = event.Button3
		m.Kind = event.MouseMotion
	case 96, 97:
		m.Buttons = event.Button2
		m.Kind = event.MouseMotion
	case 64:
		m.Kind = event.MouseWheelUp
	case 65:
		m.Kind = event.MouseWheelDown
	default:
		m.Buttons = 0
		m.Kind = event.MouseMotion
	}
	return m, true
}

// clampMouse bounds reported coordinates to the known screen size.
func (p *Parser) clampMouse(x, y int) (int, int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	p.geoMu.Lock()
	defer p.geoMu.Unlock()
	if p.screenWidth > 0 && x >= p.screenWidth {
		x = p.screenWidth - 1
	}
	if p.screenHeight > 0 && y >= p.screenHeight {
		y = p.screenHeight - 1
	}
	return x, y
}
