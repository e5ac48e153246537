// Package parser implements the input side of the terminal engine: a
// streaming state machine that turns raw ECMA-48/xterm bytes into structured
// events. The machine is driven one character at a time through Feed, with
// Idle called periodically to resolve the bare-escape timeout and to poll
// window geometry.
package parser

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/gridterm/pkg/event"
)

// State is the current position in the input state machine.
type State int

// Parser states. The machine always returns to Ground after a completed or
// abandoned sequence.
const (
	Ground State = iota
	Escape
	EscapeIntermediate
	CSIEntry
	CSIParam
	MouseLegacy
	MouseSGR
)

// String returns the state name for traces.
func (s State) String() string {
	switch s {
	case Ground:
		return "ground"
	case Escape:
		return "escape"
	case EscapeIntermediate:
		return "escape-intermediate"
	case CSIEntry:
		return "csi-entry"
	case CSIParam:
		return "csi-param"
	case MouseLegacy:
		return "mouse-legacy"
	case MouseSGR:
		return "mouse-sgr"
	}
	return "unknown"
}

const (
	// escTimeoutIdle is how long Idle waits after a lone ESC before
	// synthesizing a bare Escape keypress.
	escTimeoutIdle = 100 * time.Millisecond
	// escTimeoutFeed is the longer re-check applied when the next byte
	// finally arrives.
	escTimeoutFeed = 250 * time.Millisecond
	// sizePollInterval limits how often Idle re-queries window geometry.
	sizePollInterval = time.Second

	// Fallback window pixel dimensions when the terminal never reports any.
	defaultWidthPixels  = 640
	defaultHeightPixels = 400
)

// Sizer reports the current window size in character cells. The ok result is
// false when the size cannot be determined.
type Sizer func() (width, height int, ok bool)

// Parser decodes raw terminal input. Feed and Idle must be called from a
// single goroutine; the geometry accessors (ScreenSize, SetScreenSize,
// PixelSize, CellSize) are safe to call from any goroutine.
type Parser struct {
	state    State
	params   []string
	escapeAt time.Time

	// Held-button bookkeeping for the legacy mouse protocol, which reports
	// a single "release" code regardless of button.
	held1, held2, held3 bool

	// geoMu guards the window geometry, the only parser state shared
	// between the reader goroutine and the application goroutine.
	geoMu        sync.Mutex
	screenWidth  int
	screenHeight int
	widthPixels  int
	heightPixels int

	sizer        Sizer
	lastSizePoll time.Time

	// pixelRequest is invoked when a size change is detected so the owner
	// can re-emit the CSI 14 t pixel-dimension query.
	pixelRequest func()

	logger *log.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithSizer installs the window-size query used by Idle's geometry polling.
func WithSizer(s Sizer) Option {
	return func(p *Parser) { p.sizer = s }
}

// WithPixelRequest installs a callback fired when geometry polling detects a
// size change and the pixel dimensions should be re-queried.
func WithPixelRequest(fn func()) Option {
	return func(p *Parser) { p.pixelRequest = fn }
}

// WithLogger installs a trace logger. Nil disables tracing.
func WithLogger(l *log.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// New returns a parser in the Ground state. The screen size bounds mouse
// coordinates until a resize is observed.
func New(screenWidth, screenHeight int, opts ...Option) *Parser {
	p := &Parser{
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		widthPixels:  defaultWidthPixels,
		heightPixels: defaultHeightPixels,
	}
	p.reset()
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current machine state.
func (p *Parser) State() State { return p.state }

// ScreenSize returns the last known window size in cells.
func (p *Parser) ScreenSize() (width, height int) {
	p.geoMu.Lock()
	defer p.geoMu.Unlock()
	return p.screenWidth, p.screenHeight
}

// SetScreenSize updates the bounds used to clamp mouse coordinates.
func (p *Parser) SetScreenSize(width, height int) {
	p.geoMu.Lock()
	defer p.geoMu.Unlock()
	if width > 0 {
		p.screenWidth = width
	}
	if height > 0 {
		p.screenHeight = height
	}
}

// PixelSize returns the last reported window size in pixels.
func (p *Parser) PixelSize() (width, height int) {
	p.geoMu.Lock()
	defer p.geoMu.Unlock()
	return p.widthPixels, p.heightPixels
}

// CellSize returns the pixel dimensions of one character cell, derived from
// the reported window pixel size.
func (p *Parser) CellSize() (width, height int) {
	p.geoMu.Lock()
	defer p.geoMu.Unlock()
	return p.cellSize()
}

// cellSize is CellSize without locking, for callers holding geoMu.
func (p *Parser) cellSize() (width, height int) {
	w := p.widthPixels / max(p.screenWidth, 1)
	h := p.heightPixels / max(p.screenHeight, 1)
	if w <= 0 {
		w = 8
	}
	if h <= 0 {
		h = 16
	}
	return w, h
}

// reset discards any partial sequence and returns to Ground.
func (p *Parser) reset() {
	p.state = Ground
	p.params = p.params[:0]
	p.params = append(p.params, "")
}

// Feed advances the machine by one input character and returns any events it
// completed. now participates only in the bare-escape timeout.
func (p *Parser) Feed(ch rune, now time.Time) []event.Event {
	var events []event.Event

	// A long gap after ESC means the user really pressed Escape and this
	// character starts something new.
	if p.state == Escape && now.Sub(p.escapeAt) > escTimeoutFeed {
		events = append(events, event.Key{Code: event.KeyEscape})
		p.reset()
	}

	if p.logger != nil {
		p.logger.Debug("feed", "state", p.state, "ch", ch)
	}

	switch p.state {
	case Ground:
		return p.feedGround(events, ch, now)
	case Escape:
		return p.feedEscape(events, ch)
	case EscapeIntermediate:
		return p.feedEscapeIntermediate(events, ch)
	case CSIEntry:
		return p.feedCSIEntry(events, ch)
	case CSIParam:
		return p.feedCSIParam(events, ch)
	case MouseLegacy:
		return p.feedMouseLegacy(events, ch)
	case MouseSGR:
		return p.feedMouseSGR(events, ch)
	}
	return events
}

// Idle resolves timeouts that no input byte will ever trigger: the bare
// Escape keypress and the periodic window-geometry poll.
func (p *Parser) Idle(now time.Time) []event.Event {
	var events []event.Event

	if p.sizer != nil && now.Sub(p.lastSizePoll) > sizePollInterval {
		p.lastSizePoll = now
		if w, h, ok := p.sizer(); ok {
			p.geoMu.Lock()
			changed := w != p.screenWidth || h != p.screenHeight
			if changed {
				// Keep the per-cell pixel ratio stable until the terminal
				// answers the fresh pixel query.
				cw, chgt := p.cellSize()
				p.widthPixels = cw * w
				p.heightPixels = chgt * h
				p.screenWidth = w
				p.screenHeight = h
			}
			p.geoMu.Unlock()
			if changed {
				if p.pixelRequest != nil {
					p.pixelRequest()
				}
				if p.logger != nil {
					p.logger.Debug("window resized", "width", w, "height", h)
				}
				events = append(events, event.Resize{Width: w, Height: h})
			}
		}
	}

	if p.state == Escape && now.Sub(p.escapeAt) > escTimeoutIdle {
		events = append(events, event.Key{Code: event.KeyEscape})
		p.reset()
	}
	return events
}

func (p *Parser) feedGround(events []event.Event, ch rune, now time.Time) []event.Event {
	switch {
	case ch == 0x1B:
		p.state = Escape
		p.escapeAt = now
		return events
	case ch <= 0x1F:
		events = append(events, controlKey(ch, false))
		p.reset()
		return events
	default:
		events = append(events, event.Key{Code: event.KeyRune, Ch: ch})
		p.reset()
		return events
	}
}

func (p *Parser) feedEscape(events []event.Event, ch rune) []event.Event {
	switch {
	case ch <= 0x1F:
		events = append(events, controlKey(ch, true))
	case ch == 'O':
		p.state = EscapeIntermediate
		return events
	case ch == '[':
		p.state = CSIEntry
		return events
	default:
		// Anything else is an alt-keystroke.
		events = append(events, event.Key{
			Code:  event.KeyRune,
			Ch:    ch,
			Alt:   true,
			Shift: ch >= 'A' && ch <= 'Z',
		})
	}
	p.reset()
	return events
}

func (p *Parser) feedEscapeIntermediate(events []event.Event, ch rune) []event.Event {
	// SS3 function keys: ESC O P..S.
	if ch >= 'P' && ch <= 'S' {
		events = append(events, event.Key{Code: event.KeyF1 + event.KeyCode(ch-'P')})
	}
	p.reset()
	return events
}

func (p *Parser) feedCSIEntry(events []event.Event, ch rune) []event.Event {
	switch {
	case ch >= '0' && ch <= '9':
		p.appendParamDigit(ch)
		p.state = CSIParam
		return events
	case ch == ';':
		p.params = append(p.params, "")
		return events
	case ch == 'M':
		p.state = MouseLegacy
		return events
	case ch == '<':
		p.state = MouseSGR
		return events
	}
	if key, ok := csiFinal(ch, false, false, false); ok {
		events = append(events, key)
	}
	p.reset()
	return events
}

func (p *Parser) feedCSIParam(events []event.Event, ch rune) []event.Event {
	switch {
	case ch >= '0' && ch <= '9':
		p.appendParamDigit(ch)
		return events
	case ch == ';':
		p.params = append(p.params, "")
		return events
	case ch == '~':
		if key, ok := p.csiFnKey(); ok {
			events = append(events, key)
		}
		p.reset()
		return events
	case ch == 't':
		p.csiWindowOp()
		p.reset()
		return events
	}
	alt, ctrl, shift := false, false, false
	if len(p.params) > 1 {
		alt = csiIsAlt(p.params[1])
		ctrl = csiIsCtrl(p.params[1])
		shift = csiIsShift(p.params[1])
	}
	if key, ok := csiFinal(ch, alt, ctrl, shift); ok {
		events = append(events, key)
	}
	p.reset()
	return events
}

func (p *Parser) appendParamDigit(ch rune) {
	p.params[len(p.params)-1] += string(ch)
}

// csiWindowOp handles the CSI 4 ; height ; width t pixel-dimension report.
func (p *Parser) csiWindowOp() {
	if len(p.params) < 3 || p.params[0] != "4" {
		return
	}
	h := atoi(p.params[1], 0)
	w := atoi(p.params[2], 0)
	if w <= 0 {
		w = defaultWidthPixels
	}
	if h <= 0 {
		h = defaultHeightPixels
	}
	p.geoMu.Lock()
	p.widthPixels = w
	p.heightPixels = h
	p.geoMu.Unlock()
	if p.logger != nil {
		p.logger.Debug("pixel report", "width", w, "height", h)
	}
}
