package parser

import (
	"testing"
	"time"

	"github.com/Gaurav-Gosain/gridterm/pkg/event"
)

func feedString(t *testing.T, p *Parser, s string) []event.Event {
	t.Helper()
	now := time.Now()
	var events []event.Event
	for _, ch := range s {
		events = append(events, p.Feed(ch, now)...)
	}
	return events
}

func singleKey(t *testing.T, p *Parser, s string) event.Key {
	t.Helper()
	events := feedString(t, p, s)
	if len(events) != 1 {
		t.Fatalf("feeding %q produced %d events: %#v", s, len(events), events)
	}
	key, ok := events[0].(event.Key)
	if !ok {
		t.Fatalf("feeding %q produced %#v, want a key", s, events[0])
	}
	return key
}

func TestPlainRunes(t *testing.T) {
	p := New(80, 24)
	for _, ch := range []rune{'a', 'Z', '0', ' ', 'é', '日'} {
		key := singleKey(t, p, string(ch))
		if key.Code != event.KeyRune || key.Ch != ch {
			t.Errorf("rune %q decoded as %+v", ch, key)
		}
		if p.State() != Ground {
			t.Errorf("state after rune %q = %v", ch, p.State())
		}
	}
}

func TestControlKeys(t *testing.T) {
	p := New(80, 24)
	tests := []struct {
		in   string
		want event.Key
	}{
		{"\r", event.Key{Code: event.KeyEnter}},
		{"\n", event.Key{Code: event.KeyEnter}},
		{"\t", event.Key{Code: event.KeyTab}},
		{"\x01", event.Key{Code: event.KeyRune, Ch: 'A', Ctrl: true}},
		{"\x03", event.Key{Code: event.KeyRune, Ch: 'C', Ctrl: true}},
		{"\x1a", event.Key{Code: event.KeyRune, Ch: 'Z', Ctrl: true}},
	}
	for _, tt := range tests {
		if got := singleKey(t, p, tt.in); got != tt.want {
			t.Errorf("control %q = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestArrowKeys(t *testing.T) {
	p := New(80, 24)
	tests := []struct {
		in   string
		code event.KeyCode
	}{
		{"\x1b[A", event.KeyUp},
		{"\x1b[B", event.KeyDown},
		{"\x1b[C", event.KeyRight},
		{"\x1b[D", event.KeyLeft},
		{"\x1b[H", event.KeyHome},
		{"\x1b[F", event.KeyEnd},
		{"\x1b[Z", event.KeyBackTab},
	}
	for _, tt := range tests {
		key := singleKey(t, p, tt.in)
		if key.Code != tt.code {
			t.Errorf("%q = %+v, want code %d", tt.in, key, tt.code)
		}
	}
}

func TestModifiedArrows(t *testing.T) {
	p := New(80, 24)
	tests := []struct {
		in               string
		shift, alt, ctrl bool
	}{
		{"\x1b[1;2A", true, false, false},
		{"\x1b[1;3A", false, true, false},
		{"\x1b[1;4A", true, true, false},
		{"\x1b[1;5A", false, false, true},
		{"\x1b[1;6A", true, false, true},
		{"\x1b[1;7A", false, true, true},
		{"\x1b[1;8A", true, true, true},
	}
	for _, tt := range tests {
		key := singleKey(t, p, tt.in)
		if key.Code != event.KeyUp || key.Shift != tt.shift ||
			key.Alt != tt.alt || key.Ctrl != tt.ctrl {
			t.Errorf("%q = %+v, want shift=%v alt=%v ctrl=%v",
				tt.in, key, tt.shift, tt.alt, tt.ctrl)
		}
	}
}

func TestSS3FunctionKeys(t *testing.T) {
	p := New(80, 24)
	for i, in := range []string{"\x1bOP", "\x1bOQ", "\x1bOR", "\x1bOS"} {
		key := singleKey(t, p, in)
		if key.Code != event.KeyF1+event.KeyCode(i) {
			t.Errorf("%q = %+v, want F%d", in, key, i+1)
		}
	}
}

func TestTildeKeys(t *testing.T) {
	p := New(80, 24)
	tests := []struct {
		in   string
		code event.KeyCode
	}{
		{"\x1b[1~", event.KeyHome},
		{"\x1b[2~", event.KeyInsert},
		{"\x1b[3~", event.KeyDelete},
		{"\x1b[4~", event.KeyEnd},
		{"\x1b[5~", event.KeyPgUp},
		{"\x1b[6~", event.KeyPgDn},
		{"\x1b[15~", event.KeyF5},
		{"\x1b[17~", event.KeyF6},
		{"\x1b[18~", event.KeyF7},
		{"\x1b[19~", event.KeyF8},
		{"\x1b[20~", event.KeyF9},
		{"\x1b[21~", event.KeyF10},
		{"\x1b[23~", event.KeyF11},
		{"\x1b[24~", event.KeyF12},
	}
	for _, tt := range tests {
		key := singleKey(t, p, tt.in)
		if key.Code != tt.code {
			t.Errorf("%q = %+v, want code %d", tt.in, key, tt.code)
		}
	}
}

func TestTildeKeyWithModifier(t *testing.T) {
	p := New(80, 24)
	key := singleKey(t, p, "\x1b[5;5~")
	if key.Code != event.KeyPgUp || !key.Ctrl {
		t.Errorf("ctrl+pgup = %+v", key)
	}
}

func TestUnknownTildeKeyDropped(t *testing.T) {
	p := New(80, 24)
	if events := feedString(t, p, "\x1b[99~"); len(events) != 0 {
		t.Errorf("unknown tilde key produced %#v", events)
	}
	if p.State() != Ground {
		t.Errorf("state = %v, want ground", p.State())
	}
}

func TestAltKeystroke(t *testing.T) {
	p := New(80, 24)
	key := singleKey(t, p, "\x1bx")
	want := event.Key{Code: event.KeyRune, Ch: 'x', Alt: true}
	if key != want {
		t.Errorf("alt-x = %+v, want %+v", key, want)
	}

	key = singleKey(t, p, "\x1bX")
	if !key.Alt || !key.Shift || key.Ch != 'X' {
		t.Errorf("alt-shift-x = %+v", key)
	}
}

func TestBareEscapeViaIdleTimeout(t *testing.T) {
	p := New(80, 24)
	start := time.Now()
	if events := p.Feed(0x1B, start); len(events) != 0 {
		t.Fatalf("lone ESC produced events immediately: %#v", events)
	}

	// Not yet: below the idle threshold.
	if events := p.Idle(start.Add(50 * time.Millisecond)); len(events) != 0 {
		t.Fatalf("early idle flushed escape: %#v", events)
	}

	events := p.Idle(start.Add(150 * time.Millisecond))
	if len(events) != 1 {
		t.Fatalf("idle produced %d events", len(events))
	}
	key, ok := events[0].(event.Key)
	if !ok || key.Code != event.KeyEscape {
		t.Errorf("idle flush = %#v, want escape key", events[0])
	}
	if p.State() != Ground {
		t.Errorf("state = %v, want ground", p.State())
	}
}

func TestStaleEscapeResolvedOnNextByte(t *testing.T) {
	p := New(80, 24)
	start := time.Now()
	p.Feed(0x1B, start)

	// The next byte arrives far too late to be part of a sequence.
	events := p.Feed('x', start.Add(500*time.Millisecond))
	if len(events) != 2 {
		t.Fatalf("got %d events: %#v", len(events), events)
	}
	if key := events[0].(event.Key); key.Code != event.KeyEscape {
		t.Errorf("first event = %#v, want escape", events[0])
	}
	if key := events[1].(event.Key); key.Code != event.KeyRune || key.Ch != 'x' {
		t.Errorf("second event = %#v, want x", events[1])
	}
}

func TestWindowPixelReport(t *testing.T) {
	p := New(80, 24)
	if events := feedString(t, p, "\x1b[4;384;1280t"); len(events) != 0 {
		t.Fatalf("pixel report produced events: %#v", events)
	}
	if w, h := p.PixelSize(); w != 1280 || h != 384 {
		t.Errorf("PixelSize() = %dx%d, want 1280x384", w, h)
	}
	if cw, ch := p.CellSize(); cw != 16 || ch != 16 {
		t.Errorf("CellSize() = %dx%d, want 16x16", cw, ch)
	}
}

func TestCellSizeFallback(t *testing.T) {
	p := New(80, 24)
	if cw, ch := p.CellSize(); cw != 8 || ch != 16 {
		t.Errorf("default CellSize() = %dx%d, want 8x16", cw, ch)
	}
}

func TestGeometryAccessConcurrentWithFeed(t *testing.T) {
	p := New(80, 24)
	done := make(chan struct{})
	go func() {
		defer close(done)
		now := time.Now()
		for i := 0; i < 500; i++ {
			for _, ch := range "\x1b[4;384;1280t\x1b[<0;4;9M" {
				p.Feed(ch, now)
			}
		}
	}()
	// Geometry reads and writes race against pixel reports and mouse
	// clamping unless the parser serializes them.
	for i := 0; i < 500; i++ {
		p.SetScreenSize(80+i%5, 24)
		p.CellSize()
		p.PixelSize()
		p.ScreenSize()
	}
	<-done
	if w, h := p.PixelSize(); w != 1280 || h != 384 {
		t.Errorf("PixelSize() = %dx%d, want 1280x384", w, h)
	}
}

func TestGeometryPollEmitsResize(t *testing.T) {
	w, h := 80, 24
	requested := 0
	p := New(80, 24,
		WithSizer(func() (int, int, bool) { return w, h, true }),
		WithPixelRequest(func() { requested++ }),
	)

	start := time.Now()
	// Same size: nothing.
	if events := p.Idle(start.Add(2 * time.Second)); len(events) != 0 {
		t.Fatalf("unchanged size produced %#v", events)
	}

	w, h = 100, 40
	// Poll rate limited to once a second.
	if events := p.Idle(start.Add(2500 * time.Millisecond)); len(events) != 0 {
		t.Fatalf("rate-limited poll produced %#v", events)
	}
	events := p.Idle(start.Add(4 * time.Second))
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	resize, ok := events[0].(event.Resize)
	if !ok || resize.Width != 100 || resize.Height != 40 {
		t.Errorf("resize = %#v", events[0])
	}
	if requested != 1 {
		t.Errorf("pixel re-query fired %d times, want 1", requested)
	}
	if sw, sh := p.ScreenSize(); sw != 100 || sh != 40 {
		t.Errorf("ScreenSize() = %dx%d", sw, sh)
	}
}

func TestModifierTable(t *testing.T) {
	tests := []struct {
		param            string
		shift, alt, ctrl bool
	}{
		{"1", false, false, false},
		{"2", true, false, false},
		{"3", false, true, false},
		{"4", true, true, false},
		{"5", false, false, true},
		{"6", true, false, true},
		{"7", false, true, true},
		{"8", true, true, true},
	}
	for _, tt := range tests {
		if got := csiIsShift(tt.param); got != tt.shift {
			t.Errorf("csiIsShift(%q) = %v", tt.param, got)
		}
		if got := csiIsAlt(tt.param); got != tt.alt {
			t.Errorf("csiIsAlt(%q) = %v", tt.param, got)
		}
		if got := csiIsCtrl(tt.param); got != tt.ctrl {
			t.Errorf("csiIsCtrl(%q) = %v", tt.param, got)
		}
	}
}
