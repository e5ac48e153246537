// Package term ties the screen, renderer, and input parser to a real
// terminal: it owns raw mode, the xterm mode prologue and epilogue, and the
// reader goroutine that turns incoming bytes into events.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	xterm "golang.org/x/term"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
	"github.com/Gaurav-Gosain/gridterm/pkg/event"
	"github.com/Gaurav-Gosain/gridterm/pkg/palette"
	"github.com/Gaurav-Gosain/gridterm/pkg/parser"
	"github.com/Gaurav-Gosain/gridterm/pkg/render"
	"github.com/Gaurav-Gosain/gridterm/pkg/sixel"
)

// eventQueueSize bounds the input event channel. A full queue means the
// application stopped draining; the reader blocks rather than dropping.
const eventQueueSize = 1024

// Mode sequences sent on open and close.
const (
	// 1002/1003 button and any-event mouse tracking, 1005/1006 UTF-8 and
	// SGR encodings, 1049 alternate screen, plus the iTerm2/mintty pointer
	// hide hint as a PM string.
	mouseOn  = "\x1b[?1002;1003;1005;1006h\x1b[?1049h\x1b^hideMousePointer\x1b\\"
	mouseOff = "\x1b[?1002;1003;1006;1005l\x1b[?1049l\x1b^showMousePointer\x1b\\"

	// metaSendsEscape so alt-modified keys arrive as ESC prefixes rather
	// than 8-bit characters.
	metaOn  = "\x1b[?1036h\x1b[?1034l"
	metaOff = "\x1b[?1036l"

	// Ask xterm to report the text area size in pixels.
	pixelSizeRequest = "\x1b[14t"

	showCursor = "\x1b[?25h"
	sgrReset   = "\x1b[0;37;40m"
)

// Terminal is a session against one terminal. All methods are safe to call
// from the application goroutine; the reader goroutine only touches the
// parser and the event channel.
type Terminal struct {
	in     io.Reader
	inFile *os.File

	out     *bufio.Writer
	writeMu sync.Mutex

	parser   *parser.Parser
	renderer *render.Renderer
	screen   *cell.Grid

	events chan event.Event
	stop   chan struct{}
	done   chan struct{}

	rawState *xterm.State
	rawFd    int

	closeOnce sync.Once
	closeErr  error

	logger *log.Logger
}

type options struct {
	in            io.Reader
	out           io.Writer
	width, height int
	sixelEnabled  bool
	rgbColor      bool
	paletteSize   int
	cacheCapacity int
	logger        *log.Logger
}

// Option configures Open.
type Option func(*options)

// WithInput reads input from r instead of stdin. When r is an *os.File the
// reader polls with read deadlines; otherwise the reader blocks until r is
// closed, which Close does itself when r implements io.Closer.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.in = r }
}

// WithOutput writes output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithSize forces the screen dimensions instead of querying the tty.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithSixel enables or disables sixel image output.
func WithSixel(on bool) Option {
	return func(o *options) { o.sixelEnabled = on }
}

// WithRGBColor enables truecolor sequences alongside indexed colors.
func WithRGBColor(on bool) Option {
	return func(o *options) { o.rgbColor = on }
}

// WithPaletteSize sets the sixel palette size.
func WithPaletteSize(n int) Option {
	return func(o *options) { o.paletteSize = n }
}

// WithCacheCapacity sets the sixel payload cache capacity.
func WithCacheCapacity(n int) Option {
	return func(o *options) { o.cacheCapacity = n }
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open sets up the terminal: raw mode when the input is a tty, mouse and
// meta modes, the alternate screen, and the reader goroutine. Close must be
// called to restore the terminal.
func Open(opts ...Option) (*Terminal, error) {
	o := options{
		in:           os.Stdin,
		out:          os.Stdout,
		sixelEnabled: true,
		paletteSize:  palette.DefaultSize,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Terminal{
		in:     o.in,
		out:    bufio.NewWriterSize(o.out, 64*1024),
		events: make(chan event.Event, eventQueueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		rawFd:  -1,
		logger: o.logger,
	}
	if f, ok := o.in.(*os.File); ok {
		t.inFile = f
		if isatty.IsTerminal(f.Fd()) {
			state, err := xterm.MakeRaw(int(f.Fd()))
			if err != nil {
				return nil, fmt.Errorf("term: raw mode: %w", err)
			}
			t.rawState = state
			t.rawFd = int(f.Fd())
		}
	}

	width, height := o.width, o.height
	if width <= 0 || height <= 0 {
		width, height = 80, 24
		if w, h, ok := t.queryWindowSize(); ok {
			width, height = w, h
		}
	}
	t.screen = cell.NewGrid(width, height)

	pal, err := palette.New(o.paletteSize)
	if err != nil {
		t.restoreRaw()
		return nil, err
	}
	renderOpts := []render.Option{
		render.WithRGBColor(o.rgbColor),
		render.WithLogger(o.logger),
	}
	if o.sixelEnabled {
		cache := sixel.NewCache(o.cacheCapacity)
		renderOpts = append(renderOpts,
			render.WithEncoder(sixel.NewEncoder(pal, cache)))
	}
	t.renderer = render.New(width, height, renderOpts...)

	t.parser = parser.New(width, height,
		parser.WithLogger(o.logger),
		parser.WithSizer(t.queryWindowSize),
		parser.WithPixelRequest(func() {
			t.write(pixelSizeRequest)
		}),
	)

	// Pixel size request goes out first so the report is often parsed
	// before the first frame renders.
	t.write(pixelSizeRequest)
	t.write(mouseOn)
	t.write(metaOn)
	t.flushOut()

	go t.run()
	return t, nil
}

// Events returns the input event channel. It is closed after a Disconnect
// event has been delivered.
func (t *Terminal) Events() <-chan event.Event { return t.events }

// HasEvents reports whether an event is waiting without blocking.
func (t *Terminal) HasEvents() bool { return len(t.events) > 0 }

// Screen returns the logical grid. The application draws into it between
// calls to Flush.
func (t *Terminal) Screen() *cell.Grid { return t.screen }

// Size returns the current screen dimensions in cells.
func (t *Terminal) Size() (width, height int) {
	return t.screen.Width(), t.screen.Height()
}

// CellSize returns the pixel dimensions of one character cell, as learned
// from the terminal's pixel geometry report.
func (t *Terminal) CellSize() (width, height int) {
	return t.parser.CellSize()
}

// SetCursor positions the hardware cursor for the next Flush.
func (t *Terminal) SetCursor(x, y int, visible bool) {
	t.renderer.SetCursor(x, y, visible)
}

// Resize adjusts the logical screen, typically in response to an
// event.Resize. The next Flush repaints fully.
func (t *Terminal) Resize(width, height int) {
	t.screen.Resize(width, height)
	t.renderer.Resize(width, height)
	t.parser.SetScreenSize(width, height)
	if cw, ch := t.parser.CellSize(); cw > 0 && ch > 0 {
		t.renderer.SetCellSize(cw, ch)
	}
}

// Flush renders the logical grid's pending changes to the terminal.
func (t *Terminal) Flush() error {
	if cw, ch := t.parser.CellSize(); cw > 0 && ch > 0 {
		t.renderer.SetCellSize(cw, ch)
	}
	out := t.renderer.Flush(t.screen)
	if out == "" {
		return nil
	}
	t.write(out)
	return t.flushOut()
}

// SetTitle sets the terminal window title.
func (t *Terminal) SetTitle(title string) {
	t.write("\x1b]2;" + title + "\x07")
	t.flushOut() //nolint:errcheck
}

// RequestPixelSize re-asks the terminal for its pixel dimensions.
func (t *Terminal) RequestPixelSize() {
	t.write(pixelSizeRequest)
	t.flushOut() //nolint:errcheck
}

// ResizeToScreen asks the terminal to resize its window to the logical
// screen dimensions. Most terminals ignore this unless window ops are
// explicitly allowed.
func (t *Terminal) ResizeToScreen() {
	t.write("\x1b[8;" + strconv.Itoa(t.screen.Height()) + ";" +
		strconv.Itoa(t.screen.Width()) + "t")
	t.flushOut() //nolint:errcheck
}

// Close stops the reader, restores the terminal modes and raw state, and
// leaves the cursor visible with default attributes. It is idempotent.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		close(t.stop)
		if t.inFile != nil {
			// Break a blocking read so the reader can observe stop.
			t.inFile.SetReadDeadline(time.Now()) //nolint:errcheck
		} else if c, ok := t.in.(io.Closer); ok {
			// Non-file inputs have no deadlines; closing the source is the
			// only way to unblock the reader.
			c.Close() //nolint:errcheck
		}
		<-t.done

		t.write(mouseOff)
		t.write(metaOff)
		t.write(showCursor)
		t.write(sgrReset)
		t.closeErr = t.flushOut()

		t.restoreRaw()
	})
	return t.closeErr
}

func (t *Terminal) restoreRaw() {
	if t.rawState != nil {
		if err := xterm.Restore(t.rawFd, t.rawState); err != nil {
			t.logger.Error("restoring terminal state", "err", err)
		}
		t.rawState = nil
	}
}

func (t *Terminal) write(s string) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	t.out.WriteString(s) //nolint:errcheck
}

func (t *Terminal) flushOut() error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.out.Flush()
}

// queryWindowSize asks the OS for the terminal dimensions and feeds any
// pixel geometry it learns to the parser.
func (t *Terminal) queryWindowSize() (width, height int, ok bool) {
	fd := -1
	if t.inFile != nil {
		fd = int(t.inFile.Fd())
	}
	if fd < 0 {
		return 0, 0, false
	}
	return ioctlWindowSize(fd)
}
