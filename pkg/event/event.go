// Package event defines the structured input events produced by the input
// parser: keypresses, mouse actions, resize notifications, and the terminal
// disconnect marker. Events form a tagged variant consumed in FIFO order by
// exactly one reader.
package event

// Event is the tagged-variant interface over all input event kinds.
type Event interface {
	isEvent()
}

// KeyCode identifies a non-printable key. KeyRune means "plain character,
// see Key.Ch".
type KeyCode int

// Key codes for special keys.
const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyTab
	KeyBackTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPgUp
	KeyPgDn
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Key is a single keypress with modifier state.
type Key struct {
	Code KeyCode
	// Ch is the character for KeyRune keys, or the letter for ctrl-letter
	// combinations (e.g. 'A' for ctrl+a).
	Ch    rune
	Alt   bool
	Ctrl  bool
	Shift bool
}

func (Key) isEvent() {}

// MouseKind classifies a mouse event.
type MouseKind int

// Mouse event kinds.
const (
	MouseDown MouseKind = iota
	MouseUp
	MouseMotion
	MouseWheelUp
	MouseWheelDown
)

// MouseButton is a bitmask of buttons involved in a mouse event.
type MouseButton uint8

// Mouse buttons.
const (
	Button1 MouseButton = 1 << iota
	Button2
	Button3
)

// Mouse is a pointer event at 0-based cell coordinates.
type Mouse struct {
	Kind    MouseKind
	Buttons MouseButton
	X       int
	Y       int
}

func (Mouse) isEvent() {}

// Resize reports a new terminal size in character cells.
type Resize struct {
	Width  int
	Height int
}

func (Resize) isEvent() {}

// Disconnect is appended exactly once as the final event when the input
// source reaches end-of-stream or the terminal is closed.
type Disconnect struct{}

func (Disconnect) isEvent() {}
