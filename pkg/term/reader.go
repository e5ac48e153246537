package term

import (
	"bufio"
	"os"
	"time"

	"github.com/Gaurav-Gosain/gridterm/pkg/event"
)

// readPollInterval is how long a read waits before giving the parser an
// idle pass. Idle passes flush lone escapes and poll screen geometry.
const readPollInterval = 20 * time.Millisecond

// run is the reader goroutine: the only writer to the event channel. It
// exits on stop, input error, or end of input, delivering exactly one
// Disconnect before closing the channel.
func (t *Terminal) run() {
	defer close(t.done)
	defer close(t.events)

	br := bufio.NewReader(t.in)
	for {
		select {
		case <-t.stop:
			t.sendDisconnect()
			return
		default:
		}

		if t.inFile != nil {
			t.inFile.SetReadDeadline(time.Now().Add(readPollInterval)) //nolint:errcheck
		}
		ch, _, err := br.ReadRune()
		now := time.Now()
		if err != nil {
			if os.IsTimeout(err) {
				t.emit(t.parser.Idle(now))
				continue
			}
			select {
			case <-t.stop:
			default:
				t.logger.Debug("input closed", "err", err)
			}
			t.sendDisconnect()
			return
		}

		t.emit(t.parser.Feed(ch, now))
		if br.Buffered() == 0 {
			t.emit(t.parser.Idle(now))
		}
	}
}

// emit queues events, giving up when the terminal is stopping.
func (t *Terminal) emit(events []event.Event) {
	for _, ev := range events {
		select {
		case t.events <- ev:
		case <-t.stop:
			return
		}
	}
}

// sendDisconnect queues the final Disconnect without blocking; if the
// application stopped draining a full queue during shutdown, the closed
// channel carries the same meaning.
func (t *Terminal) sendDisconnect() {
	select {
	case t.events <- event.Disconnect{}:
	default:
	}
}
