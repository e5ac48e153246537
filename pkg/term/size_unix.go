//go:build unix

package term

import "golang.org/x/sys/unix"

// ioctlWindowSize reads the terminal dimensions with TIOCGWINSZ.
func ioctlWindowSize(fd int) (width, height int, ok bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}
