//go:build !unix

package term

import xterm "golang.org/x/term"

// ioctlWindowSize falls back to the portable size query.
func ioctlWindowSize(fd int) (width, height int, ok bool) {
	w, h, err := xterm.GetSize(fd)
	if err != nil || w == 0 || h == 0 {
		return 0, 0, false
	}
	return w, h, true
}
