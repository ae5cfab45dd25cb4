// Package terminal handles line input and the player's status display.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"termplay/internal/song"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 80

const (
	clearScreen = "\033[H\033[2J"
	bold        = "\033[1m"
	reset       = "\033[0m"
)

// Status is what the screen shows.
type Status struct {
	Song    *song.Song
	Elapsed int
	Paused  bool
	Message string
}

// Screen redraws the player status. On a terminal the screen is cleared and
// the status centered; otherwise plain lines are written with no escape
// codes.
type Screen struct {
	out io.Writer
	fd  int
	tty bool
}

// NewScreen draws to w. w is treated as a terminal only if it is an
// *os.File attached to one.
func NewScreen(w io.Writer) *Screen {
	s := &Screen{out: w, fd: -1}
	if f, ok := w.(*os.File); ok {
		s.fd = int(f.Fd())
		s.tty = term.IsTerminal(s.fd)
	}
	return s
}

// IsTerminal reports whether the screen draws to a terminal.
func (s *Screen) IsTerminal() bool {
	return s.tty
}

// Width returns the terminal width in cells.
func (s *Screen) Width() int {
	if !s.tty {
		return DefaultWidth
	}
	width, _, err := term.GetSize(s.fd)
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Render draws st followed by a prompt.
func (s *Screen) Render(st Status) {
	width := s.Width()

	var lines []string
	if st.Song != nil {
		lines = append(lines, st.Song.Title)
		if st.Song.Artist != "" {
			lines = append(lines, st.Song.Artist)
		}
		bar := Bar(st.Elapsed, st.Song.Length, width)
		if st.Paused {
			bar += " (paused)"
		}
		lines = append(lines, "", bar)
	}

	var b strings.Builder
	if s.tty {
		b.WriteString(clearScreen)
		for i, line := range lines {
			line = Center(line, width)
			if i == 0 {
				line = bold + line + reset
			}
			b.WriteString(line + "\n")
		}
	} else {
		for _, line := range lines {
			b.WriteString(line + "\n")
		}
	}

	if st.Message != "" {
		b.WriteString("\n" + st.Message + "\n")
	}
	b.WriteString("\n> ")
	fmt.Fprint(s.out, b.String())
}

// Print writes a message without redrawing the status.
func (s *Screen) Print(msg string) {
	fmt.Fprintln(s.out, msg)
}

// Center pads line on the left so it sits in the middle of width cells.
// Lines wider than width are truncated with an ellipsis.
func Center(line string, width int) string {
	w := runewidth.StringWidth(line)
	if w > width {
		return runewidth.Truncate(line, width, "…")
	}
	return strings.Repeat(" ", (width-w)/2) + line
}
