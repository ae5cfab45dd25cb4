package terminal

import (
	"bufio"
	"io"
	"strings"
	"time"
)

// Input reads lines from a reader on its own goroutine so the control loop
// can wait for a command with a timeout.
type Input struct {
	lines chan string
}

// NewInput starts reading lines from r. The reader goroutine exits when r
// reaches EOF or fails, after which Lines is closed.
func NewInput(r io.Reader) *Input {
	in := &Input{lines: make(chan string)}
	go in.read(r)
	return in
}

func (in *Input) read(r io.Reader) {
	defer close(in.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		in.lines <- strings.TrimRight(scanner.Text(), "\r")
	}
}

// Lines delivers every line read, without the trailing newline.
func (in *Input) Lines() <-chan string {
	return in.lines
}

// Poll waits up to timeout for a line. ok is false on timeout or once input
// has ended.
func (in *Input) Poll(timeout time.Duration) (line string, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line, ok = <-in.lines:
		return line, ok
	case <-timer.C:
		return "", false
	}
}
