package engine

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"termplay/internal/logger"
	"termplay/internal/song"
)

// Player is the part of the playback driver the engine drives directly.
type Player interface {
	Stop()
	Current() *song.Song
	SetTime(seconds float64) error
	Time() float64
}

// Engine owns the library and the playback timeline.
//
// The timeline is laid out as [history][queue][remaining library]. current
// indexes the song that is playing and queueEnd is the first index after the
// queue, so the queue is timeline[current+1:queueEnd] and is empty when
// current+1 == queueEnd.
type Engine struct {
	// RemoveFile deletes a song's file from disk. Defaults to os.Remove.
	RemoveFile func(path string) error

	mu       sync.Mutex
	library  []*song.Song
	timeline []*song.Song
	current  int
	queueEnd int
	started  bool
	player   Player
	logger   *logger.Logger
}

// New creates an Engine over songs, in the given order.
func New(songs []*song.Song, p Player, log *logger.Logger) *Engine {
	return &Engine{
		RemoveFile: os.Remove,
		library:    slices.Clone(songs),
		timeline:   slices.Clone(songs),
		current:    0,
		queueEnd:   1,
		player:     p,
		logger:     log,
	}
}

// IsRunning reports whether playback has started and has not run past the
// last song of the timeline.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isRunning()
}

func (e *Engine) isRunning() bool {
	return e.started && e.current < len(e.timeline)
}

func (e *Engine) queueEmpty() bool {
	return e.current+1 == e.queueEnd
}

// FirstSong starts playback at the head of the timeline.
func (e *Engine) FirstSong() (*song.Song, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.timeline) == 0 {
		return nil, &NotInitializedError{Op: "start playback", Reason: "library is empty"}
	}
	e.current, e.queueEnd, e.started = 0, 1, true
	return e.timeline[0], nil
}

// NextSong advances one position and returns the new current song. It
// returns nil once playback runs past the end, after which IsRunning is false.
func (e *Engine) NextSong() (*song.Song, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning() {
		return nil, &NotInitializedError{Op: "skip", Reason: "playback is not running"}
	}
	if e.queueEmpty() {
		e.queueEnd++
	}
	e.current++
	if e.current >= len(e.timeline) {
		e.logger.Debug("Reached end of timeline")
		return nil, nil
	}
	return e.timeline[e.current], nil
}

// LastSong steps back to the previous song in the timeline, or returns nil
// at the start of history. When the queue is not empty the song that was
// playing becomes the head of the queue.
func (e *Engine) LastSong() *song.Song {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started || e.current <= 0 {
		return nil
	}
	if e.queueEmpty() {
		e.queueEnd--
	}
	e.current--
	return e.timeline[e.current]
}

// CurrentSong returns the song at the current position, if any.
func (e *Engine) CurrentSong() *song.Song {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentSong()
}

func (e *Engine) currentSong() *song.Song {
	if !e.started || e.current < 0 || e.current >= len(e.timeline) {
		return nil
	}
	return e.timeline[e.current]
}

// Songs returns the library in its current order.
func (e *Engine) Songs() []*song.Song {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.library)
}

// JumpToSong moves playback to the last occurrence of s outside the queue.
// Skipped songs become history and the queue follows the new position
// unchanged.
func (e *Engine) JumpToSong(s *song.Song) (*song.Song, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if libraryIndex(e.library, s) < 0 {
		return nil, &NotFoundError{Song: s.String()}
	}
	if !e.isRunning() {
		return nil, &NotInitializedError{Op: "jump", Reason: "playback is not running"}
	}

	queue := slices.Clone(e.timeline[e.current+1 : e.queueEnd])
	rest := make([]*song.Song, 0, len(e.timeline)-len(queue))
	rest = append(rest, e.timeline[:e.current+1]...)
	rest = append(rest, e.timeline[e.queueEnd:]...)

	target := -1
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i].Equal(s) {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, &NotFoundError{Song: s.String()}
	}

	e.player.Stop()

	timeline := make([]*song.Song, 0, len(e.timeline)+1)
	if target > e.current {
		timeline = append(timeline, rest[:target+1]...)
		timeline = append(timeline, queue...)
		timeline = append(timeline, rest[target+1:]...)
		e.current = target
	} else {
		timeline = append(timeline, rest[:e.current+1]...)
		timeline = append(timeline, rest[target])
		timeline = append(timeline, queue...)
		timeline = append(timeline, rest[e.current+1:]...)
		e.current++
	}
	e.timeline = timeline
	e.queueEnd = e.current + 1 + len(queue)

	e.logger.Debug("Jumped to %q at position %d", s, e.current)
	return e.timeline[e.current], nil
}

// Delete removes every occurrence of s from the library and the timeline,
// and deletes its file when fromDisk is set. If the file cannot be deleted
// the library is left as it was.
func (e *Engine) Delete(s *song.Song, fromDisk bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if libraryIndex(e.library, s) < 0 {
		return &NotFoundError{Song: s.String()}
	}
	if fromDisk {
		if err := e.RemoveFile(s.Path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", s.Path, err)
		}
	}

	e.library = slices.DeleteFunc(e.library, s.Equal)

	var beforeQueue, inQueue int
	timeline := make([]*song.Song, 0, len(e.timeline))
	for i, t := range e.timeline {
		if !t.Equal(s) {
			timeline = append(timeline, t)
			continue
		}
		switch {
		case i <= e.current:
			beforeQueue++
		case i < e.queueEnd:
			inQueue++
		}
	}
	e.timeline = timeline
	e.current -= beforeQueue
	e.queueEnd -= beforeQueue + inQueue

	e.logger.Debug("Deleted %q (%d from history, %d from queue)", s, beforeQueue, inQueue)
	return nil
}

// Add appends a newly discovered song to the library and the end of the
// timeline. Songs whose path is already known are ignored.
func (e *Engine) Add(s *song.Song) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if slices.ContainsFunc(e.library, func(l *song.Song) bool { return l.Path == s.Path }) {
		return false
	}
	e.library = append(e.library, s)
	e.timeline = append(e.timeline, s)
	return true
}

// NextLibrarySongs returns up to n songs that follow anchor in library order.
// A nil anchor means the current song.
func (e *Engine) NextLibrarySongs(n int, anchor *song.Song) ([]*song.Song, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.anchorIndex(anchor)
	if err != nil {
		return nil, err
	}
	end := min(len(e.library), i+1+max(n, 0))
	return slices.Clone(e.library[i+1 : end]), nil
}

// PrevLibrarySongs returns up to n songs that precede anchor in library
// order, oldest first. A nil anchor means the current song.
func (e *Engine) PrevLibrarySongs(n int, anchor *song.Song) ([]*song.Song, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.anchorIndex(anchor)
	if err != nil {
		return nil, err
	}
	start := max(0, i-max(n, 0))
	return slices.Clone(e.library[start:i]), nil
}

func (e *Engine) anchorIndex(anchor *song.Song) (int, error) {
	if anchor == nil {
		anchor = e.currentSong()
		if anchor == nil {
			return 0, &NotInitializedError{Op: "show context", Reason: "nothing is playing"}
		}
	}
	i := libraryIndex(e.library, anchor)
	if i < 0 {
		return 0, &NotFoundError{Song: anchor.String()}
	}
	return i, nil
}

// JumpToTime seeks the loaded song to t seconds. A nil s means the song
// currently loaded in the player.
func (e *Engine) JumpToTime(t float64, s *song.Song) error {
	loaded := e.player.Current()
	if s == nil {
		s = loaded
	}
	if s == nil || !s.Equal(loaded) {
		return &NotInitializedError{Op: "jump to time", Reason: "song is not loaded"}
	}
	if t < 0 || (s.Length > 0 && t >= float64(s.Length)) {
		return &RangeError{What: "time", Value: t, Min: 0, Max: float64(s.Length)}
	}
	return e.player.SetTime(t)
}

// CurrentTime returns the playback position of the loaded song in seconds.
func (e *Engine) CurrentTime() (float64, error) {
	if e.player.Current() == nil {
		return 0, &NotInitializedError{Op: "read time", Reason: "no song is loaded"}
	}
	return e.player.Time(), nil
}

func libraryIndex(songs []*song.Song, s *song.Song) int {
	return slices.IndexFunc(songs, s.Equal)
}
