package engine

import (
	"math/rand/v2"
	"slices"

	"termplay/internal/song"
)

// Sort reorders the library by column. Songs without a value come first in
// their previous order, followed by the rest ordered by value (descending
// when reverse is set). The timeline is then rebuilt from the new order with
// the current song and the queue kept in front.
func (e *Engine) Sort(column song.Column, reverse bool) error {
	if !slices.Contains(song.Columns, column) {
		return &InvalidColumnError{Name: string(column)}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var missing, present []*song.Song
	for _, s := range e.library {
		if _, ok := s.Value(column); ok {
			present = append(present, s)
		} else {
			missing = append(missing, s)
		}
	}
	slices.SortStableFunc(present, func(a, b *song.Song) int {
		if reverse {
			return song.Compare(b, a, column)
		}
		return song.Compare(a, b, column)
	})
	e.library = append(missing, present...)
	e.rebuild()

	e.logger.Debug("Sorted library by %s (reverse=%v)", column, reverse)
	return nil
}

// Shuffle puts the library in random order and rebuilds the timeline the
// same way Sort does.
func (e *Engine) Shuffle() {
	e.mu.Lock()
	defer e.mu.Unlock()

	rand.Shuffle(len(e.library), func(i, j int) {
		e.library[i], e.library[j] = e.library[j], e.library[i]
	})
	e.rebuild()
}

// rebuild lays the timeline out as [current][queue][library]. Before
// playback starts, or after it has finished, the timeline is just the
// library and playback has to be started again with FirstSong.
func (e *Engine) rebuild() {
	cur := e.currentSong()
	if cur == nil {
		if e.current >= len(e.timeline) {
			e.started = false
		}
		e.timeline = slices.Clone(e.library)
		e.current, e.queueEnd = 0, 1
		return
	}

	queue := e.queued()
	timeline := make([]*song.Song, 0, 1+len(queue)+len(e.library))
	timeline = append(timeline, cur)
	timeline = append(timeline, queue...)
	timeline = append(timeline, e.library...)

	e.timeline = timeline
	e.current = 0
	e.queueEnd = 1 + len(queue)
}
