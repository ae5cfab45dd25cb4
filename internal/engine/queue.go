package engine

import (
	"slices"

	"termplay/internal/song"
)

// AddToQueue appends s to the end of the queue.
func (e *Engine) AddToQueue(s *song.Song) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insert(e.queueEnd, s)
}

// AddToFrontOfQueue queues s to play right after the current song.
func (e *Engine) AddToFrontOfQueue(s *song.Song) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insert(e.current+1, s)
}

func (e *Engine) insert(at int, s *song.Song) error {
	if e.current >= len(e.timeline) {
		return &NotInitializedError{Op: "queue", Reason: "playback has finished"}
	}
	e.timeline = slices.Insert(e.timeline, at, s)
	e.queueEnd++
	return nil
}

// RemoveFromQueue removes the first queued occurrence of s, or every queued
// occurrence when all is set. Songs outside the queue are never touched.
func (e *Engine) RemoveFromQueue(s *song.Song, all bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := false
	for i := e.current + 1; i < e.queueEnd; {
		if !e.timeline[i].Equal(s) {
			i++
			continue
		}
		e.timeline = slices.Delete(e.timeline, i, i+1)
		e.queueEnd--
		removed = true
		if !all {
			break
		}
	}
	return removed
}

// IsQueueEmpty reports whether no songs are queued after the current one.
func (e *Engine) IsQueueEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queueEmpty()
}

// QueuedSongs returns the queue in play order.
func (e *Engine) QueuedSongs() []*song.Song {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queued()
}

func (e *Engine) queued() []*song.Song {
	if e.current+1 >= len(e.timeline) {
		return nil
	}
	return slices.Clone(e.timeline[e.current+1 : e.queueEnd])
}

// NextSongs returns up to k upcoming songs, queue first.
func (e *Engine) NextSongs(k int) []*song.Song {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := max(e.current+1, 0)
	if k <= 0 || start >= len(e.timeline) {
		return nil
	}
	return slices.Clone(e.timeline[start:min(len(e.timeline), start+k)])
}
