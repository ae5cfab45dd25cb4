package engine

import (
	"fmt"

	"termplay/internal/song"
)

// InvalidColumnError is returned for sort or search columns that do not exist.
type InvalidColumnError = song.InvalidColumnError

// NotFoundError is returned when a song lookup fails.
type NotFoundError struct {
	Song string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("song %q not found in library", e.Song)
}

// RangeError is returned for a time or volume outside its valid bounds.
type RangeError struct {
	What  string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %g out of range [%g, %g)", e.What, e.Value, e.Min, e.Max)
}

// NotInitializedError is returned for operations that need playback or a
// loaded song before they can run.
type NotInitializedError struct {
	Op     string
	Reason string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
}
