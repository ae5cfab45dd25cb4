package player

import (
	"errors"
	"math"

	"termplay/internal/song"
)

// ErrNotLoaded is returned by operations that need a loaded song.
var ErrNotLoaded = errors.New("no song loaded")

// Driver plays one song at a time.
//
// Playing reports whether the loaded song is still alive: it stays true while
// the song is paused and turns false once the song has run to its end or has
// been stopped. The control loop polls it to detect completion.
type Driver interface {
	Load(s *song.Song) error
	Play()
	Pause()
	Stop()
	Playing() bool
	Paused() bool
	Current() *song.Song
	SetTime(seconds float64) error
	Time() float64
	SetVolume(percent int)
	Volume() int
	Close() error
}

// MaxVolume is the loudest volume a driver accepts.
const MaxVolume = 100

func clampVolume(percent int) int {
	return min(max(percent, 0), MaxVolume)
}

// gain converts a volume percentage into the exponent used by beep's volume
// effect with base 2. Zero percent is reported as silent.
func gain(percent int) (exp float64, silent bool) {
	percent = clampVolume(percent)
	if percent == 0 {
		return 0, true
	}
	return math.Log2(float64(percent) / MaxVolume), false
}
