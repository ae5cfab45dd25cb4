package player

import (
	"sync"
	"time"

	"termplay/internal/song"
)

// Silent is a driver that produces no sound. It keeps time against the
// wall clock so a song "finishes" after its length has elapsed, which lets
// the playlist advance in builds without audio support.
type Silent struct {
	mu sync.Mutex

	now     func() time.Time
	loaded  *song.Song
	offset  time.Duration
	since   time.Time
	running bool
	started bool
	percent int
}

// NewSilent creates a silent driver at full volume.
func NewSilent() *Silent {
	return &Silent{now: time.Now, percent: MaxVolume}
}

func (d *Silent) Load(s *song.Song) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loaded = s
	d.offset = 0
	d.running = false
	d.started = false
	return nil
}

func (d *Silent) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded == nil || d.running {
		return
	}
	d.since = d.now()
	d.running = true
	d.started = true
}

func (d *Silent) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}
	d.offset = d.elapsed()
	d.running = false
}

func (d *Silent) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loaded = nil
	d.running = false
	d.started = false
}

func (d *Silent) elapsed() time.Duration {
	if !d.running {
		return d.offset
	}
	return d.offset + d.now().Sub(d.since)
}

func (d *Silent) length() time.Duration {
	return time.Duration(d.loaded.Length) * time.Second
}

// Playing is true from the first Play until the song's length has elapsed.
func (d *Silent) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded != nil && d.started && d.elapsed() < d.length()
}

func (d *Silent) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded != nil && d.started && !d.running
}

func (d *Silent) Current() *song.Song {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

func (d *Silent) SetTime(seconds float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded == nil {
		return ErrNotLoaded
	}
	d.offset = time.Duration(seconds * float64(time.Second))
	if d.running {
		d.since = d.now()
	}
	return nil
}

func (d *Silent) Time() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded == nil {
		return 0
	}
	return min(d.elapsed(), d.length()).Seconds()
}

func (d *Silent) SetVolume(percent int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.percent = clampVolume(percent)
}

func (d *Silent) Volume() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.percent
}

func (d *Silent) Close() error {
	d.Stop()
	return nil
}
