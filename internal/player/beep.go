//go:build (linux && cgo) || windows || darwin

package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"termplay/internal/logger"
	"termplay/internal/song"
)

// AudioAvailable indicates whether this build can produce sound.
const AudioAvailable = true

const speakerRate = beep.SampleRate(44100)

// Beep plays songs through the system speaker.
type Beep struct {
	mu sync.Mutex

	logger      *logger.Logger
	initialized bool
	loaded      *song.Song
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	percent     int
	started     bool
	generation  int64

	// finished holds the generation of the last song that ran to its end.
	// The speaker goroutine writes it while holding the speaker lock, so it
	// must not touch mu.
	finished atomic.Int64
}

// NewDefault returns the speaker-backed driver.
func NewDefault(log *logger.Logger) Driver {
	return NewBeep(log)
}

// NewBeep creates a driver at full volume. The speaker is opened lazily on
// the first Load.
func NewBeep(log *logger.Logger) *Beep {
	return &Beep{logger: log, percent: MaxVolume}
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".flac":
		s, format, err = flac.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".ogg":
		s, format, err = vorbis.Decode(f)
	default:
		err = fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

// Load stops whatever is playing and prepares s for playback, paused at the
// start.
func (b *Beep) Load(s *song.Song) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()

	streamer, format, err := decode(s.Path)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", s.Path, err)
	}

	if !b.initialized {
		if err := speaker.Init(speakerRate, speakerRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to open speaker: %w", err)
		}
		b.initialized = true
	}

	exp, silent := gain(b.percent)
	b.ctrl = &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, speakerRate, streamer), Paused: true}
	b.volume = &effects.Volume{Streamer: b.ctrl, Base: 2, Volume: exp, Silent: silent}
	b.streamer = streamer
	b.format = format
	b.loaded = s
	b.started = false
	b.generation++

	gen := b.generation
	speaker.Play(beep.Seq(b.volume, beep.Callback(func() {
		b.finished.Store(gen)
	})))

	b.logger.Debug("Loaded %s (%s)", s.Path, format.SampleRate.D(streamer.Len()).Round(time.Second))
	return nil
}

// Play starts or resumes the loaded song.
func (b *Beep) Play() {
	b.setPaused(false)
}

// Pause suspends the loaded song.
func (b *Beep) Pause() {
	b.setPaused(true)
}

func (b *Beep) setPaused(paused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = paused
	speaker.Unlock()
	if !paused {
		b.started = true
	}
}

// Stop ends playback and releases the loaded song.
func (b *Beep) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Beep) stopLocked() {
	if b.initialized {
		speaker.Clear()
	}
	if b.streamer != nil {
		b.streamer.Close()
	}
	b.generation++
	b.streamer = nil
	b.ctrl = nil
	b.volume = nil
	b.loaded = nil
	b.started = false
}

// Playing reports whether a song was started and has neither finished nor
// been stopped. Pausing does not end it.
func (b *Beep) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamer != nil && b.started && b.finished.Load() != b.generation
}

func (b *Beep) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctrl == nil {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return b.ctrl.Paused && b.started
}

func (b *Beep) Current() *song.Song {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// SetTime seeks the loaded song to the given second.
func (b *Beep) SetTime(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return ErrNotLoaded
	}
	speaker.Lock()
	defer speaker.Unlock()

	pos := b.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	pos = min(max(pos, 0), b.streamer.Len()-1)
	if err := b.streamer.Seek(pos); err != nil {
		return fmt.Errorf("failed to seek to %.1fs: %w", seconds, err)
	}
	return nil
}

// Time returns the playback position in seconds.
func (b *Beep) Time() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(pos).Seconds()
}

// SetVolume sets the output volume, clamped to 0..100.
func (b *Beep) SetVolume(percent int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.percent = clampVolume(percent)
	if b.volume == nil {
		return
	}
	exp, silent := gain(b.percent)
	speaker.Lock()
	b.volume.Volume = exp
	b.volume.Silent = silent
	speaker.Unlock()
}

func (b *Beep) Volume() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.percent
}

// Close stops playback and shuts the speaker down.
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopLocked()
	if b.initialized {
		speaker.Close()
		b.initialized = false
	}
	return nil
}
