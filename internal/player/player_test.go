package player

import (
	"errors"
	"testing"
	"time"

	"termplay/internal/song"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newSilent() (*Silent, *fakeClock) {
	c := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewSilent()
	d.now = c.now
	return d, c
}

func TestSilentPlaysForSongLength(t *testing.T) {
	d, clock := newSilent()
	s := song.New("/a.mp3", song.Fields{Title: "a"}, 10*time.Second, time.Time{})

	if err := d.Load(s); err != nil {
		t.Fatal(err)
	}
	if d.Playing() {
		t.Error("song should not be playing before Play")
	}

	d.Play()
	clock.advance(4 * time.Second)
	if !d.Playing() {
		t.Fatal("song should be playing")
	}
	if got := d.Time(); got != 4 {
		t.Errorf("Time() = %v, want 4", got)
	}

	d.Pause()
	clock.advance(time.Hour)
	if !d.Playing() || !d.Paused() {
		t.Error("paused song should still count as playing")
	}
	if got := d.Time(); got != 4 {
		t.Errorf("Time() while paused = %v, want 4", got)
	}

	d.Play()
	clock.advance(6 * time.Second)
	if d.Playing() {
		t.Error("song should have finished")
	}
	if got := d.Time(); got != 10 {
		t.Errorf("Time() after finish = %v, want 10", got)
	}
}

func TestSilentSetTime(t *testing.T) {
	d, clock := newSilent()
	if err := d.SetTime(3); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("SetTime() without song error = %v, want ErrNotLoaded", err)
	}

	d.Load(song.New("/a.mp3", song.Fields{}, time.Minute, time.Time{}))
	d.Play()
	clock.advance(10 * time.Second)
	if err := d.SetTime(50); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Second)
	if got := d.Time(); got != 52 {
		t.Errorf("Time() = %v, want 52", got)
	}

	d.Stop()
	if d.Current() != nil || d.Playing() {
		t.Error("Stop should unload the song")
	}
}

func TestVolume(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{50, 50},
		{-3, 0},
		{250, 100},
	}
	for _, tt := range tests {
		d := NewSilent()
		d.SetVolume(tt.in)
		if got := d.Volume(); got != tt.want {
			t.Errorf("SetVolume(%d) -> Volume() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGain(t *testing.T) {
	if _, silent := gain(0); !silent {
		t.Error("zero volume should be silent")
	}
	if exp, silent := gain(100); silent || exp != 0 {
		t.Errorf("gain(100) = %v, %v; want 0, false", exp, silent)
	}
	if exp, _ := gain(50); exp != -1 {
		t.Errorf("gain(50) = %v, want -1", exp)
	}
}
