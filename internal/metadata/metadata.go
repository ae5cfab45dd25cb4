package metadata

import (
	"time"

	"termplay/internal/song"
)

// Tags contains the metadata read from a single audio file.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
	Length time.Duration
}

// Fields returns the tag values used to build a song.
func (t Tags) Fields() song.Fields {
	return song.Fields{
		Title:  t.Title,
		Artist: t.Artist,
		Album:  t.Album,
		Genre:  t.Genre,
		Year:   t.Year,
	}
}

// Reader is the interface that tag readers must implement.
type Reader interface {
	Name() string
	Read(path string) (Tags, error)
}
