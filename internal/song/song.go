package song

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Fields holds the tag-derived attributes of a song. Zero values mean the
// attribute is absent.
type Fields struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
}

// Override returns f with every non-empty attribute of o written over it.
func (f Fields) Override(o Fields) Fields {
	if o.Title != "" {
		f.Title = o.Title
	}
	if o.Artist != "" {
		f.Artist = o.Artist
	}
	if o.Album != "" {
		f.Album = o.Album
	}
	if o.Genre != "" {
		f.Genre = o.Genre
	}
	if o.Year > 0 {
		f.Year = o.Year
	}
	return f
}

// Song is one playable audio file in the library.
type Song struct {
	Fields
	Length       int // seconds, rounded
	DateModified time.Time
	Path         string
}

// New builds a Song for the file at path. An empty title falls back to the
// file name without its extension.
func New(path string, fields Fields, length time.Duration, modified time.Time) *Song {
	fields.Title = strings.TrimSpace(fields.Title)
	if fields.Title == "" {
		fields.Title = stem(path)
	}
	return &Song{
		Fields:       fields,
		Length:       int(length.Round(time.Second) / time.Second),
		DateModified: modified,
		Path:         path,
	}
}

// FieldsFromName parses the "<title> - <artist>.<ext>" naming convention.
// A name without a separator yields only a title.
func FieldsFromName(path string) Fields {
	name := stem(path)
	if title, artist, ok := strings.Cut(name, " - "); ok {
		return Fields{Title: strings.TrimSpace(title), Artist: strings.TrimSpace(artist)}
	}
	return Fields{Title: name}
}

// FileName returns the conventional file name for the given title and artist.
func FileName(title, artist, ext string) string {
	if artist == "" {
		return title + ext
	}
	return title + " - " + artist + ext
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Value returns the column's value as text and whether the song has one.
func (s *Song) Value(c Column) (string, bool) {
	switch c {
	case Title:
		return s.Title, s.Title != ""
	case Artist:
		return s.Artist, s.Artist != ""
	case Album:
		return s.Album, s.Album != ""
	case Genre:
		return s.Genre, s.Genre != ""
	case Year:
		if s.Year <= 0 {
			return "", false
		}
		return strconv.Itoa(s.Year), true
	case Length:
		return strconv.Itoa(s.Length), true
	case DateModified:
		if s.DateModified.IsZero() {
			return "", false
		}
		return s.DateModified.Format("2006-01-02 15:04:05"), true
	}
	return "", false
}

// Compare orders two songs by column c. Both songs must have a value for c.
func Compare(a, b *Song, c Column) int {
	switch c {
	case Year:
		return a.Year - b.Year
	case Length:
		return a.Length - b.Length
	case DateModified:
		return a.DateModified.Compare(b.DateModified)
	}
	av, _ := a.Value(c)
	bv, _ := b.Value(c)
	return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
}

// Equal reports whether two songs match on every attribute except the
// modification date.
func (s *Song) Equal(o *Song) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	return s.Fields == o.Fields && s.Length == o.Length && s.Path == o.Path
}

func (s *Song) String() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Title + " - " + s.Artist
}

// Info lists every column the song has a value for, one per line.
func (s *Song) Info() string {
	var b strings.Builder
	for _, c := range Columns {
		v, ok := s.Value(c)
		if !ok {
			continue
		}
		if c == Length {
			v = FormatSeconds(s.Length)
		}
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(c.String()), v)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSeconds renders seconds as m:ss.
func FormatSeconds(sec int) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// Set assigns a tag column from text. Only tag-derived columns can be set.
func (f *Fields) Set(c Column, value string) error {
	value = strings.TrimSpace(value)
	switch c {
	case Title:
		f.Title = value
	case Artist:
		f.Artist = value
	case Album:
		f.Album = value
	case Genre:
		f.Genre = value
	case Year:
		y, err := strconv.Atoi(value)
		if err != nil || y <= 0 {
			return fmt.Errorf("invalid year %q", value)
		}
		f.Year = y
	default:
		return fmt.Errorf("%s is not a tag", c)
	}
	return nil
}

// SetTags writes f over the song's tags, persisting them with write first.
// The song is left unchanged when write fails.
func (s *Song) SetTags(f Fields, write func(path string, f Fields) error) error {
	merged := s.Fields.Override(f)
	if merged == s.Fields {
		return nil
	}
	if write != nil {
		if err := write(s.Path, merged); err != nil {
			return fmt.Errorf("failed to write tags to %s: %w", s.Path, err)
		}
	}
	s.Fields = merged
	return nil
}
