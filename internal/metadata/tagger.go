package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"go.senan.xyz/taglib"

	"termplay/internal/song"
)

// TaglibReader reads tags and the audio length with TagLib.
type TaglibReader struct{}

func (TaglibReader) Name() string { return "taglib" }

func (TaglibReader) Read(path string) (Tags, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return Tags{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return Tags{}, fmt.Errorf("failed to read properties of %s: %w", path, err)
	}

	return Tags{
		Title:  firstTag(tags, taglib.Title),
		Artist: firstTag(tags, taglib.Artist),
		Album:  firstTag(tags, taglib.Album),
		Genre:  firstTag(tags, taglib.Genre),
		Year:   parseYear(firstTag(tags, taglib.Date)),
		Length: props.Length,
	}, nil
}

// WriteTags writes the non-empty fields to an audio file. Fields left empty
// keep their current value on disk.
func WriteTags(path string, f song.Fields) error {
	tags := make(map[string][]string)

	if f.Title != "" {
		tags[taglib.Title] = []string{f.Title}
	}
	if f.Artist != "" {
		tags[taglib.Artist] = []string{f.Artist}
	}
	if f.Album != "" {
		tags[taglib.Album] = []string{f.Album}
	}
	if f.Genre != "" {
		tags[taglib.Genre] = []string{f.Genre}
	}
	if f.Year > 0 {
		tags[taglib.Date] = []string{strconv.Itoa(f.Year)}
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// parseYear takes the year from dates like "2020" or "2020-03-20".
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
