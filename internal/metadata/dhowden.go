package metadata

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// DhowdenReader reads tags in pure Go. It cannot report the audio length.
type DhowdenReader struct{}

func (DhowdenReader) Name() string { return "dhowden" }

func (DhowdenReader) Read(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	return Tags{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
		Genre:  strings.TrimSpace(m.Genre()),
		Year:   max(m.Year(), 0),
	}, nil
}
