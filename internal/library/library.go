package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"termplay/internal/logger"
	"termplay/internal/metadata"
	"termplay/internal/song"
	"termplay/pkg/utils"
)

// ErrEmpty is returned when no playable songs were found.
var ErrEmpty = errors.New("no playable songs found")

// Loader builds songs from audio files on disk.
type Loader struct {
	Reader metadata.Reader
	Logger *logger.Logger

	// Workers bounds how many files are read at once.
	Workers int
	// NameOverrides lets file names of the form "<title> - <artist>" win
	// over the file's tags.
	NameOverrides bool
	// ShowProgress draws a progress bar on stderr while loading.
	ShowProgress bool
}

// NewLoader creates a Loader with a single worker and no progress bar.
func NewLoader(r metadata.Reader, log *logger.Logger) *Loader {
	return &Loader{Reader: r, Logger: log, Workers: 1, NameOverrides: true}
}

// Load walks every root and returns the songs found, in walk order and
// without duplicate paths. A missing root or an empty result is an error.
func (l *Loader) Load(ctx context.Context, roots ...string) ([]*song.Song, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no library directory given")
	}

	seen := make(map[string]bool)
	var paths []string
	for _, root := range roots {
		files, err := utils.FindAudioFiles(root)
		if err != nil {
			return nil, fmt.Errorf("failed to load library: %w", err)
		}
		for _, f := range files {
			if abs, err := filepath.Abs(f); err == nil {
				f = abs
			}
			if !seen[f] {
				seen[f] = true
				paths = append(paths, f)
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrEmpty, roots)
	}

	l.Logger.Debug("Found %d audio files", len(paths))
	songs, err := l.loadAll(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrEmpty, roots)
	}
	return songs, nil
}

func (l *Loader) loadAll(ctx context.Context, paths []string) ([]*song.Song, error) {
	workers := min(max(l.Workers, 1), len(paths))
	results := make([]*song.Song, len(paths))

	var bar *progressbar.ProgressBar
	if l.ShowProgress {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Loading library"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, err := l.LoadFile(paths[i])
				if err != nil {
					l.Logger.Warn("Skipping %s: %v", paths[i], err)
				} else {
					results[i] = s
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	var cancelled bool
feed:
	for i := range paths {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	if cancelled {
		return nil, fmt.Errorf("library loading cancelled: %w", ctx.Err())
	}

	songs := make([]*song.Song, 0, len(results))
	for _, s := range results {
		if s != nil {
			songs = append(songs, s)
		}
	}
	return songs, nil
}

// LoadFile builds a song from a single file. Unreadable tags are not an
// error: the song then takes its title and artist from the file name.
func (l *Loader) LoadFile(path string) (*song.Song, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	tags, err := l.Reader.Read(path)
	if err != nil {
		l.Logger.Debug("No tags for %s: %v", path, err)
	}

	// Tags win over the file name unless the name follows the
	// "<title> - <artist>" convention and overrides are on.
	fields, named := tags.Fields(), song.FieldsFromName(path)
	if l.NameOverrides && named.Artist != "" {
		fields = fields.Override(named)
	} else {
		fields = named.Override(fields)
	}
	return song.New(path, fields, tags.Length, info.ModTime()), nil
}
