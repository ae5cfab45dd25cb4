package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"termplay/internal/logger"
	"termplay/pkg/utils"
)

// DefaultSettle is how long a new file must go without writes before it is
// reported.
const DefaultSettle = time.Second

// Watcher reports audio files that appear under the library roots.
// Sub-directories created later are watched too.
type Watcher struct {
	// Settle delays reporting a file until it has not been written to for
	// this long. Set before Run.
	Settle time.Duration

	fsw    *fsnotify.Watcher
	logger *logger.Logger
	added  chan string
}

// NewWatcher starts watching roots and every directory below them.
func NewWatcher(log *logger.Logger, roots ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		Settle: DefaultSettle,
		fsw:    fsw,
		logger: log,
		added:  make(chan string, 16),
	}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// Added delivers the paths of new audio files. It is closed when Run
// returns.
func (w *Watcher) Added() <-chan string {
	return w.added
}

// Run processes file system events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.added)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(max(w.Settle/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("%v", err)
					}
					w.queueExisting(event.Name, pending)
					continue
				}
			}
			if !utils.IsAudioFile(event.Name) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[event.Name] = time.Now()
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.Settle {
					continue
				}
				delete(pending, path)
				select {
				case w.added <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// queueExisting picks up audio files that were moved in together with a new
// directory, since they produce no events of their own.
func (w *Watcher) queueExisting(dir string, pending map[string]time.Time) {
	files, err := utils.FindAudioFiles(dir)
	if err != nil {
		return
	}
	now := time.Now()
	for _, f := range files {
		pending[f] = now
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
