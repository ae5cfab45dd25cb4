package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"termplay/internal/metadata"
	"termplay/internal/song"
)

// Status represents the current status of a task
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Finished reports whether the status is terminal.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Task is a download running in the background. Its state is polled; nothing
// blocks on it except Wait.
type Task struct {
	ID    string
	Video Video

	// Fields are the tags written to the downloaded file.
	Fields song.Fields

	mu          sync.Mutex
	status      Status
	path        string
	err         error
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

// TaskInfo is a snapshot of a task's state.
type TaskInfo struct {
	ID      string
	Title   string
	Status  Status
	Path    string
	Error   string
	Elapsed time.Duration
}

// Start downloads v into the configured download directory on a new
// goroutine. The file is named and tagged after the normalized video title.
func (d *Downloader) Start(ctx context.Context, v Video) *Task {
	ctx, cancel := context.WithCancel(ctx)

	title, artist := metadata.NormalizeVideoTitle(v.Title, v.Channel)
	if title == "" {
		title = v.ID
	}

	t := &Task{
		ID:        uuid.NewString(),
		Video:     v,
		Fields:    song.Fields{Title: title, Artist: artist},
		status:    StatusPending,
		createdAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		t.setStatus(StatusRunning, "", nil)
		path, err := d.fetch(ctx, t)
		switch {
		case errors.Is(err, ErrCancelled) || ctx.Err() != nil:
			d.Logger.Info("Download of %q cancelled", v.Title)
			t.setStatus(StatusCancelled, "", ErrCancelled)
		case err != nil:
			d.Logger.Error("Download of %q failed: %v", v.Title, err)
			t.setStatus(StatusFailed, "", err)
		default:
			d.Logger.Debug("Downloaded %q to %s", v.Title, path)
			t.setStatus(StatusCompleted, path, nil)
		}
	}()

	return t
}

func (d *Downloader) fetch(ctx context.Context, t *Task) (string, error) {
	name := song.FileName(t.Fields.Title, t.Fields.Artist, "")
	path, err := d.DownloadAudio(ctx, t.Video.ID, d.Config.Downloads(), name)
	if err != nil {
		return "", err
	}
	if err := d.tag(path, d.enrich(ctx, t.Fields)); err != nil {
		d.Logger.Warn("Failed to tag %s: %v", path, err)
	}
	return path, nil
}

func (d *Downloader) enrich(ctx context.Context, f song.Fields) song.Fields {
	if d.Lookup == nil {
		return f
	}
	found, err := d.Lookup(ctx, f)
	if err != nil {
		d.Logger.Debug("Tag lookup for %q failed: %v", f.Title, err)
		return f
	}
	return found.Override(f)
}

func (t *Task) setStatus(s Status, path string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = s
	t.err = err
	if path != "" {
		t.path = path
	}

	now := time.Now()
	switch {
	case s == StatusRunning && t.startedAt.IsZero():
		t.startedAt = now
	case s.Finished() && t.completedAt.IsZero():
		t.completedAt = now
	}
}

// Status returns the task's current status.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the downloaded path once the task has completed, or the
// error that ended it.
func (t *Task) Result() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.status.Finished() {
		return "", fmt.Errorf("download is %s", t.status)
	}
	return t.path, t.err
}

// Done reports, without blocking, whether the task has finished.
func (t *Task) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Cancel stops the download. It has no effect on a finished task.
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info returns a snapshot of the task.
func (t *Task) Info() TaskInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := TaskInfo{
		ID:     t.ID,
		Title:  t.Video.Title,
		Status: t.status,
		Path:   t.path,
	}
	if t.err != nil {
		info.Error = t.err.Error()
	}
	switch {
	case !t.completedAt.IsZero():
		info.Elapsed = t.completedAt.Sub(t.startedAt)
	case !t.startedAt.IsZero():
		info.Elapsed = time.Since(t.startedAt)
	}
	return info
}

func (i TaskInfo) String() string {
	s := fmt.Sprintf("%q: %s", i.Title, i.Status)
	if i.Elapsed > 0 {
		s += fmt.Sprintf(" (%s)", i.Elapsed.Round(time.Second))
	}
	if i.Error != "" {
		s += " - " + i.Error
	}
	return s
}
