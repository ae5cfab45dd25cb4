package dispatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"termplay/internal/downloader"
	"termplay/internal/engine"
)

// Download is a background download whose progress is polled.
type Download interface {
	Info() downloader.TaskInfo
	Done() bool
	Cancel()
	Result() (string, error)
}

// Fetcher looks songs up online and downloads them into the library.
type Fetcher interface {
	Search(ctx context.Context, query string, limit int) ([]downloader.Video, error)
	Fetch(ctx context.Context, v downloader.Video) Download
}

func (d *Dispatcher) download(args string) (Result, error) {
	if d.Fetcher == nil {
		return text("Downloads are disabled")
	}

	opt, rest := cutOption(args, "-cancel", "-status")
	switch opt {
	case "-cancel":
		if d.task == nil || d.task.Done() {
			return text("No download in progress")
		}
		d.task.Cancel()
		return message("Cancelling download of %q", d.task.Info().Title)
	case "-status":
		if d.task == nil {
			return text("Nothing has been downloaded yet")
		}
		return text(d.task.Info().String())
	}

	if rest == "" {
		return Result{}, &ParseError{Reason: "no search query given"}
	}
	if n, err := strconv.Atoi(rest); err == nil && len(d.candidates) > 0 {
		return d.startDownload(n)
	}

	videos, err := d.Fetcher.Search(d.ctx, rest, d.SearchResults)
	if err != nil {
		return Result{}, fmt.Errorf("search failed: %w", err)
	}
	if len(videos) == 0 {
		return message("No results for %q", rest)
	}
	d.candidates = videos

	var b strings.Builder
	fmt.Fprintf(&b, "Results for %q:\n", rest)
	for i, v := range videos {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, v)
	}
	b.WriteString(`Type "download <n>" to download one`)
	return text(b.String())
}

func (d *Dispatcher) startDownload(n int) (Result, error) {
	if d.task != nil && !d.task.Done() {
		return message("A download is already in progress: %s", d.task.Info())
	}
	if n < 1 || n > len(d.candidates) {
		return Result{}, &engine.RangeError{What: "choice", Value: float64(n), Min: 1, Max: float64(len(d.candidates) + 1)}
	}

	v := d.candidates[n-1]
	d.task = d.Fetcher.Fetch(d.ctx, v)
	d.reported = false
	d.candidates = nil

	d.Logger.Debug("Started download of %s (%s)", v.Title, v.ID)
	return message("Downloading %q in the background", v.Title)
}

// FinishedDownload reports the download that finished since the last call.
// ok is false while nothing new has finished; path is empty when the
// download failed or was cancelled.
func (d *Dispatcher) FinishedDownload() (path, msg string, ok bool) {
	if d.task == nil || d.reported || !d.task.Done() {
		return "", "", false
	}
	d.reported = true

	info := d.task.Info()
	path, err := d.task.Result()
	switch {
	case errors.Is(err, downloader.ErrCancelled):
		return "", fmt.Sprintf("Download of %q cancelled", info.Title), true
	case err != nil:
		return "", fmt.Sprintf("Download of %q failed: %v", info.Title, err), true
	}
	return path, fmt.Sprintf("Downloaded %s", filepath.Base(path)), true
}
