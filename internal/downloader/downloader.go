package downloader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"termplay/internal/config"
	"termplay/internal/logger"
	"termplay/internal/metadata"
	"termplay/internal/song"
	"termplay/pkg/utils"
)

// ErrCancelled is returned when a search or download is cancelled.
var ErrCancelled = errors.New("cancelled")

// Video is a single YouTube search result.
type Video struct {
	Title       string
	ID          string
	Channel     string
	PublishDate string
	Description string
	Duration    int // seconds
}

func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

func (v Video) String() string {
	s := v.Title
	if v.Channel != "" {
		s += " [" + v.Channel + "]"
	}
	if v.Duration > 0 {
		s += " (" + song.FormatSeconds(v.Duration) + ")"
	}
	return s
}

// runFunc runs yt-dlp with the given arguments and returns its stdout.
type runFunc func(ctx context.Context, args ...string) ([]byte, error)

// Downloader searches YouTube and downloads videos as audio files using yt-dlp
type Downloader struct {
	Config config.Config
	Logger *logger.Logger

	// Lookup, if set, is asked for tags the video title does not carry.
	// Its answers never replace the title or artist.
	Lookup func(ctx context.Context, f song.Fields) (song.Fields, error)

	run runFunc
	tag func(path string, f song.Fields) error
}

// New creates a new Downloader instance
func New(cfg config.Config, log *logger.Logger) *Downloader {
	return &Downloader{
		Config: cfg,
		Logger: log,
		run:    runYtdlp,
		tag:    metadata.WriteTags,
	}
}

func runYtdlp(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("yt-dlp failed: %w\nDetails: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Search returns up to limit videos matching query.
func (d *Downloader) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	limit = max(limit, 1)

	d.Logger.Debug("Searching YouTube for %q", query)
	out, err := d.run(ctx,
		"--flat-playlist",
		"--dump-json",
		"--no-warnings",
		fmt.Sprintf("ytsearch%d:%s", limit, query),
	)
	if err != nil {
		return nil, err
	}

	videos, err := parseSearchOutput(out)
	if err != nil {
		return nil, err
	}
	d.Logger.Debug("Found %d videos", len(videos))
	return videos, nil
}

type searchEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Channel     string  `json:"channel"`
	Uploader    string  `json:"uploader"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
}

// parseSearchOutput reads the one-object-per-line JSON that yt-dlp prints
// with --dump-json.
func parseSearchOutput(out []byte) ([]Video, error) {
	var videos []Video
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var e searchEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("error parsing yt-dlp output: %w", err)
		}
		if e.ID == "" {
			continue
		}

		channel := e.Channel
		if channel == "" {
			channel = e.Uploader
		}
		videos = append(videos, Video{
			Title:       e.Title,
			ID:          e.ID,
			Channel:     channel,
			PublishDate: formatUploadDate(e.UploadDate),
			Description: e.Description,
			Duration:    int(e.Duration + 0.5),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading yt-dlp output: %w", err)
	}
	return videos, nil
}

// formatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD.
func formatUploadDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

// buildYtdlpArgs constructs command-line arguments for yt-dlp
func (d *Downloader) buildYtdlpArgs(url, tmpDir string) []string {
	outputTemplate := filepath.Join(tmpDir, "%(id)s.%(ext)s")

	args := []string{
		"--extract-audio",
		"--audio-format", d.Config.AudioFormat,
		"-f", "bestaudio[ext=m4a]/bestaudio/best",
		"--retries", "10",
		"--fragment-retries", "10",
		"--no-playlist",
		"--embed-metadata",
		"--quiet",
	}

	// If empty yt-dlp will go to default (--no-cookies-from-browser)
	if d.Config.CookiesBrowser != "" {
		args = append(args, "--cookies-from-browser", d.Config.CookiesBrowser)
	}

	args = append(args, "-o", outputTemplate, url)

	return args
}

// DownloadAudio downloads the video with the given ID as audio and saves it
// in dir as name plus the audio extension. It returns the saved path.
func (d *Downloader) DownloadAudio(ctx context.Context, id, dir, name string) (string, error) {
	tmpDir, err := utils.CreateTempDir()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := utils.Cleanup(tmpDir); err != nil {
			d.Logger.Warn("Failed to remove %s: %v", tmpDir, err)
		}
	}()

	url := Video{ID: id}.URL()
	d.Logger.Debug("Downloading %s into %s", url, tmpDir)
	if _, err := d.run(ctx, d.buildYtdlpArgs(url, tmpDir)...); err != nil {
		return "", err
	}

	moved, failed, err := utils.MoveAudioFiles(tmpDir, dir, func(file string) string {
		if name == "" {
			return ""
		}
		return name + filepath.Ext(file)
	})
	if err != nil {
		return "", err
	}
	if len(moved) == 0 {
		if failed > 0 {
			return "", fmt.Errorf("failed to move download of %s into %s", id, dir)
		}
		return "", fmt.Errorf("yt-dlp produced no audio file for %s", id)
	}
	return moved[0], nil
}
