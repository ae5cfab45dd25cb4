// Package dispatch turns command lines into engine and player operations.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"termplay/internal/downloader"
	"termplay/internal/engine"
	"termplay/internal/logger"
	"termplay/internal/lyrics"
	"termplay/internal/player"
	"termplay/internal/song"
)

// DefaultSeek is how far forward and backward move without an argument.
const DefaultSeek = 5

// DefaultContext is how many songs context shows on each side.
const DefaultContext = 5

// Result is the outcome of one command. Next, when set, is the song the
// caller should load and play now.
type Result struct {
	Next    *song.Song
	Message string
	Quit    bool
}

// LyricsFetcher looks up the lyrics of a song.
type LyricsFetcher interface {
	Fetch(ctx context.Context, s *song.Song) (lyrics.Result, error)
}

// Dispatcher runs commands against the engine and the player. It never
// prints; everything the user should see is returned in a Result.
type Dispatcher struct {
	Engine *engine.Engine
	Player player.Driver
	Logger *logger.Logger

	// Fetcher searches and downloads songs. Downloads are disabled when nil.
	Fetcher Fetcher
	// Lyrics looks lyrics up for the lyrics command. Disabled when nil.
	Lyrics LyricsFetcher
	// TagWriter persists tags changed with the tag command.
	TagWriter func(path string, f song.Fields) error

	// Guesses is how many fuzzy guesses are offered for an unmatched song.
	Guesses int
	// SearchResults is how many online results download lists.
	SearchResults int

	ctx        context.Context
	candidates []downloader.Video
	task       Download
	reported   bool
}

// New creates a Dispatcher. ctx bounds searches and downloads.
func New(ctx context.Context, e *engine.Engine, p player.Driver, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		Engine:        e,
		Player:        p,
		Logger:        log,
		Guesses:       engine.DefaultGuesses,
		SearchResults: 5,
		ctx:           ctx,
	}
}

// Dispatch runs one command line.
func (d *Dispatcher) Dispatch(line string) Result {
	line = strings.TrimSpace(line)
	if line == "" {
		return Result{}
	}
	name, args, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	d.Logger.Debug("Command %q, args %q", name, args)

	res, err := d.run(name, args)
	if err != nil {
		d.Logger.Debug("Command %q failed: %v", name, err)
		res.Message = errorMessage(err)
	}
	return res
}

func (d *Dispatcher) run(name, args string) (Result, error) {
	switch name {
	case "stop", "quit", "exit":
		return Result{Message: "Stopping", Quit: true}, nil
	case "help":
		return text(helpText(args))
	case "columns":
		names := lo.Map(song.Columns, func(c song.Column, _ int) string { return c.String() })
		return text("Columns: " + strings.Join(names, ", "))
	case "skip":
		return d.skip()
	case "back":
		return d.back()
	case "delete":
		return d.delete(args)
	case "next":
		return d.next(args)
	case "jump":
		return d.jump(args)
	case "repeat":
		return d.repeat()
	case "restart":
		return d.restart()
	case "time":
		return d.time(args)
	case "forward":
		return d.seek(args, 1)
	case "backward":
		return d.seek(args, -1)
	case "info":
		cur, err := d.current("show info")
		if err != nil {
			return Result{}, err
		}
		return text(cur.Info())
	case "queue":
		return d.queue(args)
	case "dequeue":
		return d.dequeue(args)
	case "context":
		return d.context(args)
	case "sort":
		return d.sort(args)
	case "shuffle":
		d.Engine.Shuffle()
		return text("Shuffled the library")
	case "search":
		return d.search(args)
	case "tag":
		return d.tag(args)
	case "lyrics":
		return d.lyrics()
	case "volume":
		return d.volume(args)
	case "pause":
		return d.pause()
	case "unpause", "resume":
		return d.unpause()
	case "download":
		return d.download(args)
	}
	return text(unknownCommand(name))
}

func message(format string, args ...any) (Result, error) {
	return Result{Message: fmt.Sprintf(format, args...)}, nil
}

func text(msg string) (Result, error) {
	return Result{Message: msg}, nil
}

func errorMessage(err error) string {
	var (
		parseErr   *ParseError
		notFound   *engine.NotFoundError
		badColumn  *engine.InvalidColumnError
		outOfRange *engine.RangeError
		notRunning *engine.NotInitializedError
	)
	switch {
	case errors.As(err, &parseErr):
		return "Invalid arguments: " + parseErr.Error()
	case errors.As(err, &notFound):
		return fmt.Sprintf("Song %q is not in the library", notFound.Song)
	case errors.As(err, &badColumn):
		return fmt.Sprintf("Unknown column %q; type \"columns\" for a list", badColumn.Name)
	case errors.As(err, &outOfRange):
		return rangeMessage(outOfRange)
	case errors.As(err, &notRunning):
		return fmt.Sprintf("Cannot %s: %s", notRunning.Op, notRunning.Reason)
	}
	return "Error: " + err.Error()
}

func rangeMessage(e *engine.RangeError) string {
	if e.What == "time" {
		if e.Max <= 0 {
			return fmt.Sprintf("Time %s is before the start of the song", song.FormatSeconds(int(e.Value)))
		}
		return fmt.Sprintf("Time must be between 0:00 and %s", song.FormatSeconds(int(e.Max)))
	}
	return fmt.Sprintf("%s must be between %g and %g", capitalize(e.What), e.Min, e.Max-1)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// listing renders a header followed by one song per line.
func listing(header string, songs []*song.Song) string {
	lines := lo.Map(songs, func(s *song.Song, _ int) string { return "  " + s.String() })
	return header + "\n" + strings.Join(lines, "\n")
}

// resolve finds the one song args refers to. When there is no single match
// it returns a message listing the candidates instead.
func (d *Dispatcher) resolve(args string) (*song.Song, string, error) {
	q, err := ParseQuery(args)
	if err != nil {
		return nil, "", err
	}
	matched, guessed, err := d.Engine.Search(q, d.Guesses)
	if err != nil {
		return nil, "", err
	}

	switch {
	case len(matched) == 1:
		return matched[0], "", nil
	case len(matched) > 1:
		return nil, listing("Multiple matches found:", matched), nil
	case len(guessed) > 0:
		return nil, listing("No matching songs found; did you mean:", guessed), nil
	}
	return nil, "No matching songs found", nil
}

func (d *Dispatcher) current(op string) (*song.Song, error) {
	cur := d.Engine.CurrentSong()
	if cur == nil {
		return nil, &engine.NotInitializedError{Op: op, Reason: "nothing is playing"}
	}
	return cur, nil
}

func (d *Dispatcher) skip() (Result, error) {
	next, err := d.Engine.NextSong()
	if err != nil {
		return Result{}, err
	}
	if next == nil {
		return text("Reached the end of the library")
	}
	return Result{Next: next}, nil
}

func (d *Dispatcher) back() (Result, error) {
	prev := d.Engine.LastSong()
	if prev == nil {
		return text("Already at the first song")
	}
	return Result{Next: prev}, nil
}

func (d *Dispatcher) delete(args string) (Result, error) {
	opt, rest := cutOption(args, "-perm")
	s, msg, err := d.resolve(rest)
	if s == nil {
		return Result{Message: msg}, err
	}
	fromDisk := opt != ""

	playing := s.Equal(d.Player.Current())
	if playing {
		d.Player.Stop()
	}

	err = d.Engine.Delete(s, fromDisk)
	var notFound *engine.NotFoundError
	if errors.As(err, &notFound) {
		return Result{}, err
	}

	res := Result{Message: fmt.Sprintf("Deleted %q", s)}
	if fromDisk && err == nil {
		res.Message += " from disk"
	}
	if err != nil {
		res.Message += "; " + errorMessage(err)
	}
	if playing && d.Engine.IsRunning() {
		next, err := d.Engine.NextSong()
		if err != nil {
			return res, err
		}
		res.Next = next
	}
	return res, nil
}

func (d *Dispatcher) next(args string) (Result, error) {
	s, msg, err := d.resolve(args)
	if s == nil {
		return Result{Message: msg}, err
	}
	if err := d.Engine.AddToFrontOfQueue(s); err != nil {
		return Result{}, err
	}
	return message("Playing %q next", s)
}

func (d *Dispatcher) jump(args string) (Result, error) {
	s, msg, err := d.resolve(args)
	if s == nil {
		return Result{Message: msg}, err
	}
	next, err := d.Engine.JumpToSong(s)
	if err != nil {
		return Result{}, err
	}
	return Result{Next: next}, nil
}

func (d *Dispatcher) repeat() (Result, error) {
	cur, err := d.current("repeat")
	if err != nil {
		return Result{}, err
	}
	if err := d.Engine.AddToFrontOfQueue(cur); err != nil {
		return Result{}, err
	}
	return message("%q will play again", cur)
}

func (d *Dispatcher) restart() (Result, error) {
	if err := d.Engine.JumpToTime(0, nil); err != nil {
		return Result{}, err
	}
	return message("Restarted %q", d.Player.Current())
}

func (d *Dispatcher) time(args string) (Result, error) {
	if args == "" {
		t, err := d.Engine.CurrentTime()
		if err != nil {
			return Result{}, err
		}
		cur := d.Player.Current()
		return message("%s / %s", song.FormatSeconds(int(t)), song.FormatSeconds(cur.Length))
	}
	t, err := parseSeconds(args)
	if err != nil {
		return Result{}, err
	}
	if err := d.Engine.JumpToTime(t, nil); err != nil {
		return Result{}, err
	}
	return message("Jumped to %s", song.FormatSeconds(int(t)))
}

func (d *Dispatcher) seek(args string, dir float64) (Result, error) {
	n := float64(DefaultSeek)
	if args != "" {
		v, err := parseSeconds(args)
		if err != nil {
			return Result{}, err
		}
		n = v
	}
	now, err := d.Engine.CurrentTime()
	if err != nil {
		return Result{}, err
	}
	t := max(now+dir*n, 0)
	if err := d.Engine.JumpToTime(t, nil); err != nil {
		return Result{}, err
	}
	return message("Jumped to %s", song.FormatSeconds(int(t)))
}

func (d *Dispatcher) queue(args string) (Result, error) {
	if args == "" {
		queued := d.Engine.QueuedSongs()
		if len(queued) == 0 {
			return text("Queue is empty")
		}
		return text(listing("Queue:", queued))
	}
	s, msg, err := d.resolve(args)
	if s == nil {
		return Result{Message: msg}, err
	}
	if err := d.Engine.AddToQueue(s); err != nil {
		return Result{}, err
	}
	return message("Added %q to the queue", s)
}

func (d *Dispatcher) dequeue(args string) (Result, error) {
	opt, rest := cutOption(args, "-all")
	s, msg, err := d.resolve(rest)
	if s == nil {
		return Result{Message: msg}, err
	}
	all := opt != ""
	if !d.Engine.RemoveFromQueue(s, all) {
		return message("%q is not in the queue", s)
	}
	if all {
		return message("Removed every %q from the queue", s)
	}
	return message("Removed %q from the queue", s)
}

func (d *Dispatcher) context(args string) (Result, error) {
	opt, rest := cutOption(args, "-prev", "-next")
	n := DefaultContext
	if rest != "" {
		v, err := parseCount(rest)
		if err != nil {
			return Result{}, err
		}
		if v < 0 {
			return Result{}, &engine.RangeError{What: "count", Value: float64(v), Min: 0, Max: float64(len(d.Engine.Songs()) + 1)}
		}
		n = v
	}
	cur, err := d.current("show context")
	if err != nil {
		return Result{}, err
	}

	var prev, next []*song.Song
	if opt != "-next" {
		if prev, err = d.Engine.PrevLibrarySongs(n, cur); err != nil {
			return Result{}, err
		}
	}
	if opt != "-prev" {
		if next, err = d.Engine.NextLibrarySongs(n, cur); err != nil {
			return Result{}, err
		}
	}

	var lines []string
	for _, s := range prev {
		lines = append(lines, "  "+s.String())
	}
	lines = append(lines, "> "+cur.String())
	for _, s := range next {
		lines = append(lines, "  "+s.String())
	}
	return text(strings.Join(lines, "\n"))
}

func (d *Dispatcher) sort(args string) (Result, error) {
	opt, rest := cutOption(args, "-reverse")
	if rest == "" {
		return Result{}, &ParseError{Reason: "no column given"}
	}
	col, err := song.ParseColumn(rest)
	if err != nil {
		return Result{}, err
	}
	reverse := opt != ""
	if err := d.Engine.Sort(col, reverse); err != nil {
		return Result{}, err
	}
	if reverse {
		return message("Sorted the library by %s, descending", col)
	}
	return message("Sorted the library by %s", col)
}

func (d *Dispatcher) search(args string) (Result, error) {
	q, err := ParseQuery(args)
	if err != nil {
		return Result{}, err
	}
	matched, guessed, err := d.Engine.Search(q, d.Guesses)
	if err != nil {
		return Result{}, err
	}
	switch {
	case len(matched) > 0:
		return text(listing(fmt.Sprintf("Found %d:", len(matched)), matched))
	case len(guessed) > 0:
		return text(listing("No matching songs found; did you mean:", guessed))
	}
	return text("No matching songs found")
}

func (d *Dispatcher) tag(args string) (Result, error) {
	cur, err := d.current("tag")
	if err != nil {
		return Result{}, err
	}
	q, err := ParseQuery(args)
	if err != nil {
		return Result{}, err
	}
	var f song.Fields
	for c, v := range q {
		if err := f.Set(c, v); err != nil {
			return Result{}, &ParseError{Input: args, Reason: err.Error(), Err: err}
		}
	}
	if err := cur.SetTags(f, d.TagWriter); err != nil {
		return Result{}, err
	}
	return message("Tagged %q", cur)
}

func (d *Dispatcher) lyrics() (Result, error) {
	if d.Lyrics == nil {
		return text("Lyrics are disabled")
	}
	cur, err := d.current("show lyrics")
	if err != nil {
		return Result{}, err
	}
	res, err := d.Lyrics.Fetch(d.ctx, cur)
	if err != nil {
		return Result{}, fmt.Errorf("lyrics lookup failed: %w", err)
	}
	lines := res.Text()
	if lines == "" {
		return message("No lyrics found for %q", cur)
	}
	return message("Lyrics for %q:\n\n%s", cur, lines)
}

func (d *Dispatcher) volume(args string) (Result, error) {
	if args == "" {
		return message("Volume: %d", d.Player.Volume())
	}
	v, err := parseCount(args)
	if err != nil {
		return Result{}, err
	}
	if v < 0 || v > player.MaxVolume {
		return Result{}, &engine.RangeError{What: "volume", Value: float64(v), Min: 0, Max: player.MaxVolume + 1}
	}
	d.Player.SetVolume(v)
	return message("Volume: %d", v)
}

func (d *Dispatcher) pause() (Result, error) {
	if d.Player.Current() == nil {
		return Result{}, &engine.NotInitializedError{Op: "pause", Reason: "nothing is playing"}
	}
	if d.Player.Paused() {
		return text("Already paused")
	}
	d.Player.Pause()
	return text("Paused")
}

func (d *Dispatcher) unpause() (Result, error) {
	if !d.Player.Paused() {
		return text("Not paused")
	}
	d.Player.Play()
	return text("Unpaused")
}
