package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"termplay/internal/downloader"
	"termplay/internal/engine"
	"termplay/internal/logger"
	"termplay/internal/lyrics"
	"termplay/internal/player"
	"termplay/internal/song"
)

type fixture struct {
	d       *Dispatcher
	e       *engine.Engine
	p       *player.Silent
	removed []string
}

func mkSong(title, artist string, year int) *song.Song {
	path := "/music/" + song.FileName(title, artist, ".mp3")
	return song.New(path, song.Fields{Title: title, Artist: artist, Year: year}, 3*time.Minute, time.Time{})
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	songs := []*song.Song{
		mkSong("Hello", "Adele", 2015),
		mkSong("Hello Again", "Neil Diamond", 1980),
		mkSong("One More Time", "Daft Punk", 2000),
		mkSong("Digital Love", "Daft Punk", 2001),
		mkSong("Rolling in the Deep", "Adele", 2010),
	}
	log := logger.New(false)
	f := &fixture{p: player.NewSilent()}
	f.e = engine.New(songs, f.p, log)
	f.e.RemoveFile = func(path string) error {
		f.removed = append(f.removed, path)
		return nil
	}
	f.d = New(context.Background(), f.e, f.p, log)

	first, err := f.e.FirstSong()
	if err != nil {
		t.Fatal(err)
	}
	f.play(first)
	return f
}

func (f *fixture) play(s *song.Song) {
	f.p.Load(s)
	f.p.Play()
}

// run dispatches line and plays the song it returns, like the control loop.
func (f *fixture) run(line string) Result {
	res := f.d.Dispatch(line)
	if res.Next != nil {
		f.play(res.Next)
	}
	return res
}

func queueTitles(e *engine.Engine) []string {
	var out []string
	for _, s := range e.QueuedSongs() {
		out = append(out, s.Title)
	}
	return out
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		in      string
		want    engine.Query
		wantErr bool
	}{
		{"hello", engine.Query{song.Title: "hello"}, false},
		{"  rolling in  the deep ", engine.Query{song.Title: "rolling in the deep"}, false},
		{"hello - adele", engine.Query{song.Title: "hello", song.Artist: "adele"}, false},
		{`-artist "daft punk" -year 2001`, engine.Query{song.Artist: "daft punk", song.Year: "2001"}, false},
		{`-date-modified "2024-01-02"`, engine.Query{song.DateModified: "2024-01-02"}, false},
		{`"-weird" title`, engine.Query{song.Title: "-weird title"}, false},
		{`-title "one more`, nil, true},
		{"-bpm 120", nil, true},
		{"-artist", nil, true},
		{"-artist adele -title", nil, true},
		{"", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseQuery(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseQuery(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("ParseQuery(%q) error should be *ParseError, got %T", tt.in, err)
			}
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseQuery(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for c, v := range tt.want {
			if got[c] != v {
				t.Errorf("ParseQuery(%q)[%s] = %q, want %q", tt.in, c, got[c], v)
			}
		}
	}
}

func TestParseQueryUnknownColumn(t *testing.T) {
	_, err := ParseQuery("-bpm 120")
	var colErr *engine.InvalidColumnError
	if !errors.As(err, &colErr) || colErr.Name != "bpm" {
		t.Errorf("error = %v, want wrapped InvalidColumnError for bpm", err)
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"83", 83, false},
		{"2.5", 2.5, false},
		{"1:23", 83, false},
		{"0:05", 5, false},
		{"1:75", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSeconds(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSeconds(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSeconds(%q) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestSkipAndBack(t *testing.T) {
	f := newFixture(t)

	res := f.run("skip")
	if res.Next == nil || res.Next.Title != "Hello Again" {
		t.Fatalf("skip Next = %v, want Hello Again", res.Next)
	}
	res = f.run("BACK")
	if res.Next == nil || res.Next.Title != "Hello" {
		t.Fatalf("back Next = %v, want Hello", res.Next)
	}
	if res := f.run("back"); res.Next != nil || res.Message != "Already at the first song" {
		t.Errorf("back at start = %+v", res)
	}

	for i := 0; i < 4; i++ {
		f.run("skip")
	}
	res = f.run("skip")
	if res.Next != nil || res.Message != "Reached the end of the library" {
		t.Errorf("skip past end = %+v", res)
	}
	if f.e.IsRunning() {
		t.Error("engine should stop after the last song")
	}
}

func TestResolveAmbiguity(t *testing.T) {
	f := newFixture(t)

	res := f.run("next hello")
	if !strings.HasPrefix(res.Message, "Multiple matches found:") ||
		!strings.Contains(res.Message, "Hello - Adele") ||
		!strings.Contains(res.Message, "Hello Again - Neil Diamond") {
		t.Errorf("next hello = %q, want both songs listed", res.Message)
	}
	if q := queueTitles(f.e); len(q) != 0 {
		t.Errorf("queue = %v, an ambiguous reference must not change it", q)
	}

	res = f.run("delete hello")
	if !strings.HasPrefix(res.Message, "Multiple matches found:") {
		t.Errorf("delete hello = %q, want a listing", res.Message)
	}
	if n := len(f.e.Songs()); n != 5 {
		t.Errorf("library has %d songs after an ambiguous delete, want 5", n)
	}

	res = f.run(`next -title "Hello" -artist adele`)
	if res.Message != `Playing "Hello - Adele" next` {
		t.Errorf("narrowed next = %q", res.Message)
	}
	f.e.RemoveFromQueue(mkSong("Hello", "Adele", 2015), true)

	res = f.run("next -artist daft")
	if !strings.HasPrefix(res.Message, "Multiple matches found:") ||
		!strings.Contains(res.Message, "One More Time - Daft Punk") ||
		!strings.Contains(res.Message, "Digital Love - Daft Punk") {
		t.Errorf("ambiguous next = %q", res.Message)
	}
	if q := queueTitles(f.e); len(q) != 0 {
		t.Errorf("queue = %v, an ambiguous reference must not change it", q)
	}

	res = f.run("next digtal lvoe")
	if !strings.HasPrefix(res.Message, "No matching songs found; did you mean:") ||
		!strings.Contains(res.Message, "Digital Love") {
		t.Errorf("misspelled next = %q", res.Message)
	}
	if q := queueTitles(f.e); len(q) != 0 {
		t.Errorf("queue = %v, an unmatched reference must not change it", q)
	}

	res = f.run(`next -title "unterminated`)
	if !strings.HasPrefix(res.Message, "Invalid arguments") {
		t.Errorf("bad quote = %q", res.Message)
	}
}

func TestQueueCommands(t *testing.T) {
	f := newFixture(t)

	if res := f.run("queue"); res.Message != "Queue is empty" {
		t.Errorf("empty queue = %q", res.Message)
	}
	f.run("queue one more time")
	f.run("queue digital love - daft punk")
	f.run("queue one more")
	f.run("next rolling")

	want := "Queue:\n  Rolling in the Deep - Adele\n  One More Time - Daft Punk\n  Digital Love - Daft Punk\n  One More Time - Daft Punk"
	if res := f.run("queue"); res.Message != want {
		t.Errorf("queue =\n%s\nwant\n%s", res.Message, want)
	}

	if res := f.run("dequeue one more time"); res.Message != `Removed "One More Time - Daft Punk" from the queue` {
		t.Errorf("dequeue = %q", res.Message)
	}
	if got := queueTitles(f.e); strings.Join(got, ",") != "Rolling in the Deep,Digital Love,One More Time" {
		t.Errorf("queue after dequeue = %v", got)
	}
	f.run("queue one more time")
	f.run("dequeue -all one more time")
	if got := queueTitles(f.e); strings.Join(got, ",") != "Rolling in the Deep,Digital Love" {
		t.Errorf("queue after dequeue -all = %v", got)
	}
	if res := f.run("dequeue hello again"); res.Message != `"Hello Again - Neil Diamond" is not in the queue` {
		t.Errorf("dequeue missing = %q", res.Message)
	}

	if res := f.run("skip"); res.Next == nil || res.Next.Title != "Rolling in the Deep" {
		t.Errorf("skip should play the queue head, got %v", res.Next)
	}
}

func TestJumpKeepsQueue(t *testing.T) {
	f := newFixture(t)
	f.run("queue hello again")

	res := f.run(`jump -artist adele -title "rolling in"`)
	if res.Next == nil || res.Next.Title != "Rolling in the Deep" {
		t.Fatalf("jump Next = %v", res.Next)
	}
	if got := queueTitles(f.e); len(got) != 1 || got[0] != "Hello Again" {
		t.Errorf("queue after jump = %v", got)
	}
}

func TestRepeat(t *testing.T) {
	f := newFixture(t)
	if res := f.run("repeat"); res.Message != `"Hello - Adele" will play again` {
		t.Errorf("repeat = %q", res.Message)
	}
	if res := f.run("skip"); res.Next == nil || res.Next.Title != "Hello" {
		t.Errorf("skip after repeat = %v", res.Next)
	}
}

func TestDeletePlayingSong(t *testing.T) {
	f := newFixture(t)

	res := f.run("delete -perm hello - adele")
	if res.Message != `Deleted "Hello - Adele" from disk` {
		t.Errorf("delete message = %q", res.Message)
	}
	if res.Next == nil || res.Next.Title != "Hello Again" {
		t.Errorf("deleting the playing song should move on, got %v", res.Next)
	}
	if len(f.removed) != 1 || f.removed[0] != "/music/Hello - Adele.mp3" {
		t.Errorf("removed files = %v", f.removed)
	}
	if n := len(f.e.Songs()); n != 4 {
		t.Errorf("library has %d songs, want 4", n)
	}

	res = f.run("delete digital love")
	if res.Message != `Deleted "Digital Love - Daft Punk"` || res.Next != nil {
		t.Errorf("delete other song = %+v", res)
	}
	if len(f.removed) != 1 {
		t.Errorf("delete without -perm removed files: %v", f.removed)
	}
}

func TestTimeAndSeek(t *testing.T) {
	f := newFixture(t)
	f.p.Pause()

	tests := []struct {
		line string
		want string
	}{
		{"time 1:30", "Jumped to 1:30"},
		{"time", "1:30 / 3:00"},
		{"forward", "Jumped to 1:35"},
		{"backward 20", "Jumped to 1:15"},
		{"backward 500", "Jumped to 0:00"},
		{"time 500", "Time must be between 0:00 and 3:00"},
		{"forward 600", "Time must be between 0:00 and 3:00"},
		{"time soon", "Invalid arguments: could not parse \"soon\": expected seconds or m:ss"},
		{"time 0:42", "Jumped to 0:42"},
		{"restart", `Restarted "Hello - Adele"`},
		{"time", "0:00 / 3:00"},
	}
	for _, tt := range tests {
		if res := f.run(tt.line); res.Message != tt.want {
			t.Errorf("%s = %q, want %q", tt.line, res.Message, tt.want)
		}
	}
}

func TestVolumeAndPause(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		line string
		want string
	}{
		{"volume", "Volume: 100"},
		{"volume 40", "Volume: 40"},
		{"volume", "Volume: 40"},
		{"volume 101", "Volume must be between 0 and 100"},
		{"volume loud", `Invalid arguments: could not parse "loud": expected a whole number`},
		{"pause", "Paused"},
		{"pause", "Already paused"},
		{"unpause", "Unpaused"},
		{"unpause", "Not paused"},
	}
	for _, tt := range tests {
		if res := f.run(tt.line); res.Message != tt.want {
			t.Errorf("%s = %q, want %q", tt.line, res.Message, tt.want)
		}
	}
	if f.p.Volume() != 40 {
		t.Errorf("player volume = %d", f.p.Volume())
	}
}

func TestSortCommand(t *testing.T) {
	f := newFixture(t)
	f.run("queue digital love")

	if res := f.run("sort -reverse year"); res.Message != "Sorted the library by year, descending" {
		t.Errorf("sort = %q", res.Message)
	}
	songs := f.e.Songs()
	if songs[0].Title != "Hello" || songs[1].Title != "Rolling in the Deep" || songs[4].Title != "Hello Again" {
		t.Errorf("sorted library starts %s, %s and ends %s", songs[0].Title, songs[1].Title, songs[4].Title)
	}
	if got := queueTitles(f.e); len(got) != 1 || got[0] != "Digital Love" {
		t.Errorf("queue after sort = %v", got)
	}

	if res := f.run("sort date modified"); res.Message != "Sorted the library by date modified" {
		t.Errorf("sort date modified = %q", res.Message)
	}
	if res := f.run("sort bpm"); res.Message != `Unknown column "bpm"; type "columns" for a list` {
		t.Errorf("sort bpm = %q", res.Message)
	}
	if res := f.run("sort"); !strings.HasPrefix(res.Message, "Invalid arguments") {
		t.Errorf("sort without column = %q", res.Message)
	}
}

func TestContext(t *testing.T) {
	f := newFixture(t)
	f.run("jump one more time")

	tests := []struct {
		line string
		want string
	}{
		{"context 1", "  Hello Again - Neil Diamond\n> One More Time - Daft Punk\n  Digital Love - Daft Punk"},
		{"context -next 5", "> One More Time - Daft Punk\n  Digital Love - Daft Punk\n  Rolling in the Deep - Adele"},
		{"context -prev", "  Hello - Adele\n  Hello Again - Neil Diamond\n> One More Time - Daft Punk"},
		{"context -1", "Count must be between 0 and 5"},
	}
	for _, tt := range tests {
		if res := f.run(tt.line); res.Message != tt.want {
			t.Errorf("%s =\n%s\nwant\n%s", tt.line, res.Message, tt.want)
		}
	}
}

func TestSearchCommand(t *testing.T) {
	f := newFixture(t)

	res := f.run("search -artist adele")
	if res.Message != "Found 2:\n  Hello - Adele\n  Rolling in the Deep - Adele" {
		t.Errorf("search = %q", res.Message)
	}
	if res := f.run("search zzzzzz"); res.Message != "No matching songs found" {
		t.Errorf("search nothing = %q", res.Message)
	}
	if res := f.run("info"); !strings.Contains(res.Message, "TITLE: Hello") || !strings.Contains(res.Message, "LENGTH: 3:00") {
		t.Errorf("info = %q", res.Message)
	}
}

func TestTagCommand(t *testing.T) {
	f := newFixture(t)

	var written []song.Fields
	f.d.TagWriter = func(_ string, fields song.Fields) error {
		written = append(written, fields)
		return nil
	}

	if res := f.run(`tag -album "25" -genre soul`); res.Message != `Tagged "Hello - Adele"` {
		t.Errorf("tag = %q", res.Message)
	}
	cur := f.e.CurrentSong()
	if cur.Album != "25" || cur.Genre != "soul" || len(written) != 1 {
		t.Errorf("song = %+v, writes %d", cur.Fields, len(written))
	}
	if res := f.run("tag -length 10"); !strings.HasPrefix(res.Message, "Invalid arguments") {
		t.Errorf("tag length = %q", res.Message)
	}
}

func TestHelpAndUnknown(t *testing.T) {
	f := newFixture(t)

	if res := f.run("help"); !strings.Contains(res.Message, "dequeue [-all] <song>") {
		t.Errorf("help is missing commands:\n%s", res.Message)
	}
	if res := f.run("help JUMP"); !strings.HasPrefix(res.Message, "jump <song>") {
		t.Errorf("help jump = %q", res.Message)
	}
	if res := f.run("help frobnicate"); !strings.HasPrefix(res.Message, "Unrecognized command") {
		t.Errorf("help frobnicate = %q", res.Message)
	}
	if res := f.run("frobnicate now"); res.Message != `Unrecognized command "frobnicate"; type "help" for a list of commands` {
		t.Errorf("unknown command = %q", res.Message)
	}
	if res := f.run("columns"); res.Message != "Columns: title, artist, album, genre, year, length, date modified" {
		t.Errorf("columns = %q", res.Message)
	}
	if res := f.run("   "); res != (Result{}) {
		t.Errorf("blank line = %+v", res)
	}
	if res := f.run("stop"); !res.Quit {
		t.Error("stop should quit")
	}
}

type fakeDownload struct {
	title string
	done  bool
	path  string
	err   error
	calls int
}

func (d *fakeDownload) Info() downloader.TaskInfo {
	status := downloader.StatusRunning
	if d.done {
		status = downloader.StatusCompleted
	}
	return downloader.TaskInfo{Title: d.title, Status: status}
}
func (d *fakeDownload) Done() bool { return d.done }
func (d *fakeDownload) Cancel()    { d.calls++ }
func (d *fakeDownload) Result() (string, error) {
	return d.path, d.err
}

type fakeFetcher struct {
	videos  []downloader.Video
	queries []string
	started []downloader.Video
	task    *fakeDownload
}

func (f *fakeFetcher) Search(_ context.Context, query string, limit int) ([]downloader.Video, error) {
	f.queries = append(f.queries, query)
	return f.videos[:min(limit, len(f.videos))], nil
}

func (f *fakeFetcher) Fetch(_ context.Context, v downloader.Video) Download {
	f.started = append(f.started, v)
	f.task = &fakeDownload{title: v.Title}
	return f.task
}

func TestDownload(t *testing.T) {
	f := newFixture(t)

	if res := f.run("download anything"); res.Message != "Downloads are disabled" {
		t.Errorf("download without fetcher = %q", res.Message)
	}

	fetcher := &fakeFetcher{videos: []downloader.Video{
		{ID: "a", Title: "Daft Punk - Aerodynamic", Channel: "Daft Punk", Duration: 212},
		{ID: "b", Title: "Aerodynamic (Live)", Channel: "fan"},
	}}
	f.d.Fetcher = fetcher

	res := f.run("download aerodynamic")
	if !strings.Contains(res.Message, "1. Daft Punk - Aerodynamic [Daft Punk] (3:32)") ||
		!strings.Contains(res.Message, "2. Aerodynamic (Live) [fan]") {
		t.Errorf("download search = %q", res.Message)
	}
	if res := f.run("download 3"); res.Message != "Choice must be between 1 and 2" {
		t.Errorf("download 3 = %q", res.Message)
	}

	if res := f.run("download 1"); res.Message != `Downloading "Daft Punk - Aerodynamic" in the background` {
		t.Errorf("download 1 = %q", res.Message)
	}
	if len(fetcher.started) != 1 || fetcher.started[0].ID != "a" {
		t.Fatalf("started = %+v", fetcher.started)
	}
	if res := f.run("download -status"); !strings.Contains(res.Message, "running") {
		t.Errorf("status = %q", res.Message)
	}
	if _, _, ok := f.d.FinishedDownload(); ok {
		t.Error("nothing should be reported while downloading")
	}

	f.run("download aero")
	if res := f.run("download 2"); !strings.HasPrefix(res.Message, "A download is already in progress") {
		t.Errorf("second download = %q", res.Message)
	}

	if res := f.run("download -cancel"); res.Message != `Cancelling download of "Daft Punk - Aerodynamic"` || fetcher.task.calls != 1 {
		t.Errorf("cancel = %q", res.Message)
	}

	fetcher.task.done = true
	fetcher.task.path = "/music/Aerodynamic - Daft Punk.mp3"
	path, msg, ok := f.d.FinishedDownload()
	if !ok || path != fetcher.task.path || msg != "Downloaded Aerodynamic - Daft Punk.mp3" {
		t.Errorf("FinishedDownload() = %q, %q, %v", path, msg, ok)
	}
	if _, _, ok := f.d.FinishedDownload(); ok {
		t.Error("a finished download should be reported once")
	}
	if res := f.run("download -cancel"); res.Message != "No download in progress" {
		t.Errorf("cancel after finish = %q", res.Message)
	}
}

func TestDownloadFailure(t *testing.T) {
	f := newFixture(t)
	fetcher := &fakeFetcher{videos: []downloader.Video{{ID: "a", Title: "Gone"}}}
	f.d.Fetcher = fetcher

	f.run("download gone")
	f.run("download 1")
	fetcher.task.done = true
	fetcher.task.err = downloader.ErrCancelled

	path, msg, ok := f.d.FinishedDownload()
	if !ok || path != "" || msg != `Download of "Gone" cancelled` {
		t.Errorf("FinishedDownload() = %q, %q, %v", path, msg, ok)
	}
}

type fakeLyrics map[string]lyrics.Result

func (f fakeLyrics) Fetch(_ context.Context, s *song.Song) (lyrics.Result, error) {
	if s.Title == "Broken" {
		return lyrics.Result{}, errors.New("lrclib returned status 500")
	}
	return f[s.Title], nil
}

func TestLyricsCommand(t *testing.T) {
	f := newFixture(t)

	if res := f.run("lyrics"); res.Message != "Lyrics are disabled" {
		t.Errorf("lyrics without fetcher = %q", res.Message)
	}

	f.d.Lyrics = fakeLyrics{"Hello": {Synced: "[00:01.00]Hello, it's me"}}
	if res := f.run("lyrics"); res.Message != "Lyrics for \"Hello - Adele\":\n\nHello, it's me" {
		t.Errorf("lyrics = %q", res.Message)
	}

	f.run("skip")
	if res := f.run("lyrics"); res.Message != `No lyrics found for "Hello Again - Neil Diamond"` {
		t.Errorf("lyrics without result = %q", res.Message)
	}
}
