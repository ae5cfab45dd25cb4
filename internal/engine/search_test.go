package engine

import (
	"errors"
	"testing"
	"time"

	"termplay/internal/song"
)

func mkTagged(title, artist string) *song.Song {
	return song.New("/music/"+song.FileName(title, artist, ".mp3"),
		song.Fields{Title: title, Artist: artist}, 3*time.Minute, time.Time{})
}

func TestSearchExact(t *testing.T) {
	library := []*song.Song{
		mkTagged("Hello", "Adele"),
		mkTagged("Hello Again", "Neil Diamond"),
		mkTagged("Untitled", ""),
		mkTagged("Time", "Pink Floyd"),
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"prefix ignoring case", Query{song.Title: "HEL"}, []string{"Hello", "Hello Again"}},
		{"every column must match", Query{song.Title: "hel", song.Artist: "neil"}, []string{"Hello Again"}},
		{"missing value matches anything", Query{song.Artist: "adele"}, []string{"Hello", "Untitled"}},
		{"whole title", Query{song.Title: "time"}, []string{"Time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(t, library)
			matched, guessed, err := e.Search(tt.query, DefaultGuesses)
			if err != nil {
				t.Fatal(err)
			}
			equalTitles(t, "matched", matched, tt.want...)
			if guessed != nil {
				t.Errorf("guessed = %v, want none when something matched", titles(guessed))
			}
		})
	}
}

func TestSearchSingleExactMatch(t *testing.T) {
	e, _ := newEngine(t, mkSongs("Foobar", "Bar", "Baz"))

	matched, guessed, err := e.Search(Query{song.Title: "foo"}, DefaultGuesses)
	if err != nil {
		t.Fatal(err)
	}
	equalTitles(t, "matched", matched, "Foobar")
	if len(guessed) != 0 {
		t.Errorf("guessed = %v, want none", titles(guessed))
	}
}

func TestSearchGuesses(t *testing.T) {
	e, _ := newEngine(t, mkSongs("Zzz", "Fxx", "Fob"))

	matched, guessed, err := e.Search(Query{song.Title: "foo"}, DefaultGuesses)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 0 {
		t.Errorf("matched = %v, want none", titles(matched))
	}
	// Zzz shares nothing with the query and is left out.
	equalTitles(t, "guessed", guessed, "Fob", "Fxx")
}

func TestSearchGuessLimit(t *testing.T) {
	e, _ := newEngine(t, mkSongs("Fob", "Fxx", "Fab", "Fox"))

	_, guessed, err := e.Search(Query{song.Title: "foo"}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(guessed) != 2 {
		t.Errorf("got %d guesses, want 2", len(guessed))
	}

	_, guessed, _ = e.Search(Query{song.Title: "foo"}, 0)
	if guessed != nil {
		t.Errorf("k = 0 should give no guesses, got %v", titles(guessed))
	}
}

func TestSearchInvalidColumn(t *testing.T) {
	e, _ := newEngine(t, mkSongs("A"))

	_, _, err := e.Search(Query{song.Column("mood"): "happy"}, DefaultGuesses)
	var colErr *InvalidColumnError
	if !errors.As(err, &colErr) {
		t.Fatalf("err = %v, want InvalidColumnError", err)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		value, query string
		want         float64
	}{
		{"foo", "foo", 1},
		{"zzz", "foo", 0},
		{"foobar", "foo", 1},
		{"fob", "foo", 2.0 / 3},
	}
	for _, tt := range tests {
		got := similarity(tt.value, tt.query)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.value, tt.query, got, tt.want)
		}
	}
}
