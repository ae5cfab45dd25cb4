package lyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"termplay/internal/song"
)

func mkSong(title, artist, album string, length time.Duration) *song.Song {
	return song.New("/music/x.mp3", song.Fields{Title: title, Artist: artist, Album: album}, length, time.Time{})
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantSynced string
		wantPlain  string
		wantErr    bool
	}{
		{
			name:   "synced and plain lyrics",
			status: http.StatusOK,
			body: `{
				"syncedLyrics": "[00:12.00]Hello world",
				"plainLyrics": "Hello world"
			}`,
			wantSynced: "[00:12.00]Hello world",
			wantPlain:  "Hello world",
		},
		{
			name:   "plain only",
			status: http.StatusOK,
			body: `{
				"syncedLyrics": "",
				"plainLyrics": "Just plain text"
			}`,
			wantPlain: "Just plain text",
		},
		{
			name:   "no lyrics",
			status: http.StatusOK,
			body:   `{"syncedLyrics": "", "plainLyrics": ""}`,
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"code":404,"name":"NotFoundError","message":"Failed to find specified track"}`,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `internal server error`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != "termplay/1.0" {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient()
			c.apiURL = srv.URL

			result, err := c.Fetch(context.Background(), mkSong("Title", "Artist", "Album", 0))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Synced != tt.wantSynced {
				t.Errorf("Synced = %q, want %q", result.Synced, tt.wantSynced)
			}
			if result.Plain != tt.wantPlain {
				t.Errorf("Plain = %q, want %q", result.Plain, tt.wantPlain)
			}
		})
	}
}

func TestFetchQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("artist_name"); got != "The Beatles" {
			t.Errorf("artist_name = %q, want %q", got, "The Beatles")
		}
		if got := q.Get("track_name"); got != "Let It Be" {
			t.Errorf("track_name = %q, want %q", got, "Let It Be")
		}
		if got := q.Get("album_name"); got != "Let It Be" {
			t.Errorf("album_name = %q, want %q", got, "Let It Be")
		}
		if got := q.Get("duration"); got != "243" {
			t.Errorf("duration = %q, want %q", got, "243")
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient()
	c.apiURL = srv.URL

	c.Fetch(context.Background(), mkSong("Let It Be", "The Beatles", "Let It Be", 243*time.Second))
}

func TestFetchOmitsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for _, key := range []string{"artist_name", "album_name", "duration"} {
			if q.Has(key) {
				t.Errorf("%s should be omitted, got %q", key, q.Get(key))
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient()
	c.apiURL = srv.URL

	if _, err := c.Fetch(context.Background(), mkSong("Untitled", "", "", 0)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResultText(t *testing.T) {
	tests := []struct {
		name string
		in   Result
		want string
	}{
		{"plain wins", Result{Plain: "Hello\nworld\n", Synced: "[00:01.00]x"}, "Hello\nworld"},
		{"synced stripped", Result{Synced: "[00:12.00]Hello\n[00:15.50] world\n[01:02.00][01:30.00]again"}, "Hello\nworld\nagain"},
		{"empty", Result{}, ""},
	}
	for _, tt := range tests {
		if got := tt.in.Text(); got != tt.want {
			t.Errorf("%s: Text() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
