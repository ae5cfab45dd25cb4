// Package deezer looks tracks up in the Deezer catalog to complete the tags
// of downloaded songs.
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"termplay/internal/song"
)

// Track is one search result.
type Track struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// Client is a Deezer API client.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new Deezer client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://api.deezer.com",
	}
}

// Search queries the Deezer search API with the title, artist and album of
// f and returns matching tracks.
func (c *Client) Search(ctx context.Context, f song.Fields) ([]Track, error) {
	q := buildQuery(f)
	if q == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&limit=5", c.apiURL, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create deezer request: %w", err)
	}
	req.Header.Set("User-Agent", "termplay/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deezer search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("deezer search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode deezer response: %w", err)
	}

	if searchResp.Error != nil {
		return nil, fmt.Errorf("deezer API error: %s", searchResp.Error.Message)
	}

	return parseResults(searchResp.Data), nil
}

// Lookup returns the tags Deezer knows for f that f is missing. Only a
// result with the same title and artist counts as a match; without one the
// returned fields are empty.
func (c *Client) Lookup(ctx context.Context, f song.Fields) (song.Fields, error) {
	if f.Title == "" || f.Artist == "" {
		return song.Fields{}, nil
	}
	tracks, err := c.Search(ctx, song.Fields{Title: f.Title, Artist: f.Artist})
	if err != nil {
		return song.Fields{}, err
	}
	for _, t := range tracks {
		if strings.EqualFold(t.Title, f.Title) && strings.EqualFold(t.Artist, f.Artist) {
			return song.Fields{Album: t.Album}, nil
		}
	}
	return song.Fields{}, nil
}

func buildQuery(f song.Fields) string {
	escape := func(s string) string {
		return strings.ReplaceAll(s, "\"", "")
	}
	var parts []string
	if f.Title != "" {
		parts = append(parts, "track:\""+escape(f.Title)+"\"")
	}
	if f.Artist != "" {
		parts = append(parts, "artist:\""+escape(f.Artist)+"\"")
	}
	if f.Album != "" {
		parts = append(parts, "album:\""+escape(f.Album)+"\"")
	}
	return strings.Join(parts, " ")
}

func parseResults(items []trackItem) []Track {
	var results []Track
	for _, item := range items {
		title := item.TitleShort
		if title == "" {
			title = item.Title
		}
		results = append(results, Track{
			Title:    title,
			Artist:   item.Artist.Name,
			Album:    item.Album.Title,
			Duration: time.Duration(item.Duration) * time.Second,
		})
	}
	return results
}

// Deezer API response types

type searchResponse struct {
	Data  []trackItem `json:"data"`
	Error *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type trackItem struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	TitleShort string    `json:"title_short"`
	Duration   int       `json:"duration"`
	Artist     artist    `json:"artist"`
	Album      albumInfo `json:"album"`
}

type artist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type albumInfo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}
