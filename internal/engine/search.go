package engine

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/samber/lo"

	"termplay/internal/song"
)

// DefaultGuesses is the number of fuzzy guesses Search returns by default.
const DefaultGuesses = 5

// Query maps columns to the text their values must start with.
type Query map[song.Column]string

// Search looks songs up in two phases. A song matches when every queried
// column either has no value on the song or starts with the query text,
// ignoring case. Only when nothing matches are the k closest songs returned
// as guesses, ranked by similarity.
func (e *Engine) Search(query Query, k int) (matched, guessed []*song.Song, err error) {
	for c := range query {
		if !slices.Contains(song.Columns, c) {
			return nil, nil, &InvalidColumnError{Name: string(c)}
		}
	}

	e.mu.Lock()
	library := slices.Clone(e.library)
	e.mu.Unlock()

	matched = lo.Filter(library, func(s *song.Song, _ int) bool {
		return matches(s, query)
	})
	if len(matched) > 0 {
		return matched, nil, nil
	}
	return nil, guess(library, query, k), nil
}

func matches(s *song.Song, query Query) bool {
	for c, q := range query {
		v, ok := s.Value(c)
		if !ok {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(v), strings.ToLower(q)) {
			return false
		}
	}
	return true
}

type candidate struct {
	song  *song.Song
	score float64
}

func guess(library []*song.Song, query Query, k int) []*song.Song {
	if k <= 0 {
		return nil
	}

	var candidates []candidate
	for _, s := range library {
		var score float64
		for c, q := range query {
			v, ok := s.Value(c)
			if !ok {
				continue
			}
			r := similarity(strings.ToLower(v), strings.ToLower(q))
			score += r * r
		}
		if score > 0 {
			candidates = append(candidates, candidate{song: s, score: score})
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return lo.Map(candidates, func(c candidate, _ int) *song.Song { return c.song })
}

// similarity scores value against query in [0, 1]. The value is compared both
// whole and cut to the query's length so that a close prefix ranks well.
func similarity(value, query string) float64 {
	r := ratio(value, query)
	n := utf8.RuneCountInString(query)
	if runes := []rune(value); len(runes) > n {
		r = max(r, ratio(string(runes[:n]), query))
	}
	return r
}

func ratio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
