package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"termplay/internal/engine"
	"termplay/internal/song"
)

// ParseError is returned for malformed command arguments.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return e.Reason
	}
	return fmt.Sprintf("could not parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

type token struct {
	text   string
	quoted bool
}

func (t token) isFlag() bool {
	return !t.quoted && len(t.text) > 1 && t.text[0] == '-'
}

// tokenize splits s on whitespace. Double quotes group words into one token
// and must be balanced.
func tokenize(s string) ([]token, error) {
	var (
		tokens  []token
		cur     strings.Builder
		inQuote bool
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, token{text: cur.String(), quoted: quoted})
		}
		cur.Reset()
		quoted, started = false, false
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			quoted, started = true, true
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, &ParseError{Input: s, Reason: "unterminated quote"}
	}
	flush()
	return tokens, nil
}

// ParseQuery parses a song reference. It is either free text of the form
// "<title>" or "<title> - <artist>", or flags of the form
// -<column> <value> [-<column> <value> ...] where values may be quoted.
func ParseQuery(args string) (engine.Query, error) {
	tokens, err := tokenize(args)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &ParseError{Reason: "no song given"}
	}

	if !tokens[0].isFlag() {
		words := make([]string, len(tokens))
		for i, t := range tokens {
			words[i] = t.text
		}
		text := strings.Join(words, " ")
		if title, artist, ok := strings.Cut(text, " - "); ok {
			q := engine.Query{}
			if title = strings.TrimSpace(title); title != "" {
				q[song.Title] = title
			}
			if artist = strings.TrimSpace(artist); artist != "" {
				q[song.Artist] = artist
			}
			if len(q) == 0 {
				return nil, &ParseError{Input: args, Reason: "no title or artist given"}
			}
			return q, nil
		}
		return engine.Query{song.Title: text}, nil
	}

	q := engine.Query{}
	for i := 0; i < len(tokens); {
		t := tokens[i]
		if !t.isFlag() {
			return nil, &ParseError{Input: args, Reason: fmt.Sprintf("expected -<column> before %q", t.text)}
		}
		col, err := song.ParseColumn(t.text[1:])
		if err != nil {
			return nil, &ParseError{Input: args, Reason: err.Error(), Err: err}
		}

		j := i + 1
		var value []string
		for ; j < len(tokens) && !tokens[j].isFlag(); j++ {
			value = append(value, tokens[j].text)
		}
		if len(value) == 0 {
			return nil, &ParseError{Input: args, Reason: fmt.Sprintf("no value given for %s", t.text)}
		}
		q[col] = strings.Join(value, " ")
		i = j
	}
	return q, nil
}

// cutOption removes a leading option such as "-all" from args.
func cutOption(args string, options ...string) (opt, rest string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	for _, o := range options {
		if strings.EqualFold(first, o) {
			return o, strings.TrimSpace(rest)
		}
	}
	return "", strings.TrimSpace(args)
}

// parseSeconds accepts plain seconds ("83", "83.5") or m:ss ("1:23").
func parseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if m, sec, ok := strings.Cut(s, ":"); ok {
		mins, err1 := strconv.Atoi(m)
		secs, err2 := strconv.ParseFloat(sec, 64)
		if err1 != nil || err2 != nil || mins < 0 || secs < 0 || secs >= 60 {
			return 0, &ParseError{Input: s, Reason: "expected seconds or m:ss"}
		}
		return float64(mins)*60 + secs, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "expected seconds or m:ss", Err: err}
	}
	return v, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "expected a whole number", Err: err}
	}
	return n, nil
}
