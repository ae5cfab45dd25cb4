package metadata

import (
	"regexp"
	"strings"
)

// Patterns to remove from YouTube titles
var titleCleanupPatterns = []*regexp.Regexp{
	// Parenthesized suffixes
	regexp.MustCompile(`(?i)\s*\(official\s+(music\s+)?video\)`),
	regexp.MustCompile(`(?i)\s*\(official\s+audio\)`),
	regexp.MustCompile(`(?i)\s*\(official\s+lyric\s+video\)`),
	regexp.MustCompile(`(?i)\s*\(official\s+visualizer\)`),
	regexp.MustCompile(`(?i)\s*\(lyrics?\)`),
	regexp.MustCompile(`(?i)\s*\(visual(?:izer)?\)`),
	regexp.MustCompile(`(?i)\s*\(audio\)`),
	regexp.MustCompile(`(?i)\s*\(hd\)`),
	regexp.MustCompile(`(?i)\s*\(hq\)`),
	regexp.MustCompile(`(?i)\s*\(4k\)`),
	regexp.MustCompile(`(?i)\s*\(explicit\)`),
	regexp.MustCompile(`(?i)\s*\(clean\)`),

	// Bracketed suffixes
	regexp.MustCompile(`(?i)\s*\[official\s+(music\s+)?video\]`),
	regexp.MustCompile(`(?i)\s*\[official\s+audio\]`),
	regexp.MustCompile(`(?i)\s*\[official\s+lyric\s+video\]`),
	regexp.MustCompile(`(?i)\s*\[official\s+visualizer\]`),
	regexp.MustCompile(`(?i)\s*\[lyrics?\]`),
	regexp.MustCompile(`(?i)\s*\[visual(?:izer)?\]`),
	regexp.MustCompile(`(?i)\s*\[audio\]`),
	regexp.MustCompile(`(?i)\s*\[hd\]`),
	regexp.MustCompile(`(?i)\s*\[hq\]`),
	regexp.MustCompile(`(?i)\s*\[4k\]`),
	regexp.MustCompile(`(?i)\s*\[explicit\]`),
	regexp.MustCompile(`(?i)\s*\[clean\]`),
}

// Patterns to extract featuring artists from the title
var featuringPattern = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring)\s+([^\)\]]+)[\)\]]`)

// Pattern to detect "VEVO" channel suffix in artist name
var vevoPattern = regexp.MustCompile(`(?i)vevo$`)

// Pattern for "Artist - Title" format (common in YouTube titles)
var artistTitleSeparator = regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`)

// NormalizeVideoTitle cleans a YouTube video title and channel name into a
// song title and artist, e.g. for naming a downloaded file.
func NormalizeVideoTitle(title, channel string) (string, string) {
	title = strings.TrimSpace(title)
	artist := strings.TrimSpace(channel)

	artist = vevoPattern.ReplaceAllString(artist, "")
	artist = strings.TrimSpace(artist)
	artist = strings.TrimSuffix(artist, " - Topic")

	if title == "" {
		return title, artist
	}

	for _, p := range titleCleanupPatterns {
		title = p.ReplaceAllString(title, "")
	}
	title = featuringPattern.ReplaceAllString(title, "")

	// "Artist - Title" in the video title wins over the channel name, which
	// is often a label or a fan upload.
	if m := artistTitleSeparator.FindStringSubmatch(title); m != nil {
		artist = strings.TrimSpace(m[1])
		title = strings.TrimSpace(m[2])
	}

	return strings.TrimSpace(title), strings.TrimSpace(artist)
}
