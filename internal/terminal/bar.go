package terminal

import (
	"fmt"
	"strings"

	"termplay/internal/song"
)

const (
	maxBarWidth = 40
	minBarWidth = 10
)

// Bar renders playback progress as "[████░░░░] 1:23 / 3:45", fitted into
// width cells.
func Bar(elapsed, total, width int) string {
	times := fmt.Sprintf("%s / %s", song.FormatSeconds(elapsed), song.FormatSeconds(total))
	barWidth := min(max(width-len(times)-3, minBarWidth), maxBarWidth)

	filled := 0
	if total > 0 {
		filled = min(barWidth*max(elapsed, 0)/total, barWidth)
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "] " + times
}
