//go:build !((linux && cgo) || windows || darwin)

package player

import "termplay/internal/logger"

// AudioAvailable indicates whether this build can produce sound.
// Speaker output needs cgo on linux.
const AudioAvailable = false

// NewDefault returns a silent driver that keeps time without sound.
func NewDefault(log *logger.Logger) Driver {
	log.Warn("Audio output is unavailable in this build; playing silently")
	return NewSilent()
}
