package metadata

import (
	"fmt"

	"termplay/internal/logger"
)

// ChainReader tries multiple readers in order, returning the tags from the
// first one that succeeds.
type ChainReader struct {
	readers []Reader
	logger  *logger.Logger
}

// NewChainReader creates a ChainReader that queries readers in order.
func NewChainReader(readers []Reader, log *logger.Logger) *ChainReader {
	return &ChainReader{readers: readers, logger: log}
}

// DefaultReader reads with TagLib and falls back to the pure Go reader.
func DefaultReader(log *logger.Logger) *ChainReader {
	return NewChainReader([]Reader{TaglibReader{}, DhowdenReader{}}, log)
}

func (c *ChainReader) Name() string { return "chain" }

func (c *ChainReader) Read(path string) (Tags, error) {
	var lastErr error
	for _, r := range c.readers {
		tags, err := r.Read(path)
		if err != nil {
			c.logger.Debug("reader %s failed: %v", r.Name(), err)
			lastErr = err
			continue
		}
		return tags, nil
	}
	if lastErr == nil {
		return Tags{}, fmt.Errorf("no tag readers configured")
	}
	return Tags{}, lastErr
}
