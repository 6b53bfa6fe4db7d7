package parser

import (
	"errors"
	"fmt"
)

var (
	ErrNoSplitLevels      = errors.New("no split levels configured")
	ErrInvalidSplitLevel  = errors.New("split level must be 2 or 3")
	ErrInvalidSubtitleCfg = errors.New("subtitle thresholds must not be negative")
)

// Config controls header extraction and the primary split.
type Config struct {
	SplitLevels         []int // Heading levels that open a new block.
	SubtitleMaxWords    int   // Longest level-2 heading still taken as a pseudo-subtitle.
	SubtitleMaxDistance int   // Max line distance between title and pseudo-subtitle.
}

// DefaultConfig returns the defaults used for crawled pages.
func DefaultConfig() Config {
	return Config{
		SplitLevels:         []int{2},
		SubtitleMaxWords:    8,
		SubtitleMaxDistance: 3,
	}
}

// Validate rejects configurations that would split documents incorrectly.
func (c Config) Validate() error {
	if len(c.SplitLevels) == 0 {
		return ErrNoSplitLevels
	}
	for _, lvl := range c.SplitLevels {
		if lvl != 2 && lvl != 3 {
			return fmt.Errorf("%w: got %d", ErrInvalidSplitLevel, lvl)
		}
	}
	if c.SubtitleMaxWords < 0 || c.SubtitleMaxDistance < 0 {
		return ErrInvalidSubtitleCfg
	}
	return nil
}

func (c Config) splitsAt(level int) bool {
	for _, lvl := range c.SplitLevels {
		if lvl == level {
			return true
		}
	}
	return false
}
