package chunker

import (
	"errors"
	"fmt"
)

// Match modes for boilerplate patterns.
const (
	MatchContains = "contains"
	MatchExact    = "exact"
)

var (
	ErrInvalidWindow    = errors.New("window size must be greater than overlap")
	ErrInvalidLimit     = errors.New("token limit and window size must be positive")
	ErrInvalidRatio     = errors.New("tokens per word must be positive")
	ErrInvalidMatchMode = errors.New("unknown boilerplate match mode")
)

// Config controls chunk generation.
type Config struct {
	TokenLimit    int     // Estimated tokens above which a block is windowed.
	WindowSize    int     // Words per fallback window.
	Overlap       int     // Words shared by consecutive windows.
	TokensPerWord float64 // Multiplier for the token estimate.

	BoilerplatePatterns []string
	MatchMode           string

	MinChunkWords   int  // Blocks with fewer words are dropped, 0 disables.
	MergeShortWords int  // Short same-heading chunks merge into the previous one, 0 disables.
	PrependHeading  bool // Prefix chunk text with its section heading line.
	StripWWW        bool // Drop a leading "www." from the subdomain.
}

// DefaultBoilerplatePatterns are the navigation and footer headings of the
// crawled site.
var DefaultBoilerplatePatterns = []string{
	"External Links",
	"Contact",
	"Career",
	"DESY Research",
	"DESY Research Centre",
	"DESY USER's area",
	"DESY calendar",
	"DESY for business",
	"DESY in Easy Language",
	"DESY latest news",
	"Zum Seitenanfang",
	"Back to top",
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TokenLimit:          512,
		WindowSize:          400,
		Overlap:             50,
		TokensPerWord:       1.0,
		BoilerplatePatterns: append([]string(nil), DefaultBoilerplatePatterns...),
		MatchMode:           MatchContains,
	}
}

// Validate reports configuration that would produce wrong windows.
func (c Config) Validate() error {
	if c.TokenLimit <= 0 || c.WindowSize <= 0 {
		return ErrInvalidLimit
	}
	if c.Overlap < 0 || c.WindowSize <= c.Overlap {
		return fmt.Errorf("%w: window=%d overlap=%d", ErrInvalidWindow, c.WindowSize, c.Overlap)
	}
	if c.TokensPerWord <= 0 {
		return ErrInvalidRatio
	}
	switch c.MatchMode {
	case MatchContains, MatchExact:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMatchMode, c.MatchMode)
	}
	return nil
}
