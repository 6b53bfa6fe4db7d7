package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/dgallion1/crawlchunk/internal/chunker"
	"github.com/dgallion1/crawlchunk/internal/parser"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8090"`

	// Auth for /api/*, disabled when empty
	APIKey string `env:"API_KEY"`

	// Run layout: <InputBase>/<run_id>/depth_<N>/*.md -> <OutputBase>/<run_id>/
	InputBase  string `env:"INPUT_BASE" envDefault:"data/crawl"`
	OutputBase string `env:"OUTPUT_BASE" envDefault:"data/chunks"`
	RunID      string `env:"RUN_ID" envDefault:"2"`
	WriteIndex bool   `env:"WRITE_INDEX" envDefault:"false"`

	// Optional indexing service
	SinkURL    string `env:"SINK_URL"`
	SinkAPIKey string `env:"SINK_API_KEY"`

	// Worker pool
	WorkerCount  int           `env:"WORKER_COUNT" envDefault:"2"`
	DocWorkers   int           `env:"DOC_WORKERS" envDefault:"8"`
	MaxQueueSize int           `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	DocTimeout   time.Duration `env:"DOC_TIMEOUT" envDefault:"30s"`

	// Request limits
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"` // 10MB

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// Splitting
	SplitLevels         []int `env:"SPLIT_LEVELS" envDefault:"2" envSeparator:","`
	SubtitleMaxWords    int   `env:"SUBTITLE_MAX_WORDS" envDefault:"8"`
	SubtitleMaxDistance int   `env:"SUBTITLE_MAX_DISTANCE" envDefault:"3"`

	// Chunking
	TokenLimit          int      `env:"TOKEN_LIMIT" envDefault:"512"`
	WindowSize          int      `env:"WINDOW_SIZE" envDefault:"400"`
	Overlap             int      `env:"OVERLAP" envDefault:"50"`
	TokensPerWord       float64  `env:"TOKENS_PER_WORD" envDefault:"1.0"`
	BoilerplatePatterns []string `env:"BOILERPLATE_PATTERNS" envSeparator:"|"`
	BoilerplateMatch    string   `env:"BOILERPLATE_MATCH" envDefault:"contains"`
	MinChunkWords       int      `env:"MIN_CHUNK_WORDS" envDefault:"0"`
	MergeShortWords     int      `env:"MERGE_SHORT_WORDS" envDefault:"0"`
	PrependHeading      bool     `env:"PREPEND_HEADING" envDefault:"false"`
	StripWWW            bool     `env:"STRIP_WWW" envDefault:"false"`
}

// Load reads the configuration from the environment.
//
// BOILERPLATE_PATTERNS is '|'-separated so a pattern may contain commas. When
// the variable is unset chunker.DefaultBoilerplatePatterns apply; set to an
// empty string it disables boilerplate flagging.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if _, ok := os.LookupEnv("BOILERPLATE_PATTERNS"); ok {
		cfg.BoilerplatePatterns = trimPatterns(cfg.BoilerplatePatterns)
	} else {
		cfg.BoilerplatePatterns = append([]string(nil), chunker.DefaultBoilerplatePatterns...)
	}
	return cfg, nil
}

func trimPatterns(in []string) []string {
	out := []string{}
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.DocWorkers <= 0 {
		return fmt.Errorf("DOC_WORKERS must be positive, got %d", c.DocWorkers)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE must be positive, got %d", c.MaxQueueSize)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if err := c.ParserConfig().Validate(); err != nil {
		return fmt.Errorf("parser config: %w", err)
	}
	if err := c.ChunkerConfig().Validate(); err != nil {
		return fmt.Errorf("chunker config: %w", err)
	}
	return nil
}

func (c Config) ParserConfig() parser.Config {
	return parser.Config{
		SplitLevels:         append([]int(nil), c.SplitLevels...),
		SubtitleMaxWords:    c.SubtitleMaxWords,
		SubtitleMaxDistance: c.SubtitleMaxDistance,
	}
}

func (c Config) ChunkerConfig() chunker.Config {
	return chunker.Config{
		TokenLimit:          c.TokenLimit,
		WindowSize:          c.WindowSize,
		Overlap:             c.Overlap,
		TokensPerWord:       c.TokensPerWord,
		BoilerplatePatterns: append([]string(nil), c.BoilerplatePatterns...),
		MatchMode:           c.BoilerplateMatch,
		MinChunkWords:       c.MinChunkWords,
		MergeShortWords:     c.MergeShortWords,
		PrependHeading:      c.PrependHeading,
		StripWWW:            c.StripWWW,
	}
}
