// Package config handles triage pipeline configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable threshold of the triage pipeline. All values have
// working defaults; a config file only needs to name the fields it overrides.
type Config struct {
	Quality     QualityConfig     `yaml:"quality"`
	Proceedings ProceedingsConfig `yaml:"proceedings"`
	Match       MatchConfig       `yaml:"match"`
	OCR         OCRConfig         `yaml:"ocr"`

	// Workers is the batch worker pool size; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// QualityConfig controls the text quality classifier verdicts.
type QualityConfig struct {
	// MinCharsPerPage is the mean extracted characters per page below which a
	// document is considered image-only and verdicts needs_ocr.
	MinCharsPerPage float64 `yaml:"min_chars_per_page"`

	// MaxGarbageRatio is the fraction of non-whitespace runes outside plausible
	// printable ranges above which the text is considered corrupted.
	MaxGarbageRatio float64 `yaml:"max_garbage_ratio"`

	// MaxControlChars is the absolute count of suspicious control characters
	// tolerated before the corruption verdict fires.
	MaxControlChars int `yaml:"max_control_chars"`
}

// ProceedingsConfig controls container-document detection.
type ProceedingsConfig struct {
	MinPages           int `yaml:"min_pages"`            // Page count below which a document is never a container
	MinTitleLikeLines  int `yaml:"min_title_like_lines"` // Repetition threshold for title-like lines
	MinAuthorLikeLines int `yaml:"min_author_like_lines"`
	MinAbstractStarts  int `yaml:"min_abstract_starts"`  // Coded abstract starts that alone indicate a container
	MinProgramMarkers  int `yaml:"min_program_markers"`  // Program-booklet phrases that alone indicate a container; 0 disables
	ScanPages          int `yaml:"scan_pages"`           // Structural signals are counted over this page prefix
}

// MatchConfig controls the fuzzy reference matcher.
type MatchConfig struct {
	TitleWeight   float64 `yaml:"title_weight"`    // Title score weight in the combined score
	AuthorWeight  float64 `yaml:"author_weight"`   // Author score weight; TitleWeight >= AuthorWeight
	MinCombined   float64 `yaml:"min_combined"`    // Acceptance threshold on the combined score
	MinTitleScore float64 `yaml:"min_title_score"` // Title floor below which a combined pass is still rejected
	TieEpsilon    float64 `yaml:"tie_epsilon"`     // Scores closer than this are tied
	MaxSurnames   int     `yaml:"max_surnames"`    // Reference surnames considered in the author pass
}

// Duration wraps time.Duration so YAML round-trips human-readable values
// such as "90s" or "5m"; yaml.v3 would otherwise emit raw nanoseconds and
// reject the string form on load.
type Duration time.Duration

// MarshalYAML emits the duration in time.Duration string notation.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts both "5m" strings and integer nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("parsing duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// OCRConfig controls the external OCR converter invocation.
type OCRConfig struct {
	Tool        string   `yaml:"tool"`     // OCR executable; empty disables the fallback
	ExtraArgs   []string `yaml:"args"`     // Additional tool arguments
	Language    string   `yaml:"language"` // Recognition language hint
	Timeout     Duration `yaml:"timeout"`  // Per-document subprocess timeout
	RatePerSec  float64  `yaml:"rate_per_sec"`
	Concurrency int      `yaml:"concurrency"` // Max simultaneous OCR subprocesses
}

// Default returns the configuration with all tunables at their defaults.
// The fuzzy-match constants mirror the calibration of the screening pipeline
// this module replaced.
func Default() Config {
	return Config{
		Quality: QualityConfig{
			MinCharsPerPage: 50,
			MaxGarbageRatio: 0.15,
			MaxControlChars: 5,
		},
		Proceedings: ProceedingsConfig{
			MinPages:           25,
			MinTitleLikeLines:  20,
			MinAuthorLikeLines: 10,
			MinAbstractStarts:  8,
			MinProgramMarkers:  2,
			ScanPages:          40,
		},
		Match: MatchConfig{
			TitleWeight:   0.75,
			AuthorWeight:  0.25,
			MinCombined:   0.60,
			MinTitleScore: 0.55,
			TieEpsilon:    0.02,
			MaxSurnames:   6,
		},
		OCR: OCRConfig{
			Tool:        "ocrmypdf",
			Language:    "eng",
			Timeout:     Duration(5 * time.Minute),
			RatePerSec:  1,
			Concurrency: 2,
		},
		Workers: 0,
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// A missing file is not an error: defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
