// Package config loads codefix.toml, the per-project rule configuration.
//
// A file looks like:
//
//	[analysis]
//	jobs = 4
//	max_diagnostics = 500
//	cache = true
//	disable_all = false
//	exclude = ["obj/**", "*.g.cs"]
//
//	[fix]
//	max_iterations = 8
//
//	[rules]
//	RCS1238 = "warning"   # enable with a severity override
//	RCS1146 = "none"      # disable
//	RCS1046 = true        # enable with the default severity
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the analysed directory.
const FileName = "codefix.toml"

// ErrInvalid marks configuration values that cannot be interpreted.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Path     string         `toml:"-"`
	Analysis AnalysisConfig `toml:"analysis"`
	Fix      FixConfig      `toml:"fix"`
	RawRules map[string]any `toml:"rules"`

	Rules Rules `toml:"-"`
	// Undecoded lists keys present in the file that codefix does not know.
	Undecoded []string `toml:"-"`
}

type AnalysisConfig struct {
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	Cache          *bool    `toml:"cache"`
	DisableAll     bool     `toml:"disable_all"`
	Exclude        []string `toml:"exclude"`
}

type FixConfig struct {
	MaxIterations int `toml:"max_iterations"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{Fix: FixConfig{MaxIterations: 8}}
}

// CacheEnabled reports whether the analysis cache is on; it is unless the
// file turns it off.
func (c *Config) CacheEnabled() bool {
	return c.Analysis.Cache == nil || *c.Analysis.Cache
}

// Excluded reports whether a path relative to the configuration root matches
// one of the exclude patterns.
func (c *Config) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range c.Analysis.Exclude {
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if prefix, found := strings.CutSuffix(pat, "/**"); found && (rel == prefix || strings.HasPrefix(rel, prefix+"/")) {
			return true
		}
		if ok, _ := filepath.Match(pat, filepath.Base(rel)); ok && !strings.Contains(pat, "/") {
			return true
		}
	}
	return false
}

// Find walks up from startDir to locate codefix.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadNearest loads the codefix.toml closest to startDir, or Default when
// there is none.
func LoadNearest(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes and validates one configuration file.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	for _, key := range meta.Undecoded() {
		if len(key) > 0 && key[0] == "rules" {
			continue
		}
		cfg.Undecoded = append(cfg.Undecoded, key.String())
	}
	slices.Sort(cfg.Undecoded)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses configuration text, for tests and stdin input.
func Decode(text string) (*Config, error) {
	cfg := Default()
	meta, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	for _, key := range meta.Undecoded() {
		if len(key) > 0 && key[0] == "rules" {
			continue
		}
		cfg.Undecoded = append(cfg.Undecoded, key.String())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.Jobs < 0 {
		return fmt.Errorf("%w: [analysis].jobs must not be negative", ErrInvalid)
	}
	if c.Analysis.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: [analysis].max_diagnostics must not be negative", ErrInvalid)
	}
	if c.Fix.MaxIterations <= 0 {
		return fmt.Errorf("%w: [fix].max_iterations must be positive", ErrInvalid)
	}
	for _, pat := range c.Analysis.Exclude {
		if _, err := filepath.Match(pat, ""); err != nil {
			return fmt.Errorf("%w: [analysis].exclude pattern %q: %v", ErrInvalid, pat, err)
		}
	}
	rules, err := parseRules(c.RawRules)
	if err != nil {
		return err
	}
	rules.DisableAll = c.Analysis.DisableAll
	c.Rules = rules
	return nil
}
