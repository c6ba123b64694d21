// Package config loads Matcha engine settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/matcha-sh/matcha/internal/match"
)

// SupportedConfigNames contains supported settings file names, in order
// of preference.
var SupportedConfigNames = []string{
	".matcha.yml",
	".matcha.yaml",
	".matcha.toml",
	".matcha.json",
}

// defaultSettings seeds the koanf tree before any file is layered on.
var defaultSettings = []byte(`
match:
  case: insensitive
  fuzzy: false
slash:
  mode: "off"
quote:
  chars: "&|<>()'` + "`" + `"
reuse:
  enabled: true
sched:
  default_interval: 0s
  throttle_after: 30s
  throttle_floor: 5s
`)

// MatchSettings controls filtering and ordering.
type MatchSettings struct {
	Case  string `koanf:"case"` // sensitive, insensitive, relaxed
	Fuzzy bool   `koanf:"fuzzy"`
}

// SlashSettings controls path separator rewriting.
type SlashSettings struct {
	Mode string `koanf:"mode"` // off, native, forward, backward
}

// QuoteSettings controls the needs-quoting character set.
type QuoteSettings struct {
	Chars string `koanf:"chars"`
	Force bool   `koanf:"force"`
}

// ReuseSettings controls the recent-match-list optimization.
type ReuseSettings struct {
	Enabled bool `koanf:"enabled"`
}

// SchedSettings controls background task scheduling.
type SchedSettings struct {
	DefaultInterval time.Duration `koanf:"default_interval"`
	ThrottleAfter   time.Duration `koanf:"throttle_after"`
	ThrottleFloor   time.Duration `koanf:"throttle_floor"`
}

// Settings is the full engine configuration.
type Settings struct {
	Match MatchSettings `koanf:"match"`
	Slash SlashSettings `koanf:"slash"`
	Quote QuoteSettings `koanf:"quote"`
	Reuse ReuseSettings `koanf:"reuse"`
	Sched SchedSettings `koanf:"sched"`
}

// Default returns the built-in settings.
func Default() *Settings {
	s, _ := load("")
	return s
}

// Load reads settings from path layered over the defaults. An empty
// path returns the defaults.
func Load(path string) (*Settings, error) {
	return load(path)
}

// Discover finds a settings file in dir by the supported names, or ""
// when none exists.
func Discover(dir string) string {
	for _, name := range SupportedConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func load(path string) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultSettings), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return s, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return kyaml.Parser(), nil
	case ".toml":
		return ktoml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported settings format: %s", filepath.Ext(path))
	}
}

// PipelineOptions maps the settings onto match pipeline options.
func (s *Settings) PipelineOptions() match.Options {
	return match.Options{
		Case:       match.ParseCaseMode(s.Match.Case),
		Slash:      match.ParseSlashMode(s.Slash.Mode),
		QuoteChars: s.Quote.Chars,
		Fuzzy:      s.Match.Fuzzy,
	}
}

// CaseSensitive reports whether match texts de-duplicate case
// sensitively.
func (s *Settings) CaseSensitive() bool {
	return match.ParseCaseMode(s.Match.Case) == match.CaseSensitive
}
