// Package config holds the snirk constants and the snirk.yaml configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents snirk.yaml.
type Config struct {
	// Prompt is shown before each new REPL submission.
	Prompt string `yaml:"prompt,omitempty"`

	// ContinuationPrompt is shown while a submission is incomplete.
	ContinuationPrompt string `yaml:"continuation_prompt,omitempty"`

	// HistoryFile is liner's line history. Relative paths resolve against the
	// home directory. "-" disables it.
	HistoryFile string `yaml:"history_file,omitempty"`

	// HistoryDB is the SQLite submission log. Relative paths resolve against
	// the home directory. "-" disables it.
	HistoryDB string `yaml:"history_db,omitempty"`

	// HistoryLimit caps how many recent submissions are loaded at start-up.
	HistoryLimit int `yaml:"history_limit,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Disassemble prints the compiled chunk before running it.
	Disassemble bool `yaml:"disassemble,omitempty"`

	// Backend selects the execution backend: vm or treewalk.
	Backend string `yaml:"backend,omitempty"`

	// QuietWarnings hides the unused and never-mutated binding warnings.
	QuietWarnings bool `yaml:"quiet_warnings,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses snirk.yaml content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Discover looks for snirk.yaml in the working directory, then in the home
// directory. It returns the defaults when neither exists.
func Discover() (*Config, string, error) {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			return cfg, candidate, err
		}
	}
	return Default(), "", nil
}

func (c *Config) validate(path string) error {
	if c.LogLevel != "" {
		if _, err := ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	switch c.Backend {
	case "", "vm", "treewalk":
	default:
		return fmt.Errorf("%s: unknown backend %q (want vm or treewalk)", path, c.Backend)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("%s: history_limit must not be negative", path)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.ContinuationPrompt == "" {
		c.ContinuationPrompt = DefaultContinuationPrompt
	}
	if c.HistoryFile == "" {
		c.HistoryFile = DefaultHistoryFile
	}
	if c.HistoryDB == "" {
		c.HistoryDB = DefaultHistoryDB
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// HistoryFilePath returns the resolved liner history path, or "" if disabled.
func (c *Config) HistoryFilePath() string { return resolveHome(c.HistoryFile) }

// HistoryDBPath returns the resolved SQLite path, or "" if disabled.
func (c *Config) HistoryDBPath() string { return resolveHome(c.HistoryDB) }

func resolveHome(p string) string {
	if p == "" || p == "-" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p)
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
