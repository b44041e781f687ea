package config

import (
	"fmt"
	"time"

	"github.com/nibzard/subspace-go/internal/logging"
)

// Source records where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceFile     Source = "config file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputJSONL = "jsonl"
)

// Default values.
const (
	DefaultCodexBinary    = "codex"
	DefaultTimeoutSeconds = 600
	DefaultOutput         = OutputText
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config holds the full configuration for subspace.
type Config struct {
	// Codex invocation
	CodexBinary    string   `toml:"codex_binary"`
	CodexModel     string   `toml:"codex_model"`
	CodexReasoning string   `toml:"codex_reasoning"`
	CodexArgs      []string `toml:"codex_args"`

	// Runs
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Output         string `toml:"output"`
	MaxParallel    int    `toml:"max_parallel"`

	// Logging
	Debug     bool   `toml:"debug"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Discovery overrides
	AgentsDir   string `toml:"agents_dir"`
	CommandsDir string `toml:"commands_dir"`

	// Artifacts
	TranscriptDir   string `toml:"transcript_dir"`
	MetricsTextfile string `toml:"metrics_textfile"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`

	// Files lists the config files that were read, in load order.
	Files []string `toml:"-"`

	// Sources maps each TOML key to the layer that last set it.
	Sources map[string]Source `toml:"-"`
}

// Keys returns the configurable keys in display order.
func Keys() []string {
	return []string{
		"codex_binary",
		"codex_model",
		"codex_reasoning",
		"codex_args",
		"timeout_seconds",
		"output",
		"max_parallel",
		"debug",
		"log_level",
		"log_format",
		"agents_dir",
		"commands_dir",
		"transcript_dir",
		"metrics_textfile",
	}
}

// Timeout returns the per-run timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SourceOf reports which layer set key.
func (c *Config) SourceOf(key string) Source {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// ValidOutput reports whether format is a known output format.
func ValidOutput(format string) bool {
	switch format {
	case OutputText, OutputJSON, OutputJSONL:
		return true
	}
	return false
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if !ValidOutput(c.Output) {
		return fmt.Errorf("invalid output format %q (want text, json or jsonl)", c.Output)
	}
	if c.MaxParallel < 0 {
		return fmt.Errorf("max_parallel must not be negative, got %d", c.MaxParallel)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	return nil
}

// Value renders the value of key for display.
func (c *Config) Value(key string) string {
	switch key {
	case "codex_binary":
		return c.CodexBinary
	case "codex_model":
		return c.CodexModel
	case "codex_reasoning":
		return c.CodexReasoning
	case "codex_args":
		return fmt.Sprintf("%q", c.CodexArgs)
	case "timeout_seconds":
		return fmt.Sprint(c.TimeoutSeconds)
	case "output":
		return c.Output
	case "max_parallel":
		return fmt.Sprint(c.MaxParallel)
	case "debug":
		return fmt.Sprint(c.Debug)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "agents_dir":
		return c.AgentsDir
	case "commands_dir":
		return c.CommandsDir
	case "transcript_dir":
		return c.TranscriptDir
	case "metrics_textfile":
		return c.MetricsTextfile
	}
	return ""
}
