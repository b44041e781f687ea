package config

import (
	"github.com/spf13/pflag"

	"github.com/nibzard/subspace-go/internal/utils"
)

// Flag names shared by the CLI and the loader.
const (
	FlagCodexBin        = "codex-bin"
	FlagCodexModel      = "codex-model"
	FlagCodexReasoning  = "codex-reasoning"
	FlagCodexArgs       = "codex-args"
	FlagTimeout         = "timeout"
	FlagOutput          = "output"
	FlagMaxParallel     = "max-parallel"
	FlagDebug           = "debug"
	FlagLogLevel        = "log-level"
	FlagLogFormat       = "log-format"
	FlagAgentsDir       = "agents-dir"
	FlagCommandsDir     = "commands-dir"
	FlagTranscriptDir   = "transcript-dir"
	FlagMetricsTextfile = "metrics-textfile"
)

// BindGlobalFlags registers the flags every command accepts.
func BindGlobalFlags(fs *pflag.FlagSet) {
	fs.String(FlagCodexBin, "", "Codex binary (default \"codex\")")
	fs.String(FlagCodexModel, "", "Codex model")
	fs.String(FlagCodexReasoning, "", "Codex reasoning effort (e.g., low, medium, high)")
	fs.String(FlagCodexArgs, "", "Comma-separated extra args for codex exec")
	fs.String(FlagLogLevel, DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, DefaultLogFormat, "Log format (text, json, logfmt)")
	fs.String(FlagTranscriptDir, "", "Write raw run transcripts under this directory")
	fs.String(FlagMetricsTextfile, "", "Write run metrics to this Prometheus textfile")
}

// applyFlags copies explicitly set flags over cfg. Flags the command does
// not define are ignored.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	strFlags := []struct {
		name  string
		key   string
		field *string
	}{
		{FlagCodexBin, "codex_binary", &cfg.CodexBinary},
		{FlagCodexModel, "codex_model", &cfg.CodexModel},
		{FlagCodexReasoning, "codex_reasoning", &cfg.CodexReasoning},
		{FlagOutput, "output", &cfg.Output},
		{FlagLogLevel, "log_level", &cfg.LogLevel},
		{FlagLogFormat, "log_format", &cfg.LogFormat},
		{FlagAgentsDir, "agents_dir", &cfg.AgentsDir},
		{FlagCommandsDir, "commands_dir", &cfg.CommandsDir},
		{FlagTranscriptDir, "transcript_dir", &cfg.TranscriptDir},
		{FlagMetricsTextfile, "metrics_textfile", &cfg.MetricsTextfile},
	}
	for _, f := range strFlags {
		if !changed(fs, f.name) {
			continue
		}
		v, err := fs.GetString(f.name)
		if err != nil {
			return err
		}
		*f.field = v
		cfg.Sources[f.key] = SourceFlag
	}

	intFlags := []struct {
		name  string
		key   string
		field *int
	}{
		{FlagTimeout, "timeout_seconds", &cfg.TimeoutSeconds},
		{FlagMaxParallel, "max_parallel", &cfg.MaxParallel},
	}
	for _, f := range intFlags {
		if !changed(fs, f.name) {
			continue
		}
		v, err := fs.GetInt(f.name)
		if err != nil {
			return err
		}
		*f.field = v
		cfg.Sources[f.key] = SourceFlag
	}

	if changed(fs, FlagCodexArgs) {
		v, err := fs.GetString(FlagCodexArgs)
		if err != nil {
			return err
		}
		cfg.CodexArgs = utils.SplitAndTrim(v, ",")
		cfg.Sources["codex_args"] = SourceFlag
	}
	if changed(fs, FlagDebug) {
		v, err := fs.GetBool(FlagDebug)
		if err != nil {
			return err
		}
		cfg.Debug = v
		cfg.Sources["debug"] = SourceFlag
	}
	return nil
}

func changed(fs *pflag.FlagSet, name string) bool {
	return fs.Lookup(name) != nil && fs.Changed(name)
}
