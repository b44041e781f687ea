package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/subspace-go/internal/utils"
)

// loadFromEnv applies environment overrides. CODEX_BIN is honored for
// compatibility; SUBSPACE_CODEX_BIN wins when both are set.
func loadFromEnv(cfg *Config) error {
	setString := func(key, env string, field *string) {
		if v := os.Getenv(env); v != "" {
			*field = v
			cfg.Sources[key] = SourceEnv
		}
	}
	setInt := func(key, env string, field *int) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", env, v)
		}
		*field = i
		cfg.Sources[key] = SourceEnv
		return nil
	}

	setString("codex_binary", "CODEX_BIN", &cfg.CodexBinary)
	setString("codex_binary", "SUBSPACE_CODEX_BIN", &cfg.CodexBinary)
	setString("codex_model", "CODEX_MODEL", &cfg.CodexModel)
	setString("codex_reasoning", "CODEX_REASONING", &cfg.CodexReasoning)
	if v := os.Getenv("CODEX_ARGS"); v != "" {
		cfg.CodexArgs = utils.SplitAndTrim(v, ",")
		cfg.Sources["codex_args"] = SourceEnv
	}

	if err := setInt("timeout_seconds", "SUBSPACE_TIMEOUT", &cfg.TimeoutSeconds); err != nil {
		return err
	}
	if err := setInt("max_parallel", "SUBSPACE_MAX_PARALLEL", &cfg.MaxParallel); err != nil {
		return err
	}
	setString("output", "SUBSPACE_OUTPUT", &cfg.Output)
	if v := os.Getenv("SUBSPACE_DEBUG"); v != "" {
		cfg.Debug = boolFromString(v)
		cfg.Sources["debug"] = SourceEnv
	}

	// Logging configuration
	setString("log_level", "SUBSPACE_LOG_LEVEL", &cfg.LogLevel)
	setString("log_format", "SUBSPACE_LOG_FORMAT", &cfg.LogFormat)

	setString("agents_dir", "SUBSPACE_AGENTS_DIR", &cfg.AgentsDir)
	setString("commands_dir", "SUBSPACE_COMMANDS_DIR", &cfg.CommandsDir)
	setString("transcript_dir", "SUBSPACE_TRANSCRIPT_DIR", &cfg.TranscriptDir)
	setString("metrics_textfile", "SUBSPACE_METRICS_TEXTFILE", &cfg.MetricsTextfile)
	return nil
}

// boolFromString parses common boolean spellings. Anything unrecognized is
// false.
func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
