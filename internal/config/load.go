package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit file from --config. It must exist.
	ConfigFile string
	// Flags holds the parsed CLI flags. Only flags marked Changed apply.
	Flags *pflag.FlagSet
	// WorkDir is the project root. Defaults to the working directory.
	WorkDir string
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.subspace/subspace.toml or OS-specific config dir)
// 3. Project config file (subspace.toml or .subspace.toml in the work dir)
// 4. The --config file
// 5. Environment variables
// 6. CLI flags
func Load(opts Options) (*Config, error) {
	cfg := &Config{Sources: make(map[string]Source)}

	// 1. Set defaults
	setDefaults(cfg)

	root := opts.WorkDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	cfg.ProjectRoot = root

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(root); path != "" {
		if err := loadConfigFile(cfg, path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Explicit config file
	if opts.ConfigFile != "" {
		path := expandPath(opts.ConfigFile)
		if err := loadConfigFile(cfg, path, SourceFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// 5. Environment
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	// 6. CLI flags (they override everything)
	if err := applyFlags(cfg, opts.Flags); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	finalizeConfig(cfg)
	return cfg, nil
}

// loadConfigFile decodes a TOML file over cfg and records which keys it set.
// Unknown keys are rejected so typos do not pass silently.
func loadConfigFile(cfg *Config, path string, source Source) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, key := range md.Keys() {
		cfg.Sources[key.String()] = source
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

// finalizeConfig expands paths and resolves them against the project root.
func finalizeConfig(cfg *Config) {
	cfg.AgentsDir = resolvePath(cfg.ProjectRoot, cfg.AgentsDir)
	cfg.CommandsDir = resolvePath(cfg.ProjectRoot, cfg.CommandsDir)
	cfg.TranscriptDir = resolvePath(cfg.ProjectRoot, cfg.TranscriptDir)
	cfg.MetricsTextfile = resolvePath(cfg.ProjectRoot, cfg.MetricsTextfile)
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
}

func resolvePath(root, p string) string {
	if p == "" {
		return p
	}
	p = expandPath(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}
