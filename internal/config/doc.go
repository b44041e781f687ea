// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.subspace/subspace.toml or OS-specific config directory)
// 3. Project config file (subspace.toml or .subspace.toml in the project root)
// 4. An explicit --config file
// 5. Environment variables (SUBSPACE_*, CODEX_*)
// 6. CLI flags that were explicitly set
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.subspace/subspace.toml (preferred)
// - Windows: %APPDATA%\subspace\subspace.toml
// - macOS: ~/Library/Application Support/subspace/subspace.toml
// - Linux/BSD: $XDG_CONFIG_HOME/subspace/subspace.toml or ~/.config/subspace/subspace.toml
package config
