package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# subspace configuration file
# Values can be overridden by environment variables or CLI flags

# Codex binary and model settings
codex_binary = "codex"
# codex_model = "gpt-5-codex"
# codex_reasoning = "medium"
# codex_args = ["--skip-git-repo-check"]

# Per-run timeout in seconds
timeout_seconds = 600

# Output format for subagent run/parallel: text or jsonl
output = "text"

# Maximum concurrent runs for subagent parallel (0 = unlimited)
max_parallel = 0

# Logging (diagnostics go to stderr)
debug = false
log_level = "info"   # debug, info, warn, error
log_format = "text"  # text, json, logfmt

# Discovery overrides (relative paths resolve against the project root)
# agents_dir = ".claude/agents"
# commands_dir = ".claude/commands"

# Raw run transcripts, one JSONL file per run (supports ~ expansion)
# transcript_dir = "~/.subspace/transcripts"

# Prometheus textfile written after each command
# metrics_textfile = "~/.subspace/metrics.prom"
`
}
