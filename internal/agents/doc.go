// Package agents builds Codex payloads and supervises codex exec runs.
//
// A run writes one JSON payload to the process stdin, reads its JSONL
// events from stdout and either forwards them to a StreamWriter (stream
// mode) or reduces them to the agent's final text with ExtractMessages
// (collect mode).
//
// Each run is bounded by its own timeout measured from launch. A timed out
// run has its process group killed and reports TimeoutExitCode. Launch
// failures and timeouts are recorded in the RunResult rather than returned,
// so callers running several agents can treat each run independently.
//
// Default timeout is 10 minutes, configurable per runner.
package agents
