// Package validate checks externally supplied agent and command names.
//
// Names reach the filesystem (as <dir>/<name>.md) and the subprocess
// payload, so every lookup must pass through AgentName or CommandName
// first. The accepted alphabet is ASCII letters, digits, hyphen and
// underscore, with no leading hyphen.
package validate
