// Package discovery finds agent definitions and slash commands on disk.
//
// Agents and commands are markdown files with optional YAML frontmatter.
// They are looked up across project, user and plugin directories in a
// fixed priority order; the first match wins. Every external name is
// validated before it touches the filesystem.
package discovery
