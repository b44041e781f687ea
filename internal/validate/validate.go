package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidName is wrapped by every name validation failure.
var ErrInvalidName = errors.New("invalid name")

// AgentName validates an agent name before it is used as a file name or
// sent to a subprocess.
func AgentName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: agent name cannot be empty", ErrInvalidName)
	}
	if !validSegmentChars(name) {
		return fmt.Errorf("%w: invalid agent name %q: must contain only alphanumeric, hyphen, or underscore characters", ErrInvalidName, name)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: invalid agent name %q: cannot start with hyphen", ErrInvalidName, name)
	}
	return nil
}

// CommandName validates a slash command name and returns it without its
// optional leading "/". A single "namespace:command" form is accepted; both
// segments follow the agent name alphabet.
func CommandName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: command name cannot be empty", ErrInvalidName)
	}

	clean := strings.TrimPrefix(name, "/")
	if clean == "" {
		return "", fmt.Errorf("%w: command name cannot be just '/'", ErrInvalidName)
	}

	segments := strings.Split(clean, ":")
	if len(segments) > 2 {
		return "", fmt.Errorf("%w: invalid command name %q: at most one namespace separator is allowed", ErrInvalidName, name)
	}
	for _, segment := range segments {
		if segment == "" || !validSegmentChars(segment) {
			return "", fmt.Errorf("%w: invalid command name %q: must contain only alphanumeric, hyphen, or underscore characters (optional leading / and namespace:)", ErrInvalidName, name)
		}
		if strings.HasPrefix(segment, "-") {
			return "", fmt.Errorf("%w: invalid command name %q: cannot start with hyphen", ErrInvalidName, name)
		}
	}

	return clean, nil
}

// SplitCommandName splits a validated command name into namespace and
// command. The namespace is empty for plain names.
func SplitCommandName(clean string) (namespace, command string) {
	if ns, cmd, ok := strings.Cut(clean, ":"); ok {
		return ns, cmd
	}
	return "", clean
}

func validSegmentChars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '_' || c == '-'
		if !valid {
			return false
		}
	}
	return true
}
