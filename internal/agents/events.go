package agents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Codex event and item types that carry meaning for extraction.
const (
	EventTypeItemCompleted = "item.completed"
	ItemTypeAgentMessage   = "agent_message"
)

// EventKind classifies a parsed event.
type EventKind int

const (
	// EventOther is any well-formed event without extractable text.
	EventOther EventKind = iota
	// EventAgentMessage is an item.completed event carrying a non-empty
	// agent_message item.
	EventAgentMessage
)

// EventItem is the item payload of item.* events.
type EventItem struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Event is one decoded line of codex exec --json output. Raw keeps the
// original bytes so unknown fields survive pass-through streaming.
type Event struct {
	Kind EventKind
	Type string
	Item *EventItem
	Raw  json.RawMessage
}

// AgentMessage returns the message text for EventAgentMessage events.
func (e Event) AgentMessage() (string, bool) {
	if e.Kind != EventAgentMessage || e.Item == nil {
		return "", false
	}
	return e.Item.Text, true
}

// ParseEvent decodes a single output line. Lines that are not a JSON
// object return an error wrapping ErrMalformedEvent.
func ParseEvent(line []byte) (Event, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Event{}, fmt.Errorf("%w: not a JSON object", ErrMalformedEvent)
	}

	var head struct {
		Type string          `json:"type"`
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	event := Event{
		Kind: EventOther,
		Type: head.Type,
		Raw:  json.RawMessage(append([]byte(nil), trimmed...)),
	}

	if len(head.Item) > 0 && head.Item[0] == '{' {
		var item EventItem
		if err := json.Unmarshal(head.Item, &item); err == nil {
			event.Item = &item
		}
	}

	if event.Type == EventTypeItemCompleted && event.Item != nil &&
		event.Item.Type == ItemTypeAgentMessage && event.Item.Text != "" {
		event.Kind = EventAgentMessage
	}

	return event, nil
}

// ExtractMessages reduces JSONL event lines to the agent's answer: the
// text of every completed agent_message item in input order, separated by
// a blank line. Blank and malformed lines are skipped.
func ExtractMessages(lines []string) string {
	var messages []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		event, err := ParseEvent([]byte(line))
		if err != nil {
			continue
		}
		if text, ok := event.AgentMessage(); ok {
			messages = append(messages, text)
		}
	}
	return strings.Join(messages, "\n\n")
}
