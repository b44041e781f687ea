package discovery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n`)

// Field is one frontmatter key and its value rendered as a string.
type Field struct {
	Key   string
	Value string
}

// Frontmatter holds frontmatter fields in file order.
type Frontmatter []Field

// Get returns the value for key, or "".
func (f Frontmatter) Get(key string) string {
	for _, field := range f {
		if field.Key == key {
			return field.Value
		}
	}
	return ""
}

// Map returns the fields as a map.
func (f Frontmatter) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, field := range f {
		m[field.Key] = field.Value
	}
	return m
}

// MarshalJSON encodes the fields as an object, keeping file order.
func (f Frontmatter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseFrontmatter reads the leading ---/--- block of a markdown file.
// The block is decoded as YAML; when that fails, each "key: value" line is
// split on its first colon and surrounding quotes are dropped.
func ParseFrontmatter(content string) Frontmatter {
	m := frontmatterPattern.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	if fields, ok := parseYAMLFrontmatter(m[1]); ok {
		return fields
	}
	return parseLooseFrontmatter(m[1])
}

// StripFrontmatter returns content without its leading frontmatter block.
func StripFrontmatter(content string) string {
	loc := frontmatterPattern.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return content[loc[1]:]
}

func parseYAMLFrontmatter(block string) (Frontmatter, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, false
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, false
	}

	fields := make(Frontmatter, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		fields = append(fields, Field{Key: key.Value, Value: nodeString(value)})
	}
	return fields, true
}

// nodeString renders scalars verbatim and anything else with fmt.Sprint.
func nodeString(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return ""
		}
		return n.Value
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return ""
	}
	return fmt.Sprint(v)
}

func parseLooseFrontmatter(block string) Frontmatter {
	var fields Frontmatter
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		value = strings.Trim(value, `'`)
		fields.set(strings.TrimSpace(key), value)
	}
	return fields
}

// set replaces an existing key in place or appends a new one.
func (f *Frontmatter) set(key, value string) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: value})
}
