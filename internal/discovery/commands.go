package discovery

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/nibzard/subspace-go/internal/validate"
)

// Commands looks up slash command definitions across sources.
type Commands struct {
	fs      afero.Fs
	sources []Source
}

// NewCommands creates a command catalog over sources.
func NewCommands(fs afero.Fs, sources []Source) *Commands {
	return &Commands{fs: fs, sources: byPriority(sources)}
}

// Sources returns the sources in priority order.
func (c *Commands) Sources() []Source {
	return c.sources
}

// Find locates a command. "/name" and "name" are equivalent;
// "namespace:name" resolves to <source>/namespace/name.md.
func (c *Commands) Find(name string) (Definition, error) {
	clean, err := validate.CommandName(name)
	if err != nil {
		return Definition{}, err
	}
	ns, cmd := validate.SplitCommandName(clean)
	rel := cmd + ".md"
	if ns != "" {
		rel = filepath.Join(ns, cmd+".md")
	}

	for _, src := range c.sources {
		path := filepath.Join(src.Path, rel)
		if isFile(c.fs, path) {
			return Definition{Name: clean, Path: path, Source: src}, nil
		}
	}
	return Definition{}, fmt.Errorf("command %q %w", "/"+clean, ErrNotFound)
}

// List returns top-level commands as "/name" and namespaced commands one
// directory deep as "/namespace:name". First match wins for duplicates.
func (c *Commands) List() ([]Summary, error) {
	seen := make(map[string]bool)
	var out []Summary

	add := func(src Source, name, path string) error {
		if seen[name] {
			return nil
		}
		seen[name] = true
		content, err := afero.ReadFile(c.fs, path)
		if err != nil {
			return fmt.Errorf("read command %s: %w", path, err)
		}
		out = append(out, Summary{
			Name:        "/" + name,
			Path:        path,
			Source:      src.Name,
			SourceType:  src.Type,
			Description: ParseFrontmatter(string(content)).Get("description"),
		})
		return nil
	}

	for _, src := range c.sources {
		entries, err := afero.ReadDir(c.fs, src.Path)
		if err != nil {
			continue
		}
		files, _ := markdownFiles(c.fs, src.Path)
		for _, file := range files {
			if err := add(src, strings.TrimSuffix(file, ".md"), filepath.Join(src.Path, file)); err != nil {
				return nil, err
			}
		}
		for _, e := range entries {
			if !e.IsDir() || validate.AgentName(e.Name()) != nil {
				continue
			}
			dir := filepath.Join(src.Path, e.Name())
			nested, err := markdownFiles(c.fs, dir)
			if err != nil {
				continue
			}
			for _, file := range nested {
				name := e.Name() + ":" + strings.TrimSuffix(file, ".md")
				if err := add(src, name, filepath.Join(dir, file)); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// Details loads a command's frontmatter and body.
func (c *Commands) Details(name string) (Details, error) {
	def, err := c.Find(name)
	if err != nil {
		return Details{}, err
	}
	return loadDetails(c.fs, def, "/"+def.Name)
}

// Prompt returns the command body without frontmatter, trimmed.
func (c *Commands) Prompt(name string) (Definition, string, error) {
	def, err := c.Find(name)
	if err != nil {
		return Definition{}, "", err
	}
	content, err := afero.ReadFile(c.fs, def.Path)
	if err != nil {
		return Definition{}, "", fmt.Errorf("read command %s: %w", def.Path, err)
	}
	return def, strings.TrimSpace(StripFrontmatter(string(content))), nil
}

// Interpolate substitutes $@ with all args joined by spaces, then $1..$n
// positionally. Higher indices are replaced first so $10 is not read as
// $1 followed by 0. Placeholders without a matching arg are left as is.
func Interpolate(prompt string, args []string) string {
	if len(args) == 0 {
		return prompt
	}
	result := strings.ReplaceAll(prompt, "$@", strings.Join(args, " "))
	for i := len(args); i >= 1; i-- {
		result = strings.ReplaceAll(result, "$"+strconv.Itoa(i), args[i-1])
	}
	return result
}
