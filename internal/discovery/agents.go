package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/nibzard/subspace-go/internal/validate"
)

// Definition is a located markdown definition.
type Definition struct {
	Name   string
	Path   string
	Source Source
}

// Summary is one row of a listing.
type Summary struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Source      string     `json:"source"`
	SourceType  SourceType `json:"source_type"`
	Description string     `json:"description"`
}

// Details is a fully loaded definition.
type Details struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Source      string      `json:"source"`
	SourceType  SourceType  `json:"source_type"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Body        string      `json:"body"`
}

// Agents looks up agent definitions across sources.
type Agents struct {
	fs      afero.Fs
	sources []Source
}

// NewAgents creates an agent catalog over sources.
func NewAgents(fs afero.Fs, sources []Source) *Agents {
	return &Agents{fs: fs, sources: byPriority(sources)}
}

// Sources returns the sources in priority order.
func (a *Agents) Sources() []Source {
	return a.sources
}

// Find locates an agent. A leading "@" and a trailing ".md" are ignored.
func (a *Agents) Find(name string) (Definition, error) {
	clean := strings.TrimLeft(name, "@")
	clean = strings.TrimSuffix(clean, ".md")
	if err := validate.AgentName(clean); err != nil {
		return Definition{}, err
	}

	for _, src := range a.sources {
		path := filepath.Join(src.Path, clean+".md")
		if isFile(a.fs, path) {
			return Definition{Name: clean, Path: path, Source: src}, nil
		}
	}
	return Definition{}, fmt.Errorf("agent %q %w", clean, ErrNotFound)
}

// List returns every agent, first match winning for duplicate names.
func (a *Agents) List() ([]Summary, error) {
	seen := make(map[string]bool)
	var out []Summary
	for _, src := range a.sources {
		files, err := markdownFiles(a.fs, src.Path)
		if err != nil {
			continue
		}
		for _, file := range files {
			name := strings.TrimSuffix(file, ".md")
			if seen[name] {
				continue
			}
			seen[name] = true

			path := filepath.Join(src.Path, file)
			content, err := afero.ReadFile(a.fs, path)
			if err != nil {
				return nil, fmt.Errorf("read agent %s: %w", path, err)
			}
			out = append(out, Summary{
				Name:        name,
				Path:        path,
				Source:      src.Name,
				SourceType:  src.Type,
				Description: ParseFrontmatter(string(content)).Get("description"),
			})
		}
	}
	return out, nil
}

// Details loads an agent's frontmatter and body.
func (a *Agents) Details(name string) (Details, error) {
	def, err := a.Find(name)
	if err != nil {
		return Details{}, err
	}
	return loadDetails(a.fs, def, def.Name)
}

// Instructions returns the agent body without frontmatter.
func (a *Agents) Instructions(name string) (string, error) {
	def, err := a.Find(name)
	if err != nil {
		return "", err
	}
	content, err := afero.ReadFile(a.fs, def.Path)
	if err != nil {
		return "", fmt.Errorf("read agent %s: %w", def.Path, err)
	}
	return StripFrontmatter(string(content)), nil
}

func loadDetails(fs afero.Fs, def Definition, displayName string) (Details, error) {
	content, err := afero.ReadFile(fs, def.Path)
	if err != nil {
		return Details{}, fmt.Errorf("read %s: %w", def.Path, err)
	}
	text := string(content)
	fm := ParseFrontmatter(text)
	if fm == nil {
		fm = Frontmatter{}
	}
	return Details{
		Name:        displayName,
		Path:        def.Path,
		Source:      def.Source.Name,
		SourceType:  def.Source.Type,
		Frontmatter: fm,
		Body:        StripFrontmatter(text),
	}, nil
}
