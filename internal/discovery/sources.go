package discovery

import (
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// ErrNotFound is returned when no source holds the requested agent or
// command.
var ErrNotFound = errors.New("not found")

// SourceType classifies where a source lives.
type SourceType string

const (
	SourceOverride SourceType = "override"
	SourceProject  SourceType = "project"
	SourceUser     SourceType = "user"
	SourcePlugin   SourceType = "plugin"
)

// Source is one directory of markdown definitions. Lower priority values
// win.
type Source struct {
	Name     string
	Path     string
	Type     SourceType
	Priority int
}

// OverrideSource returns the single source used when a directory is given
// explicitly on the command line.
func OverrideSource(path string) Source {
	return Source{Name: "override", Path: path, Type: SourceOverride, Priority: 0}
}

// Locator resolves the standard source directories for a project.
type Locator struct {
	fs          afero.Fs
	projectRoot string
	home        string
	logger      *log.Logger
}

// NewLocator creates a locator. A nil logger disables diagnostics.
func NewLocator(fs afero.Fs, projectRoot, home string, logger *log.Logger) *Locator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Locator{fs: fs, projectRoot: projectRoot, home: home, logger: logger}
}

// Fs returns the filesystem the locator reads.
func (l *Locator) Fs() afero.Fs {
	return l.fs
}

// AgentSources returns the existing agent directories in priority order:
// project .claude, project .codex, user .claude, user .codex, then the
// agents directory of every installed Claude plugin.
func (l *Locator) AgentSources() []Source {
	sources := l.standardSources("agents")
	for _, p := range l.installedPlugins() {
		dir := filepath.Join(p.path, "agents")
		if l.isDir(dir) {
			l.logger.Debug("found plugin agents", "plugin", p.name, "path", dir)
			sources = append(sources, Source{Name: "plugin:" + p.name, Path: dir, Type: SourcePlugin, Priority: 5})
		}
	}
	return sources
}

// CommandSources returns the existing slash command directories in
// priority order.
func (l *Locator) CommandSources() []Source {
	return l.standardSources("commands")
}

func (l *Locator) standardSources(kind string) []Source {
	candidates := []Source{
		{Name: "claude_project", Path: filepath.Join(l.projectRoot, ".claude", kind), Type: SourceProject, Priority: 1},
		{Name: "codex_project", Path: filepath.Join(l.projectRoot, ".codex", kind), Type: SourceProject, Priority: 2},
	}
	if l.home != "" {
		candidates = append(candidates,
			Source{Name: "claude_user", Path: filepath.Join(l.home, ".claude", kind), Type: SourceUser, Priority: 3},
			Source{Name: "codex_user", Path: filepath.Join(l.home, ".codex", kind), Type: SourceUser, Priority: 4},
		)
	}

	var sources []Source
	for _, src := range candidates {
		if l.isDir(src.Path) {
			l.logger.Debug("found "+kind+" source", "source", src.Name, "path", src.Path)
			sources = append(sources, src)
		}
	}
	return sources
}

type installedPlugin struct {
	name string
	path string
}

// installedPlugins reads ~/.claude/plugins/installed_plugins.json. Only the
// first installation of each plugin is used.
func (l *Locator) installedPlugins() []installedPlugin {
	if l.home == "" {
		return nil
	}
	file := filepath.Join(l.home, ".claude", "plugins", "installed_plugins.json")
	data, err := afero.ReadFile(l.fs, file)
	if err != nil {
		return nil
	}

	var doc struct {
		Plugins map[string][]struct {
			InstallPath string `json:"installPath"`
		} `json:"plugins"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		l.logger.Debug("failed to parse plugins file", "path", file, "err", err)
		return nil
	}

	keys := make([]string, 0, len(doc.Plugins))
	for key := range doc.Plugins {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var plugins []installedPlugin
	for _, key := range keys {
		installs := doc.Plugins[key]
		if len(installs) == 0 || installs[0].InstallPath == "" {
			continue
		}
		name, _, _ := strings.Cut(key, "@")
		plugins = append(plugins, installedPlugin{name: name, path: installs[0].InstallPath})
	}
	return plugins
}

func (l *Locator) isDir(path string) bool {
	ok, err := afero.DirExists(l.fs, path)
	return err == nil && ok
}

func byPriority(sources []Source) []Source {
	sorted := append([]Source(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// markdownFiles returns the *.md regular files directly inside dir, sorted
// by name.
func markdownFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
