package discovery

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/subspace-go/internal/validate"
)

func agentFixture(t *testing.T) (*Agents, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/proj/.claude/agents/coder.md", "---\nname: coder\ndescription: Writes code\n---\nYou write code.\n")
	writeFile(t, fs, "/proj/.claude/agents/notes.txt", "ignored")
	writeFile(t, fs, "/home/me/.codex/agents/coder.md", "---\ndescription: shadowed\n---\nShadowed.\n")
	writeFile(t, fs, "/home/me/.codex/agents/reviewer.md", "Review carefully.\n")
	require.NoError(t, fs.MkdirAll("/home/me/.codex/agents/dir.md", 0o755))

	sources := []Source{
		{Name: "codex_user", Path: "/home/me/.codex/agents", Type: SourceUser, Priority: 4},
		{Name: "claude_project", Path: "/proj/.claude/agents", Type: SourceProject, Priority: 1},
	}
	return NewAgents(fs, sources), fs
}

func TestAgentsFind(t *testing.T) {
	agents, _ := agentFixture(t)

	tests := []struct {
		name       string
		input      string
		wantPath   string
		wantSource string
		wantErr    error
	}{
		{"priority wins", "coder", "/proj/.claude/agents/coder.md", "claude_project", nil},
		{"at prefix", "@reviewer", "/home/me/.codex/agents/reviewer.md", "codex_user", nil},
		{"md suffix", "reviewer.md", "/home/me/.codex/agents/reviewer.md", "codex_user", nil},
		{"missing", "ghost", "", "", ErrNotFound},
		{"directory is not an agent", "dir", "", "", ErrNotFound},
		{"traversal rejected", "../secret", "", "", validate.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := agents.Find(tt.input)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, def.Path)
			assert.Equal(t, tt.wantSource, def.Source.Name)
		})
	}
}

func TestAgentsFindNotFoundMessage(t *testing.T) {
	agents, _ := agentFixture(t)
	_, err := agents.Find("ghost")
	assert.EqualError(t, err, `agent "ghost" not found`)
}

func TestAgentsList(t *testing.T) {
	agents, _ := agentFixture(t)

	list, err := agents.List()
	require.NoError(t, err)
	assert.Equal(t, []Summary{
		{Name: "coder", Path: "/proj/.claude/agents/coder.md", Source: "claude_project", SourceType: SourceProject, Description: "Writes code"},
		{Name: "reviewer", Path: "/home/me/.codex/agents/reviewer.md", Source: "codex_user", SourceType: SourceUser},
	}, list)
}

func TestAgentsDetailsAndInstructions(t *testing.T) {
	agents, _ := agentFixture(t)

	details, err := agents.Details("coder")
	require.NoError(t, err)
	assert.Equal(t, "coder", details.Name)
	assert.Equal(t, "Writes code", details.Frontmatter.Get("description"))
	assert.Equal(t, "You write code.\n", details.Body)
	assert.Equal(t, SourceProject, details.SourceType)

	body, err := agents.Instructions("reviewer")
	require.NoError(t, err)
	assert.Equal(t, "Review carefully.\n", body)

	_, err = agents.Instructions("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
