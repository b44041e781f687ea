package agents

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCodexArgs(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunnerConfig
		want []string
	}{
		{
			name: "defaults",
			want: []string{"exec", "--sandbox", "workspace-write", "--json"},
		},
		{
			name: "model reasoning and extra args",
			cfg: RunnerConfig{
				Model:     "gpt-5-codex",
				Reasoning: "high",
				ExtraArgs: []string{"--skip-git-repo-check"},
			},
			want: []string{
				"exec", "--sandbox", "workspace-write", "--json",
				"-m", "gpt-5-codex",
				"-c", "model_reasoning_effort=high",
				"--skip-git-repo-check",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, codexArgs(tt.cfg)); diff != "" {
				t.Errorf("codexArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSandboxEnv(t *testing.T) {
	environ := []string{"PATH=/bin", "CODEX_HOME=/home/me/.codex", "HOME=/home/me", "CODEX_HOMEX=keep"}

	env, previous := sandboxEnv(environ, "/ws/.subspace/codex-subagent")
	if previous != "/home/me/.codex" {
		t.Errorf("previous = %q, want /home/me/.codex", previous)
	}
	want := []string{"PATH=/bin", "HOME=/home/me", "CODEX_HOMEX=keep", "CODEX_HOME=/ws/.subspace/codex-subagent"}
	if diff := cmp.Diff(want, env); diff != "" {
		t.Errorf("sandboxEnv() mismatch (-want +got):\n%s", diff)
	}

	env, previous = sandboxEnv([]string{"PATH=/bin"}, "")
	if previous != "" {
		t.Errorf("previous = %q, want empty", previous)
	}
	if diff := cmp.Diff([]string{"PATH=/bin"}, env); diff != "" {
		t.Errorf("sandboxEnv() without home mismatch (-want +got):\n%s", diff)
	}
}
