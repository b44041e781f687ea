package agents

import (
	"os"
	"strings"
)

// codexArgs builds the codex exec arguments. The sandbox mode and JSON
// output are fixed; model, reasoning and extra args are optional.
func codexArgs(cfg RunnerConfig) []string {
	args := []string{"exec", "--sandbox", SandboxMode, "--json"}
	if cfg.Model != "" {
		args = append(args, "-m", cfg.Model)
	}
	if cfg.Reasoning != "" {
		args = append(args, "-c", "model_reasoning_effort="+cfg.Reasoning)
	}
	return append(args, cfg.ExtraArgs...)
}

// sandboxEnv returns environ with every CODEX_HOME entry replaced by the
// sandbox home. The previous value, if any, is returned for logging.
func sandboxEnv(environ []string, sandboxHome string) (env []string, previous string) {
	prefix := CodexHomeEnv + "="
	env = make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			previous = strings.TrimPrefix(kv, prefix)
			continue
		}
		env = append(env, kv)
	}
	if sandboxHome != "" {
		env = append(env, prefix+sandboxHome)
	}
	return env, previous
}

func processEnv(sandboxHome string) ([]string, string) {
	return sandboxEnv(os.Environ(), sandboxHome)
}
