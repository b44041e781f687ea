// Command subspace runs Codex subagents and serves slash command prompts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibzard/subspace-go/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
