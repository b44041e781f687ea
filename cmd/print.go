package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/subspace-go/internal/discovery"
	"github.com/nibzard/subspace-go/internal/utils"
)

const (
	previewLines = 50
	tableWidth   = 80
)

// listOutput validates --output for list, show and get.
func listOutput(format string) error {
	if format != "text" && format != "json" {
		return usageError{fmt.Errorf("invalid output format %q (want text or json)", format)}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeDetails prints a definition with a preview of its body.
func writeDetails(w io.Writer, kind, bodyLabel string, d discovery.Details) {
	fmt.Fprintf(w, "%s: %s\n", kind, d.Name)
	fmt.Fprintf(w, "Source: %s (%s)\n", d.Source, d.SourceType)
	fmt.Fprintf(w, "Path: %s\n", d.Path)
	fmt.Fprintln(w)
	if len(d.Frontmatter) > 0 {
		fmt.Fprintln(w, "Frontmatter:")
		for _, f := range d.Frontmatter {
			fmt.Fprintf(w, "  %s: %s\n", f.Key, f.Value)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s:\n", bodyLabel)
	fmt.Fprintln(w, strings.Repeat("-", 40))

	lines := strings.Split(strings.TrimSpace(d.Body), "\n")
	shown := lines
	if len(shown) > previewLines {
		shown = shown[:previewLines]
	}
	fmt.Fprintln(w, strings.Join(shown, "\n"))
	if len(lines) > previewLines {
		fmt.Fprintf(w, "\n... (%d more lines)\n", len(lines)-previewLines)
	}
}

// writeAgentTable prints agents as NAME / SOURCE / TYPE.
func writeAgentTable(w io.Writer, list []discovery.Summary) {
	fmt.Fprintf(w, "%-20s %-45s %s\n", "NAME", "SOURCE", "TYPE")
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))
	for _, s := range list {
		fmt.Fprintf(w, "%-20s %-45s %s\n", s.Name, utils.TruncateStart(s.Path, 42), s.SourceType)
	}
}

// writeCommandTable prints commands as COMMAND / SOURCE / DESCRIPTION.
func writeCommandTable(w io.Writer, list []discovery.Summary) {
	fmt.Fprintf(w, "%-25s %-20s %s\n", "COMMAND", "SOURCE", "DESCRIPTION")
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))
	for _, s := range list {
		fmt.Fprintf(w, "%-25s %-20s %s\n", s.Name, s.SourceType, utils.TruncateEnd(s.Description, 30))
	}
}
