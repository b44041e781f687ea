package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands $VAR and ${VAR} references and a leading ~. Windows
// also gets %VAR% references. Unknown variables expand to nothing, except
// %VAR% which is left as written.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = expandPercentVars(p)
	}
	return expandHome(p)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !(runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}

// expandPercentVars replaces %VAR% with its value when VAR is set.
func expandPercentVars(p string) string {
	parts := strings.Split(p, "%")
	if len(parts) < 3 {
		return p
	}
	var b strings.Builder
	b.WriteString(parts[0])
	i := 1
	for ; i+1 < len(parts); i += 2 {
		key := parts[i]
		if val, ok := os.LookupEnv(key); ok && key != "" {
			b.WriteString(val)
		} else {
			b.WriteString("%" + key + "%")
		}
		b.WriteString(parts[i+1])
	}
	if i < len(parts) {
		b.WriteString("%" + parts[i])
	}
	return b.String()
}
