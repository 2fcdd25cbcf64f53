package main

import (
	"os"
	"strings"
)

// Lipgloss probes the terminal background with OSC/DSR queries the first
// time a style renders. When eo writes JSON or stats those bytes can end up
// in the consumer's stream, so non-interactive runs set CI=1 before anything
// renders. Termenv skips the probe under CI.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("EO_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	for _, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		switch name {
		case "json", "stats", "version", "help", "h":
			return true
		}
		if strings.HasPrefix(name, "export-") {
			return true
		}
	}
	return false
}
