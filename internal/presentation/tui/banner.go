package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the flowpaths ASCII art banner and version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _                             _   _", "#38bdf8"},
		{"  / _| | _____      ___ __   __ _| |_| |__  ___", "#22d3ee"},
		{" | |_| |/ _ \\ \\ /\\ / / '_ \\ / _` | __| '_ \\/ __|", "#2dd4bf"},
		{" |  _| | (_) \\ V  V /| |_) | (_| | |_| | | \\__ \\", "#34d399"},
		{" |_| |_|\\___/ \\_/\\_/ | .__/ \\__,_|\\__|_| |_|___/", "#4ade80"},
		{"                     |_|", "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
