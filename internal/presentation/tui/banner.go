package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the actionchain banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`             _   _             _           _       `, "#818cf8"},
		{`   __ _  ___| |_(_) ___  _ __ | |__   __ _(_)_ __  `, "#a78bfa"},
		{`  / _' |/ __| __| |/ _ \| '_ \| '_ \ / _' | | '_ \ `, "#c084fc"},
		{` | (_| | (__| |_| | (_) | | | | | | | (_| | | | | |`, "#e879f9"},
		{`  \__,_|\___|\__|_|\___/|_| |_|_| |_|\__,_|_|_| |_|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

// Status colours a run status label for terminal output.
func Status(w io.Writer, ok bool) string {
	out := termenv.NewOutput(w)
	if ok {
		return out.String("ok").Foreground(out.Color("#22c55e")).Bold().String()
	}
	return out.String("failed").Foreground(out.Color("#ef4444")).Bold().String()
}
