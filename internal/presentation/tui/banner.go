package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                 _                 _    `, "#38bdf8"},
	{`  _ __ ___   ___ | |_ ___  ___  ___| | __`, "#22d3ee"},
	{` | '__/ _ \ / _ \| __/ __|/ _ \/ _ \ |/ /`, "#2dd4bf"},
	{` | | | (_) | (_) | |_\__ \  __/  __/   < `, "#34d399"},
	{` |_|  \___/ \___/ \__|___/\___|\___|_|\_\`, "#4ade80"},
}

// PrintBanner writes the coloured rootseek banner to w.
// Colours degrade to plain text when w is not a colour-capable terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Emphasis renders s in bold when w supports it.
func Emphasis(w io.Writer, s string) string {
	out := termenv.NewOutput(w)
	if out.ColorProfile() == termenv.Ascii {
		return s
	}
	return out.String(s).Bold().String()
}

// IsInteractive reports whether both stdin and stdout are terminals.
// Banners and markdown rendering are only used in that case.
func IsInteractive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// IsTerminal reports whether f refers to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
