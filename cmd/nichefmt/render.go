package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// palette styles text output.
type palette struct {
	name    func(...string) string
	typ     func(...string) string
	summary func(...string) string
	muted   func(...string) string
}

func plainPalette() palette {
	plain := func(s ...string) string { return strings.Join(s, " ") }
	return palette{name: plain, typ: plain, summary: plain, muted: plain}
}

// newPalette honours the color mode. Auto colors only when w is a terminal.
func newPalette(w io.Writer, mode string) palette {
	switch mode {
	case config.ColorNever:
		return plainPalette()
	case config.ColorAuto:
		f, ok := w.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return plainPalette()
		}
	}

	r := lipgloss.NewRenderer(w)
	if mode == config.ColorAlways {
		r.SetColorProfile(termenv.ANSI256)
	}
	return palette{
		name:    nameStyle.Renderer(r).Render,
		typ:     typeStyle.Renderer(r).Render,
		summary: summaryStyle.Renderer(r).Render,
		muted:   helpStyle.Renderer(r).Render,
	}
}

func writeText(w io.Writer, in *inspector, values []nichefmt.Value, pal palette) error {
	var b strings.Builder
	for _, v := range values {
		writeNode(&b, in.tree(v), 0, pal)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNode(b *strings.Builder, n node, depth int, pal palette) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(formatLine(n.Name, n.Type, n.Summary, pal))
	b.WriteString("\n")
	for _, c := range n.Children {
		writeNode(b, c, depth+1, pal)
	}
	if n.Omitted > 0 {
		fmt.Fprintf(b, "%s  %s\n", indent, pal.muted(fmt.Sprintf("... %d more", n.Omitted)))
	}
}

// formatLine renders "name (type) = summary"; the type is left out for
// provider fields that have none.
func formatLine(name, typ, summary string, pal palette) string {
	line := pal.name(name)
	if typ != "" {
		line += " (" + pal.typ(typ) + ")"
	}
	return line + " = " + pal.summary(summary)
}
