// Package ui renders download progress and result output for the CLI.
// A terminal gets a styled progress bar; pipes and CI get plain lines.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/samhita-labs/grantha/internal/pack"
)

const (
	colorSaffron = "#E49B0F"
	colorGray    = "#6B6B6B"
)

// Styles holds the CLI's lipgloss styles.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorSaffron)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorSaffron)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#D7AF00")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D70000")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
	}
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ProgressRenderer draws pack download progress. On a terminal it
// redraws a single bar line in place; otherwise it prints one plain
// line per file transition.
type ProgressRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	tty      bool
	bar      progress.Model
	styles   Styles
	lastFile string
}

// NewProgressRenderer creates a renderer writing to out.
func NewProgressRenderer(out io.Writer) *ProgressRenderer {
	return &ProgressRenderer{
		out: out,
		tty: IsTTY(out),
		bar: progress.New(
			progress.WithSolidFill(colorSaffron),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		styles: DefaultStyles(),
	}
}

// Update renders one progress event. Safe for concurrent use.
func (r *ProgressRenderer) Update(p pack.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.tty {
		if p.File != r.lastFile {
			r.lastFile = p.File
			fmt.Fprintf(r.out, "downloading %s (%d/%d)\n", p.File, p.FileIndex+1, p.FileCount)
		}
		return
	}

	bar := r.bar.ViewAs(p.Fraction)
	pct := fmt.Sprintf("%3.0f%%", p.Fraction*100)
	label := r.styles.Dim.Render(fmt.Sprintf("%s (%d/%d)", p.File, p.FileIndex+1, p.FileCount))
	fmt.Fprintf(r.out, "\r\033[K%s %s  %s", bar, pct, label)
}

// Done finishes the bar line and prints a closing message.
func (r *ProgressRenderer) Done(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tty {
		fmt.Fprint(r.out, "\r\033[K")
	}
	fmt.Fprintln(r.out, r.styles.Success.Render(message))
}

// Fail clears the bar line and prints an error message.
func (r *ProgressRenderer) Fail(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tty {
		fmt.Fprint(r.out, "\r\033[K")
	}
	fmt.Fprintln(r.out, r.styles.Error.Render(message))
}

// FormatBytes renders a byte count for humans.
func FormatBytes(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// HighlightSnippet wraps the given byte ranges of text in bold. Spans
// must be non-overlapping and ordered, as the search engine emits them.
func HighlightSnippet(text string, spans [][2]int, style lipgloss.Style) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		start, end := sp[0], sp[1]
		if start < last || end > len(text) || end <= start {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(style.Bold(true).Render(text[start:end]))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}
