// Package lipgloss prints run reports to the terminal using the Lipgloss
// styling library.
package lipgloss

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/devq"
	"github.com/muesli/termenv"
)

// Palette holds the colors of the printer (Catppuccin Mocha).
type Palette struct {
	Accent  string
	Good    string
	Warning string
	Bad     string
	Muted   string
}

// DefaultPalette returns the palette for dark terminals.
func DefaultPalette() Palette {
	return Palette{
		Accent:  "#89b4fa", // Blue
		Good:    "#a6e3a1", // Green
		Warning: "#f9e2af", // Yellow
		Bad:     "#f38ba8", // Red
		Muted:   "#6c7086", // Gray
	}
}

// Printer writes a short summary of a run report.
type Printer struct {
	w io.Writer

	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	bad     lipgloss.Style
}

// Option configures a Printer.
type Option func(*printerConfig)

type printerConfig struct {
	palette Palette
	profile *termenv.Profile
}

// WithPalette sets the colors.
func WithPalette(p Palette) Option {
	return func(c *printerConfig) {
		c.palette = p
	}
}

// WithColorProfile forces a color profile instead of detecting it from the
// writer. termenv.Ascii disables styling.
func WithColorProfile(p termenv.Profile) Option {
	return func(c *printerConfig) {
		c.profile = &p
	}
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, opts ...Option) *Printer {
	cfg := printerConfig{palette: DefaultPalette()}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := lipgloss.NewRenderer(w)
	if cfg.profile != nil {
		r.SetColorProfile(*cfg.profile)
	}
	pal := cfg.palette

	return &Printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color(pal.Accent)),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color(pal.Muted)),
		good:    r.NewStyle().Foreground(lipgloss.Color(pal.Good)),
		warning: r.NewStyle().Foreground(lipgloss.Color(pal.Warning)),
		bad:     r.NewStyle().Foreground(lipgloss.Color(pal.Bad)),
	}
}

// Print writes the summary of report.
func (p *Printer) Print(report devq.RunReport) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n", p.title.Render("devq · "+report.Author), p.muted.Render("run "+report.RunID))
	fmt.Fprintf(&sb, "%s %s\n", p.label.Render("Score:"), p.score(report.Score))
	files := fmt.Sprintf("%d analyzed", report.FilesAnalyzed)
	if report.FilesIncomplete > 0 {
		files += ", " + p.warning.Render(fmt.Sprintf("%d incomplete", report.FilesIncomplete))
	}
	fmt.Fprintf(&sb, "%s %s\n", p.label.Render("Files:"), files)

	for _, pr := range report.PRs {
		issues := 0
		for _, f := range pr.Static {
			issues += len(f.Issues)
		}
		line := fmt.Sprintf("  #%d %s: %d files, %d static issues", pr.PR.Number, pr.PR.Title, len(pr.Files), issues)
		fmt.Fprintln(&sb, line)
		for _, f := range pr.Files {
			if f.Incomplete {
				fmt.Fprintf(&sb, "    %s %s\n", p.warning.Render("incomplete:"), f.Path)
			}
		}
	}

	switch {
	case report.Summary != nil:
		fmt.Fprintf(&sb, "%s %s\n", p.label.Render("Strengths:"), report.Summary.Strengths)
		fmt.Fprintf(&sb, "%s %s\n", p.label.Render("Improvements:"), report.Summary.Improvements)
		fmt.Fprintf(&sb, "%s %s\n", p.label.Render("Recommendations:"), report.Summary.Recommendations)
	case report.SummaryError != "":
		fmt.Fprintf(&sb, "%s %s\n", p.bad.Render("Summary failed:"), report.SummaryError)
	}

	_, err := io.WriteString(p.w, sb.String())
	return err
}

func (p *Printer) score(score *float64) string {
	if score == nil {
		return p.muted.Render("no score")
	}
	text := fmt.Sprintf("%.1f/10", *score)
	switch {
	case *score >= 7:
		return p.good.Render(text)
	case *score >= 4:
		return p.warning.Render(text)
	default:
		return p.bad.Render(text)
	}
}
