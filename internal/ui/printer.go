package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"embedctl/internal/color"
	"embedctl/internal/provision"
)

// Status icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
)

var noteStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(color.Border).
	Padding(0, 1)

// Printer writes human-oriented output. Status lines go to out, errors to
// errOut. Spinners animate only when out is a terminal.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	animate bool
}

var _ provision.Reporter = (*Printer)(nil)

// NewPrinter creates a Printer over out and errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut, animate: isTerminal(out)}
}

// Stdio is a Printer over the process's standard streams.
func Stdio() *Printer {
	return NewPrinter(os.Stdout, os.Stderr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Out is the writer for primary output such as tables and tokens.
func (p *Printer) Out() io.Writer { return p.out }

func (p *Printer) line(w io.Writer, s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(w, s)
}

// withIcon pads icon so wide glyphs do not swallow the next character.
func withIcon(icon, text string) string {
	spaces := 1
	if runewidth.StringWidth(icon) >= 2 {
		spaces = 2
	}
	return icon + strings.Repeat(" ", spaces) + text
}

func (p *Printer) Heading(title string) {
	p.line(p.out, color.HeadingStyle.Render(title))
}

func (p *Printer) Info(format string, args ...any) {
	p.line(p.out, color.InfoStyle.Render(withIcon(IconInfo, fmt.Sprintf(format, args...))))
}

func (p *Printer) Success(format string, args ...any) {
	p.line(p.out, color.SuccessStyle.Render(withIcon(IconSuccess, fmt.Sprintf(format, args...))))
}

func (p *Printer) Warn(format string, args ...any) {
	p.line(p.out, color.WarningStyle.Render(withIcon(IconWarning, fmt.Sprintf(format, args...))))
}

// Error prints to errOut.
func (p *Printer) Error(format string, args ...any) {
	p.line(p.errOut, color.ErrorStyle.Render(withIcon(IconError, fmt.Sprintf(format, args...))))
}

// Muted prints de-emphasized text such as hints.
func (p *Printer) Muted(format string, args ...any) {
	p.line(p.out, color.MutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Println prints s unstyled.
func (p *Printer) Println(s string) {
	p.line(p.out, s)
}

// Note prints a boxed block of guidance under a title.
func (p *Printer) Note(title, body string) {
	content := color.AccentStyle.Render(title)
	if body != "" {
		content += "\n\n" + body
	}
	p.line(p.out, noteStyle.Render(content))
}
