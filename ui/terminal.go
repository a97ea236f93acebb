package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	indent "github.com/openconfig/goyang/pkg/indent"
	"golang.org/x/term"
)

const (
	indentUnit   = "  "
	sectionWidth = 60
)

// TerminalUI writes to a terminal or a pipe. Colours and the spinner are
// only used on a terminal.
type TerminalUI struct {
	level int
	out   io.Writer
	tty   bool
	au    aurora.Aurora
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewTerminalUI writes to os.Stdout.
func NewTerminalUI() *TerminalUI {
	return NewTerminalUIWithWriter(os.Stdout)
}

func NewTerminalUIWithWriter(out io.Writer) *TerminalUI {
	tty := isTerminal(out)
	return &TerminalUI{
		out: out,
		tty: tty,
		au:  aurora.NewAurora(tty),
	}
}

func (u *TerminalUI) prefix() string {
	return strings.Repeat(indentUnit, u.level)
}

func (u *TerminalUI) line(s string) {
	fmt.Fprintf(u.out, "%s%s\n", u.prefix(), s)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityEmphasis:
		return u.au.Bold(t.Text).String()
	}
	return t.Text
}

func (u *TerminalUI) Info(format string, args ...any) {
	u.line(fmt.Sprintf(format, args...))
}

func (u *TerminalUI) Success(format string, args ...any) {
	u.line(u.au.Green(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Warn(format string, args ...any) {
	u.line(u.au.Yellow(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Error(format string, args ...any) {
	u.line(u.au.Red(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Emphasis(format string, args ...any) {
	u.line(u.au.Bold(fmt.Sprintf(format, args...)).String())
}

// Section prints "----- title -----" padded to sectionWidth.
func (u *TerminalUI) Section(title string) {
	title = " " + title + " "
	dashes := sectionWidth - runewidth.StringWidth(title)
	if dashes < 4 {
		dashes = 4
	}
	left := dashes / 2
	fmt.Fprintf(u.out, "\n%s%s%s%s\n", u.prefix(), strings.Repeat("-", left), title, strings.Repeat("-", dashes-left))
}

func visibleWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

func padRight(s string, w int) string {
	if n := visibleWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func (u *TerminalUI) KeyValue(rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := visibleWidth(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		u.line(padRight(r[0], width) + "  " + r[1])
	}
}

// Table draws box borders in a dim colour. Cells may carry colour codes,
// widths are measured without them.
func (u *TerminalUI) Table(headers []string, rows [][]string) {
	cols := len(headers)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}
	widths := make([]int, cols)
	measure := func(cells []string) {
		for i, c := range cells {
			if w := visibleWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, r := range rows {
		measure(r)
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	rule := func(left, mid, right string) string {
		parts := make([]string, cols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return dim.Render(left + strings.Join(parts, mid) + right)
	}
	row := func(cells []string) string {
		parts := make([]string, cols)
		for i := range parts {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = " " + padRight(cell, widths[i]) + " "
		}
		bar := dim.Render("│")
		return bar + strings.Join(parts, bar) + bar
	}

	u.line(rule("┌", "┬", "┐"))
	if len(headers) > 0 {
		u.line(row(headers))
		u.line(rule("├", "┼", "┤"))
	}
	for _, r := range rows {
		u.line(row(r))
	}
	u.line(rule("└", "┴", "┘"))
}

// Spinner is a no-op on pipes so scripted output stays clean.
func (u *TerminalUI) Spinner(msg string) func() {
	if !u.tty {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

func (u *TerminalUI) JSON(v any) error {
	enc := json.NewEncoder(u.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (u *TerminalUI) Indent() UI {
	child := *u
	child.level++
	return &child
}

func (u *TerminalUI) Writer() io.Writer {
	if u.level == 0 {
		return u.out
	}
	return indent.NewWriter(u.out, u.prefix())
}
