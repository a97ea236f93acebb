// Package ui renders command results for people and for scripts. The
// terminal implementation colours and boxes its output; the recording one
// keeps every call for tests.
package ui

import (
	"encoding/json"
	"io"
)

type Severity uint8

const (
	SeverityInfo     Severity = iota // plain
	SeveritySuccess                  // green, found
	SeverityWarn                     // yellow, suspicious
	SeverityError                    // red, missing
	SeverityEmphasis                 // bold
)

// StyledText is a value with a severity. It marshals to the bare text so
// JSON output never carries colour codes.
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

func Found(text string) StyledText   { return StyledText{Text: text, Severity: SeveritySuccess} }
func Missing(text string) StyledText { return StyledText{Text: text, Severity: SeverityError} }
func Suspect(text string) StyledText { return StyledText{Text: text, Severity: SeverityWarn} }

// UI is everything a command needs to report results.
type UI interface {
	// Style colours t for embedding in a line. Without colours it returns
	// the plain text.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	// Emphasis is for the one line the user came for, the resolved address.
	Emphasis(format string, args ...any)

	Section(title string)
	// KeyValue prints label/value pairs with the values aligned.
	KeyValue(rows [][2]string)
	// Table prints a bordered table. headers may be empty.
	Table(headers []string, rows [][]string)

	// Spinner shows msg while a lookup runs. Call the returned func to
	// clear it.
	Spinner(msg string) func()

	// JSON writes v as indented JSON, for --json output.
	JSON(v any) error

	// Indent returns a UI one level deeper on the same output.
	Indent() UI
	Writer() io.Writer
}
