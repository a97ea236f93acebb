package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Entry is one recorded call.
type Entry struct {
	Method string
	Value  string
	Rows   [][]string
}

type recording struct {
	mu      sync.Mutex
	entries []Entry
	buf     bytes.Buffer
}

// RecordingUI keeps every call so tests can assert on what a command
// printed. Children from Indent share the log.
type RecordingUI struct {
	rec   *recording
	level int
}

func NewRecordingUI() *RecordingUI {
	return &RecordingUI{rec: &recording{}}
}

func (r *RecordingUI) record(e Entry) {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	r.rec.entries = append(r.rec.entries, e)
}

func (r *RecordingUI) Style(t StyledText) string { return t.Text }

func (r *RecordingUI) Info(format string, args ...any) {
	r.record(Entry{Method: "Info", Value: fmt.Sprintf(format, args...)})
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.record(Entry{Method: "Success", Value: fmt.Sprintf(format, args...)})
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.record(Entry{Method: "Warn", Value: fmt.Sprintf(format, args...)})
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.record(Entry{Method: "Error", Value: fmt.Sprintf(format, args...)})
}

func (r *RecordingUI) Emphasis(format string, args ...any) {
	r.record(Entry{Method: "Emphasis", Value: fmt.Sprintf(format, args...)})
}

func (r *RecordingUI) Section(title string) {
	r.record(Entry{Method: "Section", Value: title})
}

func (r *RecordingUI) KeyValue(rows [][2]string) {
	e := Entry{Method: "KeyValue"}
	for _, kv := range rows {
		e.Rows = append(e.Rows, []string{kv[0], kv[1]})
	}
	r.record(e)
}

func (r *RecordingUI) Table(headers []string, rows [][]string) {
	r.record(Entry{Method: "Table", Value: strings.Join(headers, "|"), Rows: rows})
}

func (r *RecordingUI) Spinner(msg string) func() { return func() {} }

func (r *RecordingUI) JSON(v any) error {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return json.NewEncoder(&r.rec.buf).Encode(v)
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{rec: r.rec, level: r.level + 1}
}

func (r *RecordingUI) Writer() io.Writer {
	return &lockedWriter{rec: r.rec}
}

type lockedWriter struct {
	rec *recording
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.rec.mu.Lock()
	defer w.rec.mu.Unlock()
	return w.rec.buf.Write(p)
}

func (r *RecordingUI) Entries() []Entry {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return append([]Entry{}, r.rec.entries...)
}

// Messages returns the values recorded for method.
func (r *RecordingUI) Messages(method string) []string {
	out := []string{}
	for _, e := range r.Entries() {
		if e.Method == method {
			out = append(out, e.Value)
		}
	}
	return out
}

// HasMessage reports whether any entry value or table cell contains substr,
// ignoring case.
func (r *RecordingUI) HasMessage(substr string) bool {
	substr = strings.ToLower(substr)
	for _, e := range r.Entries() {
		if strings.Contains(strings.ToLower(e.Value), substr) {
			return true
		}
		for _, row := range e.Rows {
			for _, cell := range row {
				if strings.Contains(strings.ToLower(cell), substr) {
					return true
				}
			}
		}
	}
	return false
}

// Output is everything written through Writer and JSON.
func (r *RecordingUI) Output() string {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return r.rec.buf.String()
}
