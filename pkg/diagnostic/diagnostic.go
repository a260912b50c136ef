// Package diagnostic checks snippet libraries and reports problems in
// formats an editor or a terminal can consume.
package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/walteh/gosnip/pkg/config"
	"github.com/walteh/gosnip/pkg/snippet"
	"gitlab.com/tozd/go/errors"
)

// Diagnostics groups the findings for one library file.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Hints    []Diagnostic
}

// Diagnostic is a single finding, attributed to the snippet that
// produced it.
type Diagnostic struct {
	Message  string
	File     string
	Snippet  string
	Severity Severity
}

// Severity is the severity level of a diagnostic.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
	Hint    Severity = "hint"
)

// HasErrors reports whether any error-level finding exists.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Count returns the total number of findings.
func (d *Diagnostics) Count() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Hints)
}

// CheckLibrary validates every snippet in a library:
//
//   - bodies must parse; a SyntaxError is reported with the parser
//     state it occurred in
//   - snippet names and prefixes must be unique within the library
//   - an empty body is a warning
//   - a body with no tabstops at all is surfaced as a hint, since the
//     snippet degenerates to plain text insertion
func CheckLibrary(file string, lib *config.Library) *Diagnostics {
	d := &Diagnostics{}

	names := map[string]bool{}
	prefixes := map[string]string{}

	for _, entry := range lib.Snippets {
		if names[entry.Name] {
			d.Errors = append(d.Errors, Diagnostic{
				Message:  fmt.Sprintf("duplicate snippet name %q", entry.Name),
				File:     file,
				Snippet:  entry.Name,
				Severity: Error,
			})
		}
		names[entry.Name] = true

		if entry.Prefix != "" {
			if other, ok := prefixes[entry.Prefix]; ok {
				d.Warnings = append(d.Warnings, Diagnostic{
					Message:  fmt.Sprintf("prefix %q already used by snippet %q", entry.Prefix, other),
					File:     file,
					Snippet:  entry.Name,
					Severity: Warning,
				})
			} else {
				prefixes[entry.Prefix] = entry.Name
			}
		}

		if entry.Body == "" {
			d.Warnings = append(d.Warnings, Diagnostic{
				Message:  "snippet body is empty",
				File:     file,
				Snippet:  entry.Name,
				Severity: Warning,
			})
			continue
		}

		tree, err := snippet.Parse(entry.Body)
		if err != nil {
			var serr *snippet.SyntaxError
			msg := err.Error()
			if errors.As(err, &serr) {
				msg = fmt.Sprintf("%s (in %s)", serr.Reason, serr.State)
			}
			d.Errors = append(d.Errors, Diagnostic{
				Message:  msg,
				File:     file,
				Snippet:  entry.Name,
				Severity: Error,
			})
			continue
		}

		if len(snippet.TabstopIDs(tree)) == 0 {
			d.Hints = append(d.Hints, Diagnostic{
				Message:  "body has no tabstops, snippet inserts plain text",
				File:     file,
				Snippet:  entry.Name,
				Severity: Hint,
			})
		}
	}

	return d
}

// Formatter renders diagnostics into an output format.
type Formatter interface {
	Format(d *Diagnostics) ([]byte, error)
}

// TextFormatter renders one finding per line for terminal output.
type TextFormatter struct{}

func (TextFormatter) Format(d *Diagnostics) ([]byte, error) {
	if d == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	var buf bytes.Buffer
	write := func(items []Diagnostic) {
		for _, item := range items {
			fmt.Fprintf(&buf, "%s: %s: %s: %s\n", item.File, item.Snippet, item.Severity, item.Message)
		}
	}
	write(d.Errors)
	write(d.Warnings)
	write(d.Hints)
	return buf.Bytes(), nil
}

// JSONFormatter renders findings as a flat JSON array with numeric
// severities (error 1, warning 2, info 3, hint 4), the levels editor
// protocols use.
type JSONFormatter struct{}

type jsonDiagnostic struct {
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Snippet  string `json:"snippet"`
}

func (JSONFormatter) Format(d *Diagnostics) ([]byte, error) {
	if d == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	out := []jsonDiagnostic{}
	add := func(items []Diagnostic) {
		for _, item := range items {
			out = append(out, jsonDiagnostic{
				Severity: severityLevel(item.Severity),
				Message:  item.Message,
				File:     item.File,
				Snippet:  item.Snippet,
			})
		}
	}
	add(d.Errors)
	add(d.Warnings)
	add(d.Hints)
	return json.Marshal(out)
}

func severityLevel(s Severity) int {
	switch s {
	case Error:
		return 1
	case Warning:
		return 2
	case Info:
		return 3
	default:
		return 4
	}
}
