// Package parse holds the pieces shared by the report parsers: the tolerant
// whitespace tokenizer, structural parse warnings, and the indentation stack
// builder that reconstructs parent/child trees from flat listings.
//
// The coverage tool's reports are line-oriented with fixed-width numeric
// columns and no delimiter characters, so every parser splits lines on runs
// of whitespace rather than applying a formal grammar.
package parse

import (
	"fmt"
	"strings"

	"github.com/covquery/cvq/internal/metrics"
)

// Warning records a non-fatal structural problem on one report line.
// Ingestion continues past warnings; they are surfaced in diagnostics.
type Warning struct {
	Line    int // 1-based source line number
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Warnf builds a Warning for the given 1-based line number.
func Warnf(line int, format string, args ...any) Warning {
	return Warning{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Fields splits a report line on runs of whitespace. It is the single
// tokenizer used by all report families.
func Fields(line string) []string {
	return strings.Fields(line)
}

// IndentLevel counts the leading space and tab characters on a data line.
// The count is the only parent/child signal the reports carry; only its
// relative ordering between lines matters to the tree builder.
func IndentLevel(line string) int {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return len(line)
}

// IsRule reports whether the line is a horizontal rule (the separator rows
// the tool prints under headers). Rules are skipped without warnings.
func IsRule(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r != '-' && r != '=' {
			return false
		}
	}
	return true
}

// Entry is one parsed data line fed to the tree builder.
type Entry struct {
	Level   int
	Name    string
	Metrics metrics.Record
	Line    int // 1-based source line number
}
