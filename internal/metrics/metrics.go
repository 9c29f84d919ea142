// Package metrics defines the fixed-arity coverage record shared by every
// report parser in cvq. A record carries the six coverage percentages the
// coverage tool emits per module, instance, or hierarchy node.
package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// NotApplicable is the sentinel stored for a metric column printed as "-".
// It is distinct from 0.0, which means "measured, nothing covered".
const NotApplicable = -1.0

// Record holds one row of coverage percentages. Fields are either in
// [0, 100] or NotApplicable. Records are immutable once parsed.
type Record struct {
	Score  float64 // overall weighted score
	Line   float64
	Cond   float64
	Toggle float64
	FSM    float64
	Branch float64
}

// IsApplicable reports whether v is a real percentage rather than the
// NotApplicable sentinel.
func IsApplicable(v float64) bool {
	return v != NotApplicable
}

// ParseField parses one metric column. A literal "-" yields NotApplicable.
func ParseField(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "-" || s == "--" {
		return NotApplicable, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("metric %q: %w", s, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("metric %q: out of range [0,100]", s)
	}
	return v, nil
}

// ParseRecord parses five or six metric columns in report order
// (score, line, cond, toggle, fsm[, branch]). Reports that omit the branch
// column get NotApplicable for it.
func ParseRecord(fields []string) (Record, error) {
	if len(fields) != 5 && len(fields) != 6 {
		return Record{}, fmt.Errorf("expected 5 or 6 metric columns, got %d", len(fields))
	}

	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := ParseField(f)
		if err != nil {
			return Record{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}

	rec := Record{
		Score:  vals[0],
		Line:   vals[1],
		Cond:   vals[2],
		Toggle: vals[3],
		FSM:    vals[4],
		Branch: NotApplicable,
	}
	if len(vals) == 6 {
		rec.Branch = vals[5]
	}
	return rec, nil
}

// String renders the record the way the reports print it, with "-" for
// columns that do not apply.
func (r Record) String() string {
	format := func(v float64) string {
		if !IsApplicable(v) {
			return "-"
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return fmt.Sprintf("score=%s line=%s cond=%s toggle=%s fsm=%s branch=%s",
		format(r.Score), format(r.Line), format(r.Cond),
		format(r.Toggle), format(r.FSM), format(r.Branch))
}
