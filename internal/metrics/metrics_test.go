package metrics

import (
	"strings"
	"testing"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"61.56", 61.56, false},
		{"0.00", 0, false},
		{"100.00", 100, false},
		{"  93.33 ", 93.33, false},
		{"-", NotApplicable, false},
		{"--", NotApplicable, false},
		{"abc", 0, true},
		{"101.5", 0, true},
		{"-4.0", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseField(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseField(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseField(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseField(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseRecordSixColumns(t *testing.T) {
	rec, err := ParseRecord([]string{"61.56", "93.33", "48.75", "55.08", "49.08", "70.00"})
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if rec.Score != 61.56 || rec.Line != 93.33 || rec.Cond != 48.75 {
		t.Errorf("unexpected record: %v", rec)
	}
	if rec.Branch != 70.00 {
		t.Errorf("expected branch 70.00, got %v", rec.Branch)
	}
}

func TestParseRecordFiveColumns(t *testing.T) {
	rec, err := ParseRecord([]string{"61.56", "93.33", "48.75", "55.08", "49.08"})
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if IsApplicable(rec.Branch) {
		t.Errorf("expected NotApplicable branch, got %v", rec.Branch)
	}
}

func TestParseRecordSentinel(t *testing.T) {
	rec, err := ParseRecord([]string{"61.56", "-", "48.75", "-", "49.08", "-"})
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if IsApplicable(rec.Line) || IsApplicable(rec.Toggle) || IsApplicable(rec.Branch) {
		t.Errorf("dash columns should be NotApplicable: %v", rec)
	}
	if !IsApplicable(rec.Score) || !IsApplicable(rec.Cond) {
		t.Errorf("numeric columns should be applicable: %v", rec)
	}
}

func TestParseRecordArity(t *testing.T) {
	if _, err := ParseRecord([]string{"1.0", "2.0"}); err == nil {
		t.Error("expected error for 2 columns")
	}
	if _, err := ParseRecord(nil); err == nil {
		t.Error("expected error for no columns")
	}
}

func TestRecordString(t *testing.T) {
	rec := Record{Score: 61.56, Line: 93.33, Cond: NotApplicable, Toggle: 55.08, FSM: 49.08, Branch: NotApplicable}
	s := rec.String()
	if !strings.Contains(s, "score=61.56") {
		t.Errorf("missing score in %q", s)
	}
	if !strings.Contains(s, "cond=-") || !strings.Contains(s, "branch=-") {
		t.Errorf("sentinel columns should print as dash: %q", s)
	}
}
