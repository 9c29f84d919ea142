package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/covquery/cvq/internal/detail"
	"github.com/covquery/cvq/internal/hierarchy"
	"github.com/covquery/cvq/internal/metrics"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"yaml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{" text ", FormatText, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]int{"modules": 3}
	if err := Marshal(&buf, v, FormatJSON); err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back map[string]int
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if back["modules"] != 3 {
		t.Errorf("round trip lost data: %v", back)
	}
}

func TestMarshalTextRejected(t *testing.T) {
	var buf bytes.Buffer
	if err := Marshal(&buf, struct{}{}, FormatText); err == nil {
		t.Error("text format has no generic marshaller, expected error")
	}
}

func TestWriteDetailModule(t *testing.T) {
	d := &detail.Detail{
		Name:     "cpu_core",
		IsModule: true,
		Metrics:  metrics.Record{Score: 61.56, Line: 93.33, Cond: 48.75, Toggle: 55.08, FSM: 49.08, Branch: 70},
		SourceFiles: map[string]string{
			"cpu_core.v": "/rtl/cpu_core.v",
		},
		Instances: map[string]detail.InstanceSummary{
			"core0": {Name: "core0", Path: "top/cpu/core0", Score: 61.56},
		},
	}

	var buf bytes.Buffer
	WriteDetail(&buf, d)
	out := buf.String()
	for _, want := range []string{"Module cpu_core", "/rtl/cpu_core.v", "top/cpu/core0", "score 61.56"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDetailInstance(t *testing.T) {
	d := &detail.Detail{
		Name: "top/cpu/core0",
		Instance: &detail.InstanceView{
			InstanceMetrics: metrics.Record{Score: 61.56, Branch: metrics.NotApplicable},
			ModuleName:      "cpu_core",
			ParentPath:      "top/cpu",
			Children: map[string]detail.ChildSummary{
				"alu0": {Name: "alu0", Score: 42},
			},
		},
	}

	var buf bytes.Buffer
	WriteDetail(&buf, d)
	out := buf.String()
	for _, want := range []string{"Instance top/cpu/core0", "module cpu_core", "parent: top/cpu", "alu0", "branch -"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTree(t *testing.T) {
	child := &hierarchy.Node{Name: "dut_inst", Path: "tb.dut_inst", Metrics: metrics.Record{Score: 50}, Children: map[string]*hierarchy.Node{}}
	root := &hierarchy.Node{Name: "tb", Path: "tb", Metrics: metrics.Record{Score: 61.56},
		Children: map[string]*hierarchy.Node{"dut_inst": child}}

	var buf bytes.Buffer
	WriteTree(&buf, []*hierarchy.Node{root})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	if !strings.Contains(lines[0], "tb") || strings.HasPrefix(lines[0], "  ") {
		t.Errorf("root line wrong: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  ") || !strings.Contains(lines[1], "dut_inst") {
		t.Errorf("child line should be indented: %q", lines[1])
	}
}
