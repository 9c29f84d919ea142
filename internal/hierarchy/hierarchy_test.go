package hierarchy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hierarchy.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

const basicReport = `Coverage Hierarchy Report
   SCORE   LINE   COND TOGGLE    FSM NAME
--------------------------------------------------------------
 61.56  93.33  48.75  55.08  49.08 tb
   61.56  93.33  48.75  55.08  49.08 dut_inst
     70.00  95.00  50.00  60.00  55.00 alu0
   40.00  80.00  30.00  45.00  35.00 mem_inst
`

func TestBuildBasic(t *testing.T) {
	forest, err := Build(writeReport(t, basicReport), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(forest.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", forest.Warnings)
	}
	if len(forest.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest.Roots))
	}

	tb := forest.Roots[0]
	if tb.Name != "tb" || tb.Path != "tb" {
		t.Errorf("root: name=%q path=%q", tb.Name, tb.Path)
	}
	if tb.Metrics.Score != 61.56 {
		t.Errorf("root score: %v", tb.Metrics.Score)
	}
	if len(tb.Children) != 2 {
		t.Fatalf("root should have 2 children, got %d", len(tb.Children))
	}

	dut, ok := forest.Find("tb.dut_inst")
	if !ok {
		t.Fatal("tb.dut_inst not found")
	}
	if dut.Name != "dut_inst" {
		t.Errorf("unexpected name %q", dut.Name)
	}
	if _, ok := dut.Children["alu0"]; !ok {
		t.Error("alu0 should be a child of dut_inst")
	}
	if alu, ok := forest.Find("tb.dut_inst.alu0"); !ok || alu.Metrics.Line != 95.00 {
		t.Error("tb.dut_inst.alu0 missing or wrong metrics")
	}
}

func TestPathInvariant(t *testing.T) {
	forest, err := Build(writeReport(t, basicReport), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	forest.Walk(func(n *Node) bool {
		parent, ok := forest.Parent(n)
		if ok {
			if want := parent.Path + PathSep + n.Name; n.Path != want {
				t.Errorf("path invariant broken: %q, want %q", n.Path, want)
			}
		} else if n.Path != n.Name {
			t.Errorf("root path %q should equal name %q", n.Path, n.Name)
		}
		return true
	})
}

func TestBuildNotApplicableColumns(t *testing.T) {
	report := `Title
HEADER
 50.00  -  48.75  -  49.08 tb
`
	forest, err := Build(writeReport(t, report), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	tb, ok := forest.Find("tb")
	if !ok {
		t.Fatal("tb not found")
	}
	if tb.Metrics.Line != -1 || tb.Metrics.Toggle != -1 {
		t.Errorf("dash columns should be the sentinel, got %v", tb.Metrics)
	}
	if tb.Metrics.Line == 0 || tb.Metrics.Toggle == 0 {
		t.Error("sentinel must not be zero")
	}
}

func TestBuildTrailingWeightColumn(t *testing.T) {
	report := `Title
HEADER
 50.00  90.00  48.75  55.00  49.08 tb 1
   40.00  80.00  30.00  45.00  35.00 child -
`
	forest, err := Build(writeReport(t, report), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(forest.Warnings) != 0 {
		t.Fatalf("weight columns should not warn: %v", forest.Warnings)
	}
	if _, ok := forest.Find("tb.child"); !ok {
		t.Error("tb.child not found")
	}
}

func TestBuildBadLineWarns(t *testing.T) {
	report := `Title
HEADER
 61.56  93.33  48.75  55.08  49.08 tb
 oops   93.33  48.75  55.08  49.08 broken
   40.00  80.00  30.00  45.00  35.00 child
`
	forest, err := Build(writeReport(t, report), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(forest.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", forest.Warnings)
	}
	// Line 4 of the file holds the broken record.
	if forest.Warnings[0].Line != 4 {
		t.Errorf("warning line = %d, want 4", forest.Warnings[0].Line)
	}
	if forest.Len() != 2 {
		t.Errorf("valid records should survive, got %d nodes", forest.Len())
	}
	if _, ok := forest.Find("tb.child"); !ok {
		t.Error("tb.child should exist despite the broken sibling line")
	}
}

func TestBuildEmptyFile(t *testing.T) {
	forest, err := Build(writeReport(t, ""), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("empty file should not error: %v", err)
	}
	if len(forest.Roots) != 0 || len(forest.Warnings) != 0 {
		t.Errorf("empty file should yield an empty forest, got %d roots %d warnings",
			len(forest.Roots), len(forest.Warnings))
	}
}

func TestBuildMissingFile(t *testing.T) {
	forest, err := Build(filepath.Join(t.TempDir(), "nope.txt"), hclog.NewNullLogger())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if forest != nil {
		t.Error("forest should be nil on fatal I/O error")
	}
}

func TestBuildFlatListing(t *testing.T) {
	report := `Title
HEADER
 50.00  90.00  48.75  55.00  49.08 a
 51.00  90.00  48.75  55.00  49.08 b
 52.00  90.00  48.75  55.00  49.08 c
`
	forest, err := Build(writeReport(t, report), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(forest.Roots) != 3 {
		t.Errorf("flat listing should yield 3 roots, got %d", len(forest.Roots))
	}
}
