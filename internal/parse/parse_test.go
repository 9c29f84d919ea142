package parse

import (
	"testing"
)

func TestIndentLevel(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"tb", 0},
		{" 61.56  93.33 tb", 1},
		{"   61.56  93.33 dut_inst", 3},
		{"\t\tname", 2},
		{"", 0},
		{"    ", 4},
	}
	for _, tt := range tests {
		if got := IndentLevel(tt.line); got != tt.want {
			t.Errorf("IndentLevel(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestIsRule(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"----------------", true},
		{"================", true},
		{"  ------  ", true},
		{"", false},
		{"   ", false},
		{"---- name ----", false},
		{"61.56", false},
	}
	for _, tt := range tests {
		if got := IsRule(tt.line); got != tt.want {
			t.Errorf("IsRule(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

// testNode is a minimal tree shape for exercising the builder.
type testNode struct {
	name     string
	level    int
	children []*testNode
}

func buildTest(entries []Entry) []*testNode {
	var roots []*testNode
	b := NewTreeBuilder(func(parent *testNode, e Entry) *testNode {
		n := &testNode{name: e.Name, level: e.Level}
		if parent == nil {
			roots = append(roots, n)
		} else {
			parent.children = append(parent.children, n)
		}
		return n
	})
	for _, e := range entries {
		b.Push(e)
	}
	return roots
}

func TestTreeBuilderBasic(t *testing.T) {
	roots := buildTest([]Entry{
		{Level: 0, Name: "tb"},
		{Level: 2, Name: "dut_inst"},
		{Level: 4, Name: "alu"},
		{Level: 2, Name: "mem_inst"},
	})

	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	tb := roots[0]
	if tb.name != "tb" || len(tb.children) != 2 {
		t.Fatalf("root: got %q with %d children", tb.name, len(tb.children))
	}
	if tb.children[0].name != "dut_inst" || tb.children[1].name != "mem_inst" {
		t.Errorf("children order wrong: %q, %q", tb.children[0].name, tb.children[1].name)
	}
	if len(tb.children[0].children) != 1 || tb.children[0].children[0].name != "alu" {
		t.Errorf("alu should be under dut_inst")
	}
}

func TestTreeBuilderFlat(t *testing.T) {
	roots := buildTest([]Entry{
		{Level: 0, Name: "a"},
		{Level: 0, Name: "b"},
		{Level: 0, Name: "c"},
	})
	if len(roots) != 3 {
		t.Fatalf("flat listing should yield 3 roots, got %d", len(roots))
	}
	for _, r := range roots {
		if len(r.children) != 0 {
			t.Errorf("root %q should have no children", r.name)
		}
	}
}

func TestTreeBuilderLevelJump(t *testing.T) {
	// A jump from level 0 straight to level 3: the deep node attaches to
	// the nearest shallower ancestor still on the stack.
	roots := buildTest([]Entry{
		{Level: 0, Name: "root"},
		{Level: 3, Name: "deep"},
		{Level: 1, Name: "shallow"},
	})
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	r := roots[0]
	if len(r.children) != 2 {
		t.Fatalf("expected root to gain both children, got %d", len(r.children))
	}
	if r.children[0].name != "deep" || r.children[1].name != "shallow" {
		t.Errorf("unexpected children: %q, %q", r.children[0].name, r.children[1].name)
	}
}

func TestTreeBuilderSiblingAfterDescent(t *testing.T) {
	roots := buildTest([]Entry{
		{Level: 0, Name: "a"},
		{Level: 2, Name: "a1"},
		{Level: 0, Name: "b"},
	})
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[1].name != "b" || len(roots[1].children) != 0 {
		t.Errorf("b should be an empty second root")
	}
}

func TestTreeBuilderReset(t *testing.T) {
	b := NewTreeBuilder(func(parent *testNode, e Entry) *testNode {
		return &testNode{name: e.Name}
	})
	b.Push(Entry{Level: 0, Name: "x"})
	b.Push(Entry{Level: 1, Name: "y"})
	if b.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", b.Depth())
	}
	b.Reset()
	if b.Depth() != 0 {
		t.Errorf("expected depth 0 after reset, got %d", b.Depth())
	}
}

func TestWarnf(t *testing.T) {
	w := Warnf(17, "cannot parse %q", "xyz")
	if w.Line != 17 {
		t.Errorf("expected line 17, got %d", w.Line)
	}
	if w.String() != `line 17: cannot parse "xyz"` {
		t.Errorf("unexpected warning string: %q", w.String())
	}
}
