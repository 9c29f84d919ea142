// Package hierarchy parses the design-hierarchy listing into a rooted forest
// of named nodes with coverage metrics and dot-separated hierarchical paths.
package hierarchy

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/covquery/cvq/internal/metrics"
	"github.com/covquery/cvq/internal/parse"
)

// PathSep joins hierarchy node names into hierarchical paths.
const PathSep = "."

// Node is one design unit in the hierarchy listing. Nodes carry no parent
// pointer; the parent is found by truncating Path at the last separator and
// asking the owning Forest.
type Node struct {
	Name     string
	Path     string // dot-separated, root-relative
	Metrics  metrics.Record
	Level    int // leading-whitespace count of the source line
	Children map[string]*Node
}

// Forest is the fully built result of parsing one hierarchy listing.
// It is immutable after Build returns and safe for concurrent reads.
type Forest struct {
	Roots    []*Node
	Warnings []parse.Warning

	byPath map[string]*Node
}

// Find returns the node with the given dot-separated path.
func (f *Forest) Find(path string) (*Node, bool) {
	n, ok := f.byPath[path]
	return n, ok
}

// Parent returns the parent of n, found by path truncation. Root nodes have
// no parent.
func (f *Forest) Parent(n *Node) (*Node, bool) {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if n.Path[i] == PathSep[0] {
			return f.Find(n.Path[:i])
		}
	}
	return nil, false
}

// Len returns the total node count.
func (f *Forest) Len() int {
	return len(f.byPath)
}

// Walk visits every node depth-first in insertion-independent order,
// roots first. fn returning false stops the walk.
func (f *Forest) Walk(fn func(*Node) bool) {
	var visit func(*Node) bool
	visit = func(n *Node) bool {
		if !fn(n) {
			return false
		}
		for _, c := range n.Children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	for _, r := range f.Roots {
		if !visit(r) {
			return
		}
	}
}

// Build parses the hierarchy listing at path. The first two non-blank lines
// are the title and column header and are discarded; rule lines are skipped.
// Lines that cannot be tokenized produce warnings, not errors. A missing
// file is a fatal I/O error; an empty file yields an empty forest.
func Build(path string, logger hclog.Logger) (*Forest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hierarchy report %s: %w", path, err)
	}
	defer file.Close()

	forest := &Forest{byPath: make(map[string]*Node)}

	builder := parse.NewTreeBuilder(func(parent *Node, e parse.Entry) *Node {
		n := &Node{
			Name:     e.Name,
			Metrics:  e.Metrics,
			Level:    e.Level,
			Children: make(map[string]*Node),
		}
		if parent == nil {
			n.Path = n.Name
			forest.Roots = append(forest.Roots, n)
		} else {
			n.Path = parent.Path + PathSep + n.Name
			parent.Children[n.Name] = n
		}
		forest.byPath[n.Path] = n
		return n
	})

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	headerLeft := 2
	prevLevel := -1
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		fields := parse.Fields(line)
		if len(fields) == 0 || parse.IsRule(line) {
			continue
		}
		if headerLeft > 0 {
			headerLeft--
			continue
		}

		entry, warn := parseLine(line, fields, lineNum)
		if warn != nil {
			forest.Warnings = append(forest.Warnings, *warn)
			logger.Warn("skipping hierarchy line", "file", path, "line", warn.Line, "reason", warn.Message)
			continue
		}

		if prevLevel >= 0 && entry.Level > prevLevel+1 {
			logger.Debug("indentation jump in hierarchy listing",
				"file", path, "line", lineNum, "from", prevLevel, "to", entry.Level)
		}
		prevLevel = entry.Level

		builder.Push(entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hierarchy report %s: %w", path, err)
	}

	logger.Debug("hierarchy listing parsed",
		"file", path, "nodes", forest.Len(), "roots", len(forest.Roots), "warnings", len(forest.Warnings))
	return forest, nil
}

// parseLine tokenizes one data line:
//
//	<score> <line> <cond> <toggle> <fsm> <name> [<weight>]
//
// where the weight column, when present, is numeric or "-" and is discarded.
func parseLine(line string, fields []string, lineNum int) (parse.Entry, *parse.Warning) {
	if len(fields) < 6 {
		w := parse.Warnf(lineNum, "expected 6 columns, got %d", len(fields))
		return parse.Entry{}, &w
	}

	rec, err := metrics.ParseRecord(fields[:5])
	if err != nil {
		w := parse.Warnf(lineNum, "%v", err)
		return parse.Entry{}, &w
	}

	name := fields[5]
	switch extra := fields[6:]; len(extra) {
	case 0:
	case 1:
		if _, err := strconv.ParseFloat(extra[0], 64); err != nil && extra[0] != "-" {
			w := parse.Warnf(lineNum, "unexpected trailing column %q", extra[0])
			return parse.Entry{}, &w
		}
	default:
		w := parse.Warnf(lineNum, "expected at most 7 columns, got %d", len(fields))
		return parse.Entry{}, &w
	}

	return parse.Entry{
		Level:   parse.IndentLevel(line),
		Name:    name,
		Metrics: rec,
		Line:    lineNum,
	}, nil
}
