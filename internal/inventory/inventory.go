// Package inventory parses the module-inventory listing into a flat mapping
// of hierarchical path to module record, with explicit parent/child path
// links and the list of top-level modules.
package inventory

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/covquery/cvq/internal/metrics"
	"github.com/covquery/cvq/internal/parse"
)

// PathSep joins module names into hierarchical paths. The inventory shares
// the hierarchy listing's dot convention.
const PathSep = "."

// countHeaderPrefix introduces the declared module count on the first
// header line.
const countHeaderPrefix = "Modules covered by scope:"

// Record is one module row from the inventory. Parent and children are weak
// references by path: relations are resolved through the owning Inventory,
// never through pointers, so records form no ownership cycles.
type Record struct {
	Name       string
	Path       string
	Metrics    metrics.Record
	Level      int
	ParentPath string   // empty for top-level modules
	ChildPaths []string // first-encountered order
	SourceLine int      // 1-based, diagnostic only
	IsLeaf     bool     // true iff ChildPaths is empty
}

// Inventory owns every parsed record. Immutable after Build returns.
type Inventory struct {
	Records  map[string]*Record
	TopLevel []string // paths of level-0 modules, file order
	// DeclaredTotal is the count from the report header. It pre-sizes the
	// maps and feeds diagnostics; it is never trusted for correctness.
	DeclaredTotal int
	Warnings      []parse.Warning
}

// Find returns the record with the given dot-separated path.
func (inv *Inventory) Find(path string) (*Record, bool) {
	r, ok := inv.Records[path]
	return r, ok
}

// Parent resolves a record's parent through its ParentPath weak reference.
func (inv *Inventory) Parent(r *Record) (*Record, bool) {
	if r.ParentPath == "" {
		return nil, false
	}
	return inv.Find(r.ParentPath)
}

// Len returns the number of parsed records.
func (inv *Inventory) Len() int {
	return len(inv.Records)
}

// Build parses the inventory listing at path. The declared-count header and
// the column-header line are consumed first; each remaining data line becomes
// a Record. CountTolerance controls the declared-vs-parsed divergence warning.
func Build(path string, countTolerance int, logger hclog.Logger) (*Inventory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory report %s: %w", path, err)
	}
	defer file.Close()

	inv := &Inventory{Records: make(map[string]*Record)}

	builder := parse.NewTreeBuilder(func(parent *Record, e parse.Entry) *Record {
		r := &Record{
			Name:       e.Name,
			Metrics:    e.Metrics,
			Level:      e.Level,
			SourceLine: e.Line,
			IsLeaf:     true,
		}
		if parent == nil {
			r.Path = r.Name
			inv.TopLevel = append(inv.TopLevel, r.Path)
		} else {
			r.Path = parent.Path + PathSep + r.Name
			r.ParentPath = parent.Path
			parent.ChildPaths = append(parent.ChildPaths, r.Path)
			parent.IsLeaf = false
		}
		inv.Records[r.Path] = r
		return r
	})

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	sawCount := false
	haveCount := false
	sawColumns := false
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if len(parse.Fields(line)) == 0 || parse.IsRule(line) {
			continue
		}

		if !sawCount {
			sawCount = true
			n, warn := parseCountHeader(line, lineNum)
			if warn != nil {
				inv.Warnings = append(inv.Warnings, *warn)
				logger.Warn("inventory count header", "file", path, "line", warn.Line, "reason", warn.Message)
				continue
			}
			inv.DeclaredTotal = n
			haveCount = true
			// Pre-size only; the declared count is a performance hint.
			if n > 0 {
				inv.Records = make(map[string]*Record, n)
				inv.TopLevel = make([]string, 0, n)
			}
			continue
		}
		if !sawColumns {
			sawColumns = true
			continue
		}

		entry, warn := parseLine(line, lineNum)
		if warn != nil {
			inv.Warnings = append(inv.Warnings, *warn)
			logger.Warn("skipping inventory line", "file", path, "line", warn.Line, "reason", warn.Message)
			continue
		}
		builder.Push(entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read inventory report %s: %w", path, err)
	}

	if diff := inv.DeclaredTotal - inv.Len(); haveCount && (diff > countTolerance || -diff > countTolerance) {
		inv.Warnings = append(inv.Warnings, parse.Warnf(1,
			"header declares %d modules, parsed %d", inv.DeclaredTotal, inv.Len()))
		logger.Warn("inventory count mismatch",
			"file", path, "declared", inv.DeclaredTotal, "parsed", inv.Len())
	}

	logger.Debug("inventory listing parsed",
		"file", path, "modules", inv.Len(), "top_level", len(inv.TopLevel), "warnings", len(inv.Warnings))
	return inv, nil
}

// parseCountHeader extracts N from "Modules covered by scope: <N>".
func parseCountHeader(line string, lineNum int) (int, *parse.Warning) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, countHeaderPrefix) {
		w := parse.Warnf(lineNum, "expected %q header, got %q", countHeaderPrefix, trimmed)
		return 0, &w
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, countHeaderPrefix)))
	if err != nil {
		w := parse.Warnf(lineNum, "module count: %v", err)
		return 0, &w
	}
	return n, nil
}

// parseLine tokenizes one data line:
//
//	<score> <line> <cond> <toggle> <fsm> <branch> <module-name>
func parseLine(line string, lineNum int) (parse.Entry, *parse.Warning) {
	fields := parse.Fields(line)
	if len(fields) != 7 {
		w := parse.Warnf(lineNum, "expected 7 columns, got %d", len(fields))
		return parse.Entry{}, &w
	}

	rec, err := metrics.ParseRecord(fields[:6])
	if err != nil {
		w := parse.Warnf(lineNum, "%v", err)
		return parse.Entry{}, &w
	}

	return parse.Entry{
		Level:   parse.IndentLevel(line),
		Name:    fields[6],
		Metrics: rec,
		Line:    lineNum,
	}, nil
}
