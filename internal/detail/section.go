package detail

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/covquery/cvq/internal/metrics"
)

// Detail is the parsed payload of one section. It is built lazily per query
// and owned by the caller; the store does not cache payloads.
type Detail struct {
	Name     string // module name, or instance path for instance sections
	IsModule bool
	Metrics  metrics.Record

	// SourceFiles maps file base name to full path. Module sections only.
	SourceFiles map[string]string
	// Instances maps instance local name to its summary row from the
	// "Instances of <module>" table. Module sections only.
	Instances map[string]InstanceSummary

	// Instance holds the nested metric views. Instance sections only.
	Instance *InstanceView
}

// InstanceSummary is one row of a module's instance table.
type InstanceSummary struct {
	Name  string // last path segment
	Path  string // slash-separated instance path
	Score float64
}

// InstanceView carries the four metric views an instance section provides
// plus its module type, parent path, and child subtree summaries.
type InstanceView struct {
	InstanceMetrics metrics.Record // the instance alone
	SubtreeMetrics  metrics.Record // instance plus all descendants
	ModuleMetrics   metrics.Record // the instance's module template
	ParentMetrics   metrics.Record // the enclosing parent context

	ModuleName string
	ParentPath string
	Children   map[string]ChildSummary
}

// ChildSummary is one row of an instance's "Subtrees of children" table.
type ChildSummary struct {
	Name  string
	Score float64
}

// Labels that structure a section body. All are matched after trimming, so
// both "Source File(s):" and "Source File(s) :" forms are accepted.
const (
	sourceFilesLabel  = "Source File(s)"
	instancesOfPrefix = "Instances of "
	instanceLabel     = "Instance"
	subtreeLabel      = "Instance subtree"
	nestedModulePfx   = "Module ("
	nestedParentPfx   = "Parent ("
	childrenLabel     = "Subtrees of children"
)

// parseSection parses exactly one section's byte span. The reader is scoped
// to the span by the caller; anything structurally wrong here means the file
// changed after the index was built, which is fatal for this query only.
func parseSection(r io.Reader, entry IndexEntry) (*Detail, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty section: %w", scanner.Err())
	}
	if err := checkHeader(scanner.Text(), entry); err != nil {
		return nil, err
	}

	d := &Detail{
		Name:     entry.Key,
		IsModule: entry.Kind == KindModule,
	}
	if d.IsModule {
		d.SourceFiles = make(map[string]string)
		d.Instances = make(map[string]InstanceSummary)
		if err := parseModuleBody(scanner, d); err != nil {
			return nil, err
		}
	} else {
		d.Instance = &InstanceView{Children: make(map[string]ChildSummary)}
		if err := parseInstanceBody(scanner, d); err != nil {
			return nil, err
		}
		d.Metrics = d.Instance.InstanceMetrics
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read section: %w", err)
	}
	return d, nil
}

// checkHeader verifies the section still starts with the header the index
// recorded. A mismatch means the file changed under the store.
func checkHeader(line string, entry IndexEntry) error {
	want := moduleHeaderPrefix + entry.Key
	if entry.Kind == KindInstance {
		want = instanceHeaderPrefix + entry.Key
	}
	if trimLineEnd(line) != want {
		return fmt.Errorf("section header changed: expected %q, found %q", want, trimLineEnd(line))
	}
	return nil
}

// parseModuleBody handles the metrics pair, the source-file list, and the
// instance table of a module section.
func parseModuleBody(scanner *bufio.Scanner, d *Detail) error {
	sawMetrics := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(trimLineEnd(line))

		switch {
		case trimmed == "" || isRule(trimmed):
			continue

		case strings.TrimSpace(strings.TrimSuffix(trimmed, ":")) == sourceFilesLabel:
			parseSourceFiles(scanner, d)

		case strings.HasPrefix(trimmed, instancesOfPrefix):
			parseSummaryTable(scanner, func(score float64, name string) {
				d.Instances[path.Base(name)] = InstanceSummary{
					Name:  path.Base(name),
					Path:  name,
					Score: score,
				}
			})

		case !sawMetrics && isColumnHeader(trimmed):
			rec, err := scanMetricsValues(scanner)
			if err != nil {
				return fmt.Errorf("module metrics: %w", err)
			}
			d.Metrics = rec
			sawMetrics = true
		}
	}
	if !sawMetrics {
		return fmt.Errorf("module section %q has no metrics block", d.Name)
	}
	return nil
}

// parseInstanceBody handles the four labeled metric views and the child
// subtree table of an instance section.
func parseInstanceBody(scanner *bufio.Scanner, d *Detail) error {
	view := d.Instance
	seen := 0
	for scanner.Scan() {
		trimmed := strings.TrimSpace(trimLineEnd(scanner.Text()))
		label := strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))

		switch {
		case trimmed == "" || isRule(trimmed):
			continue

		case label == instanceLabel:
			rec, err := scanLabeledMetrics(scanner, "Instance")
			if err != nil {
				return err
			}
			view.InstanceMetrics = rec
			seen++

		case label == subtreeLabel:
			rec, err := scanLabeledMetrics(scanner, "Instance subtree")
			if err != nil {
				return err
			}
			view.SubtreeMetrics = rec
			seen++

		case strings.HasPrefix(label, nestedModulePfx):
			view.ModuleName = cutParen(label, nestedModulePfx)
			rec, err := scanLabeledMetrics(scanner, "Module")
			if err != nil {
				return err
			}
			view.ModuleMetrics = rec
			seen++

		case strings.HasPrefix(label, nestedParentPfx):
			view.ParentPath = cutParen(label, nestedParentPfx)
			rec, err := scanLabeledMetrics(scanner, "Parent")
			if err != nil {
				return err
			}
			view.ParentMetrics = rec
			seen++

		case label == childrenLabel:
			parseSummaryTable(scanner, func(score float64, name string) {
				view.Children[name] = ChildSummary{Name: name, Score: score}
			})
		}
	}
	if seen == 0 {
		return fmt.Errorf("instance section %q has no metric views", d.Name)
	}
	return nil
}

// scanLabeledMetrics consumes a column-header line followed by a values line.
func scanLabeledMetrics(scanner *bufio.Scanner, label string) (metrics.Record, error) {
	for scanner.Scan() {
		trimmed := strings.TrimSpace(trimLineEnd(scanner.Text()))
		if trimmed == "" || isRule(trimmed) || isColumnHeader(trimmed) {
			continue
		}
		rec, err := metrics.ParseRecord(strings.Fields(trimmed))
		if err != nil {
			return metrics.Record{}, fmt.Errorf("%s metrics: %w", label, err)
		}
		return rec, nil
	}
	return metrics.Record{}, fmt.Errorf("%s metrics: truncated section", label)
}

// scanMetricsValues consumes the values line following a column header.
func scanMetricsValues(scanner *bufio.Scanner) (metrics.Record, error) {
	for scanner.Scan() {
		trimmed := strings.TrimSpace(trimLineEnd(scanner.Text()))
		if trimmed == "" || isRule(trimmed) {
			continue
		}
		return metrics.ParseRecord(strings.Fields(trimmed))
	}
	return metrics.Record{}, fmt.Errorf("truncated section after column header")
}

// parseSourceFiles consumes the file-path list that follows the
// "Source File(s):" label, terminated by a blank line or the next label.
func parseSourceFiles(scanner *bufio.Scanner, d *Detail) {
	for scanner.Scan() {
		trimmed := strings.TrimSpace(trimLineEnd(scanner.Text()))
		if trimmed == "" {
			return
		}
		if strings.Contains(trimmed, " ") {
			// Next label reached; source paths carry no spaces.
			return
		}
		d.SourceFiles[path.Base(trimmed)] = trimmed
	}
}

// parseSummaryTable consumes "<score> <name>" rows following a table label
// and its column header, terminated by a blank line.
func parseSummaryTable(scanner *bufio.Scanner, row func(score float64, name string)) {
	for scanner.Scan() {
		trimmed := strings.TrimSpace(trimLineEnd(scanner.Text()))
		if trimmed == "" {
			return
		}
		if isRule(trimmed) || isColumnHeader(trimmed) {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) != 2 {
			return
		}
		score, err := metrics.ParseField(fields[0])
		if err != nil {
			return
		}
		row(score, fields[1])
	}
}

// isColumnHeader recognizes the "SCORE LINE ..." header rows.
func isColumnHeader(trimmed string) bool {
	return strings.HasPrefix(trimmed, "SCORE")
}

func isRule(trimmed string) bool {
	for _, r := range trimmed {
		if r != '-' && r != '=' {
			return false
		}
	}
	return len(trimmed) > 0
}

func cutParen(label, prefix string) string {
	rest := strings.TrimPrefix(label, prefix)
	if i := strings.IndexByte(rest, ')'); i >= 0 {
		return rest[:i]
	}
	return rest
}
