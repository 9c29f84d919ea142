package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/covquery/cvq/internal/detail"
	"github.com/covquery/cvq/internal/hierarchy"
	"github.com/covquery/cvq/internal/ingest"
	"github.com/covquery/cvq/internal/metrics"
)

// metricCell prints one metric column the way the reports do.
func metricCell(v float64) string {
	if !metrics.IsApplicable(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func writeMetricsRow(w io.Writer, indent string, r metrics.Record) {
	fmt.Fprintf(w, "%sscore %-8s line %-8s cond %-8s toggle %-8s fsm %-8s branch %s\n",
		indent, metricCell(r.Score), metricCell(r.Line), metricCell(r.Cond),
		metricCell(r.Toggle), metricCell(r.FSM), metricCell(r.Branch))
}

// WriteDetail renders a module or instance detail section as text.
func WriteDetail(w io.Writer, d *detail.Detail) {
	if d.IsModule {
		fmt.Fprintf(w, "Module %s\n", d.Name)
		writeMetricsRow(w, "  ", d.Metrics)

		if len(d.SourceFiles) > 0 {
			fmt.Fprintln(w, "  source files:")
			for _, base := range sortedMapKeys(d.SourceFiles) {
				fmt.Fprintf(w, "    %s\n", d.SourceFiles[base])
			}
		}
		if len(d.Instances) > 0 {
			fmt.Fprintln(w, "  instances:")
			names := make([]string, 0, len(d.Instances))
			for name := range d.Instances {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				inst := d.Instances[name]
				fmt.Fprintf(w, "    %-8s %s\n", metricCell(inst.Score), inst.Path)
			}
		}
		return
	}

	view := d.Instance
	fmt.Fprintf(w, "Instance %s (module %s)\n", d.Name, view.ModuleName)
	if view.ParentPath != "" {
		fmt.Fprintf(w, "  parent: %s\n", view.ParentPath)
	}
	fmt.Fprintln(w, "  instance:")
	writeMetricsRow(w, "    ", view.InstanceMetrics)
	fmt.Fprintln(w, "  subtree:")
	writeMetricsRow(w, "    ", view.SubtreeMetrics)
	fmt.Fprintln(w, "  module:")
	writeMetricsRow(w, "    ", view.ModuleMetrics)
	fmt.Fprintln(w, "  parent context:")
	writeMetricsRow(w, "    ", view.ParentMetrics)

	if len(view.Children) > 0 {
		fmt.Fprintln(w, "  children:")
		names := make([]string, 0, len(view.Children))
		for name := range view.Children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "    %-8s %s\n", metricCell(view.Children[name].Score), name)
		}
	}
}

// WriteTree renders a hierarchy forest as an indented tree with scores.
func WriteTree(w io.Writer, roots []*hierarchy.Node) {
	var visit func(n *hierarchy.Node, depth int)
	visit = func(n *hierarchy.Node, depth int) {
		fmt.Fprintf(w, "%s%-8s %s\n", strings.Repeat("  ", depth), metricCell(n.Metrics.Score), n.Name)
		for _, name := range sortedNodeKeys(n.Children) {
			visit(n.Children[name], depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
}

// WriteSummary renders the data summary as text.
func WriteSummary(w io.Writer, s ingest.Summary) {
	fmt.Fprintf(w, "modules:    %d\n", s.Modules)
	fmt.Fprintf(w, "instances:  %d\n", s.Instances)
	fmt.Fprintf(w, "tests:      %d\n", s.Tests)
	fmt.Fprintf(w, "init time:  %s\n", s.InitDuration)
}

// WriteStats renders the full ingestion diagnostics as text.
func WriteStats(w io.Writer, s ingest.Stats) {
	fmt.Fprintf(w, "directory:           %s\n", s.Dir)
	fmt.Fprintf(w, "initialize:          %s\n", s.InitDuration)
	fmt.Fprintf(w, "hierarchy:           %d nodes, %d warnings, %s\n",
		s.HierarchyNodes, s.HierarchyWarnings, s.HierarchyDuration)
	fmt.Fprintf(w, "inventory:           %d modules, %d warnings, %s\n",
		s.InventoryCount, s.InventoryWarnings, s.InventoryDuration)
	fmt.Fprintf(w, "detail index:        %d modules, %d instances, %s (cache hit: %v)\n",
		s.DetailModules, s.DetailInstances, s.IndexDuration, s.CacheHit)
	for _, f := range []struct{ family, msg string }{
		{"hierarchy", s.HierarchyError},
		{"inventory", s.InventoryError},
		{"detail", s.DetailError},
	} {
		if f.msg != "" {
			fmt.Fprintf(w, "unavailable:         %s (%s)\n", f.family, f.msg)
		}
	}
}

func sortedMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedNodeKeys(m map[string]*hierarchy.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
