// Package ingest orchestrates the three report builders over one coverage
// run directory and exposes the unified query surface: hierarchical-path
// lookups, exact-key module/instance detail lookups, key enumeration, and
// ingestion diagnostics.
//
// Each report family loads independently. A family that fails to load
// degrades its own queries to ErrUnavailable; the other families and the
// diagnostics stay usable.
package ingest

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/covquery/cvq/internal/cache"
	"github.com/covquery/cvq/internal/config"
	"github.com/covquery/cvq/internal/detail"
	"github.com/covquery/cvq/internal/hierarchy"
	"github.com/covquery/cvq/internal/inventory"
)

// ErrUnavailable is returned for queries against a report family whose
// ingestion failed. The failure itself is in PerfStats.
var ErrUnavailable = errors.New("report family unavailable")

// ErrNotFound is returned for hierarchy and inventory path lookups that
// miss. Detail lookups return detail.ErrNotFound.
var ErrNotFound = errors.New("path not found")

// Engine is the ingestion facade. Initialize builds it; afterwards it is
// read-only and safe for concurrent queries.
type Engine struct {
	forest *hierarchy.Forest
	inv    *inventory.Inventory
	store  *detail.Store

	stats     Stats
	testCount int
	logger    hclog.Logger
}

// Stats carries ingestion diagnostics. Always available, even when some
// families failed.
type Stats struct {
	Dir          string
	InitDuration time.Duration

	HierarchyDuration time.Duration
	InventoryDuration time.Duration
	IndexDuration     time.Duration

	HierarchyNodes  int
	InventoryCount  int
	DetailModules   int
	DetailInstances int

	HierarchyWarnings int
	InventoryWarnings int

	CacheHit bool

	// Per-family load failures, empty when the family loaded.
	HierarchyError string
	InventoryError string
	DetailError    string
}

// Options tunes Initialize beyond the config file.
type Options struct {
	Cache *cache.Cache // nil disables index persistence
}

// Initialize ingests the three report families found in dir. It fails only
// when dir itself is unusable; individual family failures degrade that
// family's queries and are recorded in the stats.
func Initialize(dir string, cfg *config.Config, opts Options, logger hclog.Logger) (*Engine, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("report directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("report directory %s: not a directory", dir)
	}

	start := time.Now()
	e := &Engine{logger: logger}
	e.stats.Dir = dir

	e.loadHierarchy(filepath.Join(dir, cfg.Reports.Hierarchy))
	e.loadInventory(filepath.Join(dir, cfg.Reports.Inventory), cfg.Inventory.CountTolerance)
	e.loadDetail(filepath.Join(dir, cfg.Reports.Detail), opts.Cache)

	e.stats.InitDuration = time.Since(start)
	logger.Info("ingestion complete",
		"dir", dir,
		"hierarchy_nodes", e.stats.HierarchyNodes,
		"modules", e.stats.DetailModules,
		"instances", e.stats.DetailInstances,
		"duration", e.stats.InitDuration)
	return e, nil
}

func (e *Engine) loadHierarchy(path string) {
	start := time.Now()
	forest, err := hierarchy.Build(path, e.logger)
	e.stats.HierarchyDuration = time.Since(start)
	if err != nil {
		e.stats.HierarchyError = err.Error()
		e.logger.Warn("hierarchy family unavailable", "error", err)
		return
	}
	e.forest = forest
	e.stats.HierarchyNodes = forest.Len()
	e.stats.HierarchyWarnings = len(forest.Warnings)
}

func (e *Engine) loadInventory(path string, tolerance int) {
	start := time.Now()
	inv, err := inventory.Build(path, tolerance, e.logger)
	e.stats.InventoryDuration = time.Since(start)
	if err != nil {
		e.stats.InventoryError = err.Error()
		e.logger.Warn("inventory family unavailable", "error", err)
		return
	}
	e.inv = inv
	e.stats.InventoryCount = inv.Len()
	e.stats.InventoryWarnings = len(inv.Warnings)
}

func (e *Engine) loadDetail(path string, c *cache.Cache) {
	start := time.Now()
	store, err := detail.Open(path, e.logger)
	if err != nil {
		e.stats.IndexDuration = time.Since(start)
		e.stats.DetailError = err.Error()
		e.logger.Warn("detail family unavailable", "error", err)
		return
	}

	if c != nil {
		if entries, ok, err := c.LoadIndex(path); err == nil && ok {
			if err := store.LoadIndex(entries); err == nil {
				e.stats.CacheHit = true
			}
		}
	}
	if !e.stats.CacheHit {
		if err := store.BuildIndex(); err != nil {
			store.Close()
			e.stats.IndexDuration = time.Since(start)
			e.stats.DetailError = err.Error()
			e.logger.Warn("detail family unavailable", "error", err)
			return
		}
		if c != nil {
			if err := c.SaveIndex(path, store.Entries()); err != nil {
				// Cache trouble never blocks ingestion.
				e.logger.Warn("persisting section index failed", "error", err)
			}
		}
	}

	e.store = store
	e.stats.IndexDuration = time.Since(start)
	e.stats.DetailModules, e.stats.DetailInstances = store.Counts()
}

// Close releases the detail store's file handle.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// FindHierarchyNode looks up a dot-separated path in the hierarchy forest.
func (e *Engine) FindHierarchyNode(path string) (*hierarchy.Node, error) {
	if e.forest == nil {
		return nil, fmt.Errorf("hierarchy: %w", ErrUnavailable)
	}
	n, ok := e.forest.Find(path)
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// HierarchyRoots returns the forest's top-level nodes.
func (e *Engine) HierarchyRoots() ([]*hierarchy.Node, error) {
	if e.forest == nil {
		return nil, fmt.Errorf("hierarchy: %w", ErrUnavailable)
	}
	return e.forest.Roots, nil
}

// FindModuleRecord looks up a dot-separated path in the module inventory.
func (e *Engine) FindModuleRecord(path string) (*inventory.Record, error) {
	if e.inv == nil {
		return nil, fmt.Errorf("inventory: %w", ErrUnavailable)
	}
	r, ok := e.inv.Find(path)
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// TopLevelModules returns the inventory's level-0 module paths in file order.
func (e *Engine) TopLevelModules() ([]string, error) {
	if e.inv == nil {
		return nil, fmt.Errorf("inventory: %w", ErrUnavailable)
	}
	return e.inv.TopLevel, nil
}

// ModuleDetail seeks and parses the named module's detail section.
func (e *Engine) ModuleDetail(name string) (*detail.Detail, error) {
	if e.store == nil {
		return nil, fmt.Errorf("detail: %w", ErrUnavailable)
	}
	return e.store.Module(name)
}

// InstanceDetail seeks and parses the detail section for a slash-separated
// instance path.
func (e *Engine) InstanceDetail(path string) (*detail.Detail, error) {
	if e.store == nil {
		return nil, fmt.Errorf("detail: %w", ErrUnavailable)
	}
	return e.store.Instance(path)
}

// AvailableModules enumerates the indexed module names.
func (e *Engine) AvailableModules() (iter.Seq[string], error) {
	if e.store == nil {
		return nil, fmt.Errorf("detail: %w", ErrUnavailable)
	}
	return e.store.Modules(), nil
}

// AvailableInstances enumerates the indexed instance paths.
func (e *Engine) AvailableInstances() (iter.Seq[string], error) {
	if e.store == nil {
		return nil, fmt.Errorf("detail: %w", ErrUnavailable)
	}
	return e.store.Instances(), nil
}

// Summary is the collaborator-facing data summary.
type Summary struct {
	Modules      int           `json:"modules" yaml:"modules"`
	Instances    int           `json:"instances" yaml:"instances"`
	Tests        int           `json:"tests" yaml:"tests"`
	InitDuration time.Duration `json:"init_duration" yaml:"init_duration"`
}

// DataSummary returns ingestion counts. Available regardless of partial
// family failures.
func (e *Engine) DataSummary() Summary {
	return Summary{
		Modules:      e.stats.DetailModules,
		Instances:    e.stats.DetailInstances,
		Tests:        e.testCount,
		InitDuration: e.stats.InitDuration,
	}
}

// PerfStats returns the full ingestion diagnostics.
func (e *Engine) PerfStats() Stats {
	return e.stats
}

// SetTestCount records the test total extracted by the dashboard
// collaborator; cvq itself does not parse the test-summary report.
func (e *Engine) SetTestCount(n int) {
	e.testCount = n
}

// ToSlash converts a dot-separated hierarchy path to the slash-separated
// form the detail report uses. The conversion is a literal character
// substitution and is the exact inverse of ToDot.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, ".", "/")
}

// ToDot converts a slash-separated detail path to the dot-separated form
// the hierarchy and inventory listings use.
func ToDot(p string) string {
	return strings.ReplaceAll(p, "/", ".")
}
