// Package detail provides the indexed section store over the module/instance
// detail report. A single forward pass records the byte offset and length of
// every "Module : <name>" and "Module Instance : <path>" section; queries
// then seek straight to one section and parse only its bytes, so lookup cost
// is independent of total file size.
package detail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Section header prefixes. Only lines starting at column 0 with one of these
// open a section; indented or parenthesized labels inside instance blocks do
// not collide.
const (
	moduleHeaderPrefix   = "Module : "
	instanceHeaderPrefix = "Module Instance : "
)

// Kind distinguishes the two index namespaces.
type Kind int

const (
	KindModule Kind = iota
	KindInstance
)

func (k Kind) String() string {
	if k == KindInstance {
		return "instance"
	}
	return "module"
}

// IndexEntry locates one section in the backing file. Keys are exact and
// case-sensitive; Offset/Length delimit the section's byte span.
type IndexEntry struct {
	Key    string
	Offset int64
	Length int64
	Kind   Kind
}

// ErrNotFound is returned when an exact key is absent from the index.
// A miss is a normal result, not a store failure.
var ErrNotFound = errors.New("key not found in section index")

// ErrNotIndexed is returned for queries issued before BuildIndex.
var ErrNotIndexed = errors.New("section index not built")

// Store owns the open read handle to the detail report and the two exact-key
// namespaces built by BuildIndex. After BuildIndex returns the store is
// read-only and safe for concurrent queries.
type Store struct {
	path   string
	file   *os.File
	logger hclog.Logger

	modules   map[string]IndexEntry
	instances map[string]IndexEntry
	built     bool

	indexDuration time.Duration
}

// Open opens the detail report for direct-seek access. The handle is held
// for the lifetime of the store; call Close when done.
func Open(path string, logger hclog.Logger) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open detail report %s: %w", path, err)
	}
	return &Store{
		path:      path,
		file:      file,
		logger:    logger,
		modules:   make(map[string]IndexEntry),
		instances: make(map[string]IndexEntry),
	}, nil
}

// Close releases the backing file handle.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Path returns the backing report path.
func (s *Store) Path() string {
	return s.path
}

// IndexDuration reports how long BuildIndex took.
func (s *Store) IndexDuration() time.Duration {
	return s.indexDuration
}

// Counts returns the number of indexed module and instance sections.
func (s *Store) Counts() (modules, instances int) {
	return len(s.modules), len(s.instances)
}

// BuildIndex scans the whole file once and records every section header's
// byte offset. Each entry's length closes at the next header (or EOF). It
// must be called exactly once before queries.
func (s *Store) BuildIndex() error {
	if s.built {
		return fmt.Errorf("section index for %s already built", s.path)
	}
	start := time.Now()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek detail report %s: %w", s.path, err)
	}

	reader := bufio.NewReaderSize(s.file, 256*1024)
	var offset int64
	var open *IndexEntry

	closeSection := func(end int64) {
		if open == nil {
			return
		}
		open.Length = end - open.Offset
		if open.Kind == KindModule {
			s.modules[open.Key] = *open
		} else {
			s.instances[open.Key] = *open
		}
		open = nil
	}

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if key, ok := strings.CutPrefix(line, instanceHeaderPrefix); ok {
				closeSection(offset)
				open = &IndexEntry{Key: trimLineEnd(key), Offset: offset, Kind: KindInstance}
			} else if key, ok := strings.CutPrefix(line, moduleHeaderPrefix); ok {
				closeSection(offset)
				open = &IndexEntry{Key: trimLineEnd(key), Offset: offset, Kind: KindModule}
			}
			offset += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("scan detail report %s at offset %d: %w", s.path, offset, err)
		}
	}
	closeSection(offset)

	s.built = true
	s.indexDuration = time.Since(start)
	s.logger.Debug("section index built",
		"file", s.path, "modules", len(s.modules), "instances", len(s.instances),
		"bytes", offset, "duration", s.indexDuration)
	return nil
}

// LoadIndex installs previously built entries (from the persisted cache)
// instead of scanning the file. Entries must come from an identical copy of
// the backing file.
func (s *Store) LoadIndex(entries []IndexEntry) error {
	if s.built {
		return fmt.Errorf("section index for %s already built", s.path)
	}
	for _, e := range entries {
		if e.Kind == KindModule {
			s.modules[e.Key] = e
		} else {
			s.instances[e.Key] = e
		}
	}
	s.built = true
	s.logger.Debug("section index loaded from cache",
		"file", s.path, "modules", len(s.modules), "instances", len(s.instances))
	return nil
}

// Entries snapshots the full index, modules first, keys sorted within each
// namespace. Used for cache persistence.
func (s *Store) Entries() []IndexEntry {
	out := make([]IndexEntry, 0, len(s.modules)+len(s.instances))
	for _, key := range sortedKeys(s.modules) {
		out = append(out, s.modules[key])
	}
	for _, key := range sortedKeys(s.instances) {
		out = append(out, s.instances[key])
	}
	return out
}

// Module seeks to the named module's section and parses it. The key is
// matched byte-for-byte; a miss is ErrNotFound.
func (s *Store) Module(name string) (*Detail, error) {
	return s.lookup(name, s.modules)
}

// Instance seeks to the instance section for the given slash-separated path.
func (s *Store) Instance(path string) (*Detail, error) {
	return s.lookup(path, s.instances)
}

func (s *Store) lookup(key string, ns map[string]IndexEntry) (*Detail, error) {
	if !s.built {
		return nil, ErrNotIndexed
	}
	entry, ok := ns[key]
	if !ok {
		return nil, ErrNotFound
	}

	section := io.NewSectionReader(s.file, entry.Offset, entry.Length)
	d, err := parseSection(section, entry)
	if err != nil {
		// Scoped to this query: the rest of the index stays valid.
		return nil, fmt.Errorf("section %q at offset %d in %s: %w", key, entry.Offset, s.path, err)
	}
	return d, nil
}

// Modules returns a restartable sequence over the known module names,
// sorted. The snapshot is taken once per call; re-ranging re-yields it.
func (s *Store) Modules() iter.Seq[string] {
	keys := sortedKeys(s.modules)
	return func(yield func(string) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Instances returns a restartable sequence over the known instance paths,
// sorted.
func (s *Store) Instances() iter.Seq[string] {
	keys := sortedKeys(s.instances)
	return func(yield func(string) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

func sortedKeys(m map[string]IndexEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func trimLineEnd(s string) string {
	return strings.TrimRight(s, "\r\n")
}
