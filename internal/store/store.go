// Package store keeps the catalog and the generated records in memory and
// persists them as compressed snapshots.
package store

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/datagen"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/records"
)

// Source tells where the loaded records came from
const (
	SourceGenerated = "generated"
	SourceSnapshot  = "snapshot"
)

// Info describes the loaded data
type Info struct {
	Source   string         `json:"source"`
	Path     string         `json:"path,omitempty"`
	LoadedAt time.Time      `json:"loaded_at"`
	Seed     uint64         `json:"seed"`
	FromYear int            `json:"from_year"`
	ToYear   int            `json:"to_year"`
	Rows     map[string]int `json:"rows"`
}

// Store is a read-mostly view of the catalog and the records. Replace swaps
// the bundle atomically for readers.
type Store struct {
	catalog *catalog.Catalog
	logger  *logging.Logger

	mu     sync.RWMutex
	bundle *records.Bundle
	info   Info
}

// Options controls Open
type Options struct {
	Generator    datagen.Config
	SnapshotPath string
	// WriteSnapshot saves a freshly generated bundle to SnapshotPath
	WriteSnapshot bool
	Compression   Algorithm
}

// New wraps an existing bundle
func New(cat *catalog.Catalog, bundle *records.Bundle, info Info, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Global()
	}
	s := &Store{catalog: cat, logger: logger}
	s.Replace(bundle, info)
	return s
}

// Open loads the snapshot at opts.SnapshotPath when it exists and generates
// the bundle otherwise
func Open(cat *catalog.Catalog, opts Options, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Global()
	}

	if opts.SnapshotPath != "" {
		snap, err := LoadSnapshot(opts.SnapshotPath)
		switch {
		case err == nil:
			logger.Info("Loaded snapshot", "path", opts.SnapshotPath, "seed", snap.Seed)
			return New(cat, snap.Bundle, Info{
				Source:   SourceSnapshot,
				Path:     opts.SnapshotPath,
				Seed:     snap.Seed,
				FromYear: snap.FromYear,
				ToYear:   snap.ToYear,
			}, logger), nil
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("No snapshot, generating", "path", opts.SnapshotPath)
		default:
			return nil, err
		}
	}

	start := time.Now()
	bundle, err := datagen.Generate(opts.Generator)
	if err != nil {
		return nil, fmt.Errorf("failed to generate data: %w", err)
	}
	logger.Info("Generated data",
		"seed", opts.Generator.Seed,
		"from_year", opts.Generator.FromYear,
		"to_year", opts.Generator.ToYear,
		"latency_ms", time.Since(start).Milliseconds())

	s := New(cat, bundle, Info{
		Source:   SourceGenerated,
		Seed:     opts.Generator.Seed,
		FromYear: opts.Generator.FromYear,
		ToYear:   opts.Generator.ToYear,
	}, logger)

	if opts.WriteSnapshot && opts.SnapshotPath != "" {
		if err := s.Save(opts.SnapshotPath, opts.Compression); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Replace swaps in a new bundle
func (s *Store) Replace(bundle *records.Bundle, info Info) {
	if bundle == nil {
		bundle = &records.Bundle{}
	}
	info.LoadedAt = time.Now()
	info.Rows = bundle.Counts()

	s.mu.Lock()
	s.bundle = bundle
	s.info = info
	s.mu.Unlock()
}

// Save writes the current bundle as a snapshot
func (s *Store) Save(path string, algo Algorithm) error {
	s.mu.RLock()
	snap := &Snapshot{
		CreatedAt: time.Now().UTC(),
		Seed:      s.info.Seed,
		FromYear:  s.info.FromYear,
		ToYear:    s.info.ToYear,
		Bundle:    s.bundle,
	}
	s.mu.RUnlock()

	if err := SaveSnapshot(path, snap, algo); err != nil {
		return err
	}
	s.logger.Info("Saved snapshot", "path", path, "compression", algo.String())
	return nil
}

// Catalog returns the dataset metadata
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

// Bundle returns the current records. Callers must not modify them.
func (s *Store) Bundle() *records.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

// Info describes the loaded data
func (s *Store) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Table returns the rows of a catalogued dataset with its schema columns
func (s *Store) Table(datasetID string) (records.Table, error) {
	d, err := s.catalog.Get(datasetID)
	if err != nil {
		return records.Table{}, err
	}
	rows, _ := s.Bundle().Rows(datasetID)
	return records.Table{DatasetID: datasetID, Columns: d.Columns(), Rows: rows}, nil
}
