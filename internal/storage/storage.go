package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const keyScanStats = "scan_stats"

// ScanStats accumulates statistics over all recorded scan runs.
type ScanStats struct {
	Runs          int           `json:"runs"`
	Positions     int64         `json:"positions"`
	CacheHits     uint64        `json:"cache_hits"`
	CacheMisses   uint64        `json:"cache_misses"`
	TotalDuration time.Duration `json:"total_duration"`
	LastRun       time.Time     `json:"last_run"`
}

// NewScanStats returns empty scan statistics.
func NewScanStats() *ScanStats {
	return &ScanStats{}
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (s *ScanStats) HitRate() float64 {
	probes := s.CacheHits + s.CacheMisses
	if probes == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(probes) * 100
}

// RunResult describes one completed scan run.
type RunResult struct {
	Positions   int64
	CacheHits   uint64
	CacheMisses uint64
	Duration    time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the storage in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dbDir)
}

// OpenAt opens the storage at an explicit directory. Used by tests and by
// callers that manage their own data location.
func OpenAt(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveStats saves scan statistics
func (s *Storage) SaveStats(stats *ScanStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyScanStats), data)
	})
}

// LoadStats loads scan statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*ScanStats, error) {
	stats := NewScanStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyScanStats))
		if err == badger.ErrKeyNotFound {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordRun records a completed scan run and updates statistics
func (s *Storage) RecordRun(result RunResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.Runs++
	stats.Positions += result.Positions
	stats.CacheHits += result.CacheHits
	stats.CacheMisses += result.CacheMisses
	stats.TotalDuration += result.Duration
	stats.LastRun = time.Now()

	return s.SaveStats(stats)
}
