// Package cache stores fetched catalog records on disk, one JSON file
// per (id, lang) key. A lock file serializes access so concurrent
// invocations on the same machine do not tear each other's writes.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"

	"github.com/clembu/nfogen/pkg/core/catalog"
)

// Store is a file-backed catalog.Cache.
type Store struct {
	dir    string
	lock   *flock.Flock
	logger *log.Logger
}

var _ catalog.Cache = (*Store)(nil)

// NewStore creates the cache directory if needed and returns a Store.
func NewStore(dir string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = log.New()
		logger.SetOutput(os.Stderr)
	}
	return &Store{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, ".lock")),
		logger: logger,
	}, nil
}

// Get returns the cached record for (id, lang), if any. Unreadable or
// corrupt entries count as misses.
func (s *Store) Get(id int64, lang string) (*catalog.Record, bool) {
	if err := s.lock.RLock(); err != nil {
		s.logger.Warnf("Cache lock failed: %v", err)
		return nil, false
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.entryPath(id, lang))
	if err != nil {
		return nil, false
	}
	rec := &catalog.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		s.logger.Warnf("Discarding corrupt cache entry for (%d, %s): %v", id, lang, err)
		return nil, false
	}
	return rec, true
}

// Put writes the record for (id, lang).
func (s *Store) Put(id int64, lang string, rec *catalog.Record) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("cache lock failed: %w", err)
	}
	defer s.lock.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(s.entryPath(id, lang), data, 0o640); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *Store) entryPath(id int64, lang string) string {
	if lang == "" {
		lang = "default"
	}
	return filepath.Join(s.dir, "tmdb_"+strconv.FormatInt(id, 10)+"_"+lang+".json")
}
