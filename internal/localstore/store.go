// Package localstore is the durable client-side store: the two book
// lists, the external-recommendation cache and magic-link send markers,
// all under a small Badger key space. Corrupt payloads reset to empty
// rather than erroring, so a damaged store never locks a user out of
// their session.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"leafnote/pkg/models"
)

const (
	libraryKey  = "booktracker_v1"
	recCacheKey = "recs_cache_v1"
	magicPrefix = "magic_sent:"

	// cached external results go stale after a day
	RecCacheTTL = 24 * time.Hour
)

type Store struct {
	db *badger.DB
}

// DefaultPath resolves the on-disk location, honoring the env override.
func DefaultPath() string {
	if p := os.Getenv("LEAFNOTE_LOCAL_STORE_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".leafnote", "local")
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("ensure local store dir: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logging is too chatty for a CLI tool

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadLibrary reads the two lists. A missing or unparseable payload
// yields empty lists, never an error.
func (s *Store) LoadLibrary() models.Library {
	var lib models.Library

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(libraryKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &lib)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("[localstore] library unreadable, resetting: %v", err)
		}
		return models.Library{ReadBooks: []models.ReadItem{}, ToReadBooks: []models.ToReadItem{}}
	}

	if lib.ReadBooks == nil {
		lib.ReadBooks = []models.ReadItem{}
	}
	if lib.ToReadBooks == nil {
		lib.ToReadBooks = []models.ToReadItem{}
	}
	return lib
}

func (s *Store) SaveLibrary(lib models.Library) error {
	b, err := json.Marshal(lib)
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(libraryKey), b)
	})
	if err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	return nil
}

type recCache struct {
	TS      time.Time               `json:"ts"`
	Results []models.Recommendation `json:"results"`
}

// SaveRecCache stores the latest external recommendation batch with the
// current timestamp.
func (s *Store) SaveRecCache(results []models.Recommendation) error {
	b, err := json.Marshal(recCache{TS: time.Now().UTC(), Results: results})
	if err != nil {
		return fmt.Errorf("marshal rec cache: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recCacheKey), b)
	})
	if err != nil {
		return fmt.Errorf("save rec cache: %w", err)
	}
	return nil
}

// LoadRecCache returns the cached batch and true when present and
// fresher than RecCacheTTL. Stale or unreadable entries are a miss.
func (s *Store) LoadRecCache() ([]models.Recommendation, bool) {
	var cache recCache

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recCacheKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cache)
		})
	})
	if err != nil {
		return nil, false
	}
	if time.Since(cache.TS) > RecCacheTTL {
		return nil, false
	}
	return cache.Results, true
}

// MarkMagicLinkSent records that a magic link went out to this email.
// Returns false if a marker already existed (link already sent).
func (s *Store) MarkMagicLinkSent(email string) (bool, error) {
	key := []byte(magicPrefix + normalizeEmail(email))

	first := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		first = true
		return txn.Set(key, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return false, fmt.Errorf("mark magic link: %w", err)
	}
	return first, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
