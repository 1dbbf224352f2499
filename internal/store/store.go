// Package store persists client-side preferences in a bbolt file.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/watchlog/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPrefs = []byte("prefs")
)

const keyUIPrefs = "ui"

// PrefsStore implements domain.PrefsStore using BoltDB.
type PrefsStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// Reads are served from memory once a key has been seen
	cache map[string][]byte
}

var _ domain.PrefsStore = (*PrefsStore)(nil)

// NewPrefsStore opens (or creates) the preferences database under baseDir.
// Each backend URL gets its own file so filters from one server never leak
// into another. An empty baseDir keeps everything in memory.
func NewPrefsStore(baseDir, backendURL string) (*PrefsStore, error) {
	if baseDir == "" {
		return &PrefsStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if backendURL != "" {
		dir = filepath.Join(baseDir, hashBackendURL(backendURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "watchlog.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPrefs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PrefsStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashBackendURL(backendURL string) string {
	normalized := strings.TrimRight(strings.ToLower(backendURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *PrefsStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadPrefs returns the saved UI preferences
func (s *PrefsStore) LoadPrefs() (domain.Prefs, bool) {
	var prefs domain.Prefs
	if !s.get(bucketPrefs, keyUIPrefs, &prefs) {
		return domain.Prefs{}, false
	}
	return prefs, true
}

// SavePrefs replaces the saved UI preferences
func (s *PrefsStore) SavePrefs(prefs domain.Prefs) error {
	return s.set(bucketPrefs, keyUIPrefs, prefs)
}

// ClearPrefs forgets the saved UI preferences
func (s *PrefsStore) ClearPrefs() error {
	return s.delete(bucketPrefs, keyUIPrefs)
}

// === Generic helpers ===

func (s *PrefsStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *PrefsStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *PrefsStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}
