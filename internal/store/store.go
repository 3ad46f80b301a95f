package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ebranwell/marginalia/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketSnapshots = []byte("snapshots")

// SnapshotStore implements domain.SnapshotStore using BoltDB. It keeps the
// last successful JSON snapshot per collection so the client can render
// something sensible when the shelf server is unreachable.
type SnapshotStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[domain.Collection][]byte
}

// Open creates a snapshot store rooted at dir. An empty dir selects
// memory-only mode (no persistence across restarts).
func Open(dir string) (*SnapshotStore, error) {
	if dir == "" {
		return &SnapshotStore{cache: make(map[domain.Collection][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marginalia.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SnapshotStore{db: db, cache: make(map[domain.Collection][]byte)}, nil
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put serializes and stores the most recent successful snapshot for key.
func (s *SnapshotStore) Put(key domain.Collection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		return b.Put([]byte(key), data)
	})
}

// Get reads the snapshot for key into dest. A missing or corrupt entry
// reports false and leaves dest untouched rather than failing the caller.
func (s *SnapshotStore) Get(key domain.Collection, dest any) bool {
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
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

	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return true
}

// Clear drops every snapshot, memory and disk.
func (s *SnapshotStore) Clear() error {
	s.mu.Lock()
	s.cache = make(map[domain.Collection][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
