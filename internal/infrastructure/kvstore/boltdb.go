package kvstore

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names used by the repositories layered on top of the store.
const (
	BucketContent     = "content"
	BucketEvents      = "events"
	BucketSubscribers = "subscribers"
	BucketPending     = "pending_votes"
)

// Store wraps a single BoltDB file shared by the content document, the
// analytics event log, subscriber records and the pending-vote buffer.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{BucketContent, BucketEvents, BucketSubscribers, BucketPending} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle to the repositories.
func (s *Store) DB() *bolt.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}
