package bolt

import (
	"context"
	"encoding/binary"

	boltdb "go.etcd.io/bbolt"

	"github.com/auktia/backend/internal/infrastructure/kvstore"
	"github.com/auktia/backend/repository"
)

var (
	keyDocument = []byte("document")
	keyRevision = []byte("revision")
)

type contentRepository struct {
	store *kvstore.Store
}

// NewContentRepository returns a Bolt-backed implementation of
// ContentRepository. Document and revision live under two keys in the same
// bucket and are written in one transaction.
func NewContentRepository(store *kvstore.Store) repository.ContentRepository {
	return &contentRepository{store: store}
}

func (r *contentRepository) Load(ctx context.Context) ([]byte, int64, error) {
	if r.store == nil || r.store.DB() == nil {
		return nil, 0, boltdb.ErrDatabaseNotOpen
	}
	var (
		raw []byte
		rev int64
	)
	err := r.store.DB().View(func(tx *boltdb.Tx) error {
		b := tx.Bucket([]byte(kvstore.BucketContent))
		if v := b.Get(keyDocument); v != nil {
			raw = append([]byte(nil), v...)
		}
		if v := b.Get(keyRevision); len(v) == 8 {
			rev = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return raw, rev, nil
}

func (r *contentRepository) Save(ctx context.Context, raw []byte, rev int64) error {
	if r.store == nil || r.store.DB() == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	revBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(revBuf, uint64(rev))
	return r.store.DB().Update(func(tx *boltdb.Tx) error {
		b := tx.Bucket([]byte(kvstore.BucketContent))
		if err := b.Put(keyDocument, raw); err != nil {
			return err
		}
		return b.Put(keyRevision, revBuf)
	})
}

func (r *contentRepository) Reset(ctx context.Context) error {
	if r.store == nil || r.store.DB() == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	return r.store.DB().Update(func(tx *boltdb.Tx) error {
		b := tx.Bucket([]byte(kvstore.BucketContent))
		if err := b.Delete(keyDocument); err != nil {
			return err
		}
		return b.Delete(keyRevision)
	})
}
