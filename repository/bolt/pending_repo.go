package bolt

import (
	"context"
	"encoding/json"
	"fmt"

	boltdb "go.etcd.io/bbolt"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/internal/infrastructure/kvstore"
	"github.com/auktia/backend/repository"
)

type pendingVoteRepository struct {
	store *kvstore.Store
}

// NewPendingVoteRepository returns the Bolt-backed buffer of votes waiting
// to be replayed against the remote aggregator.
func NewPendingVoteRepository(store *kvstore.Store) repository.PendingVoteRepository {
	return &pendingVoteRepository{store: store}
}

func buildVoteKey(vote domain.Vote) []byte {
	return []byte(fmt.Sprintf("%020d_%s", vote.CastAt.UnixNano(), vote.ID))
}

func (r *pendingVoteRepository) Enqueue(ctx context.Context, vote domain.Vote) error {
	if r.store == nil || r.store.DB() == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(vote)
	if err != nil {
		return err
	}
	return r.store.DB().Update(func(tx *boltdb.Tx) error {
		return tx.Bucket([]byte(kvstore.BucketPending)).Put(buildVoteKey(vote), payload)
	})
}

func (r *pendingVoteRepository) Batch(ctx context.Context, limit int) ([]domain.Vote, error) {
	if r.store == nil || r.store.DB() == nil {
		return nil, boltdb.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}
	var votes []domain.Vote
	err := r.store.DB().View(func(tx *boltdb.Tx) error {
		c := tx.Bucket([]byte(kvstore.BucketPending)).Cursor()
		for k, v := c.First(); k != nil && len(votes) < limit; k, v = c.Next() {
			var vote domain.Vote
			if err := json.Unmarshal(v, &vote); err != nil {
				continue
			}
			votes = append(votes, vote)
		}
		return nil
	})
	return votes, err
}

func (r *pendingVoteRepository) Remove(ctx context.Context, id string) error {
	if r.store == nil || r.store.DB() == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	return r.store.DB().Update(func(tx *boltdb.Tx) error {
		c := tx.Bucket([]byte(kvstore.BucketPending)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var vote domain.Vote
			if err := json.Unmarshal(v, &vote); err != nil {
				continue
			}
			if vote.ID == id {
				return c.Delete()
			}
		}
		return nil
	})
}

func (r *pendingVoteRepository) Size(ctx context.Context) (int, error) {
	if r.store == nil || r.store.DB() == nil {
		return 0, boltdb.ErrDatabaseNotOpen
	}
	var count int
	err := r.store.DB().View(func(tx *boltdb.Tx) error {
		count = tx.Bucket([]byte(kvstore.BucketPending)).Stats().KeyN
		return nil
	})
	return count, err
}
