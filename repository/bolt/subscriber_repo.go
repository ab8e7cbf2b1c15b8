package bolt

import (
	"context"
	"encoding/json"
	"strings"

	boltdb "go.etcd.io/bbolt"

	"github.com/auktia/backend/internal/infrastructure/kvstore"
	"github.com/auktia/backend/repository"
)

type subscriberRepository struct {
	store *kvstore.Store
}

// NewSubscriberRepository returns the Bolt-backed newsletter subscriber
// store, keyed by normalized email.
func NewSubscriberRepository(store *kvstore.Store) repository.SubscriberRepository {
	return &subscriberRepository{store: store}
}

func (r *subscriberRepository) Add(ctx context.Context, sub repository.Subscriber) (bool, error) {
	if r.store == nil || r.store.DB() == nil {
		return false, boltdb.ErrDatabaseNotOpen
	}
	key := []byte(strings.ToLower(strings.TrimSpace(sub.Email)))
	payload, err := json.Marshal(sub)
	if err != nil {
		return false, err
	}
	added := false
	err = r.store.DB().Update(func(tx *boltdb.Tx) error {
		b := tx.Bucket([]byte(kvstore.BucketSubscribers))
		if b.Get(key) != nil {
			return nil
		}
		added = true
		return b.Put(key, payload)
	})
	return added, err
}

func (r *subscriberRepository) List(ctx context.Context) ([]repository.Subscriber, error) {
	if r.store == nil || r.store.DB() == nil {
		return nil, boltdb.ErrDatabaseNotOpen
	}
	var subs []repository.Subscriber
	err := r.store.DB().View(func(tx *boltdb.Tx) error {
		c := tx.Bucket([]byte(kvstore.BucketSubscribers)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var sub repository.Subscriber
			if err := json.Unmarshal(v, &sub); err != nil {
				continue
			}
			subs = append(subs, sub)
		}
		return nil
	})
	return subs, err
}
