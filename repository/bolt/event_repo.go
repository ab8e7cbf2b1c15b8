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

type eventRepository struct {
	store *kvstore.Store
}

// NewEventRepository returns a Bolt-backed append-only analytics log. Keys
// are zero-padded bucket sequence numbers, so cursor order is insertion
// order.
func NewEventRepository(store *kvstore.Store) repository.EventRepository {
	return &eventRepository{store: store}
}

func (r *eventRepository) Append(ctx context.Context, ev domain.AnalyticsEvent) error {
	if r.store == nil || r.store.DB() == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.store.DB().Update(func(tx *boltdb.Tx) error {
		b := tx.Bucket([]byte(kvstore.BucketEvents))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put([]byte(fmt.Sprintf("%020d", seq)), payload)
	})
}

func (r *eventRepository) ReadAll(ctx context.Context) ([]domain.AnalyticsEvent, error) {
	if r.store == nil || r.store.DB() == nil {
		return nil, boltdb.ErrDatabaseNotOpen
	}
	var events []domain.AnalyticsEvent
	err := r.store.DB().View(func(tx *boltdb.Tx) error {
		c := tx.Bucket([]byte(kvstore.BucketEvents)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ev domain.AnalyticsEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				continue
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) PruneBefore(ctx context.Context, cutoff int64) (int, error) {
	if r.store == nil || r.store.DB() == nil {
		return 0, boltdb.ErrDatabaseNotOpen
	}
	var removed int
	err := r.store.DB().Update(func(tx *boltdb.Tx) error {
		c := tx.Bucket([]byte(kvstore.BucketEvents)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ev domain.AnalyticsEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				continue
			}
			if ev.TS < cutoff {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}
