package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/internal/infrastructure/kvstore"
	"github.com/auktia/backend/repository"
)

func openStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestContentRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepository(openStore(t))

	raw, rev, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if raw != nil || rev != 0 {
		t.Fatalf("fresh store: raw=%v rev=%d", raw, rev)
	}

	doc := []byte(`{"sections":{}}`)
	if err := repo.Save(ctx, doc, 1234); err != nil {
		t.Fatal(err)
	}

	raw, rev, err = repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != string(doc) || rev != 1234 {
		t.Fatalf("loaded raw=%q rev=%d", raw, rev)
	}

	if err := repo.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	raw, rev, _ = repo.Load(ctx)
	if raw != nil || rev != 0 {
		t.Fatalf("after reset: raw=%v rev=%d", raw, rev)
	}
}

func TestEventLogPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openStore(t))

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 25; i++ {
		ev := domain.NewEvent(domain.EventPageView, nil, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, ev.ID)
		if err := repo.Append(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	events, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != len(ids) {
		t.Fatalf("read %d events, want %d", len(events), len(ids))
	}
	for i, ev := range events {
		if ev.ID != ids[i] {
			t.Fatalf("position %d: got %s, want %s", i, ev.ID, ids[i])
		}
	}
}

func TestEventLogPruneBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openStore(t))

	old := time.Now().AddDate(0, 0, -200)
	recent := time.Now()
	if err := repo.Append(ctx, domain.NewEvent(domain.EventPageView, nil, old)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Append(ctx, domain.NewEvent(domain.EventPageView, nil, recent)); err != nil {
		t.Fatal(err)
	}

	removed, err := repo.PruneBefore(ctx, time.Now().AddDate(0, 0, -180).UnixMilli())
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	left, _ := repo.ReadAll(ctx)
	if len(left) != 1 || left[0].TS != recent.UnixMilli() {
		t.Fatalf("remaining events = %+v", left)
	}
}

func TestPendingVoteBuffer(t *testing.T) {
	ctx := context.Background()
	repo := NewPendingVoteRepository(openStore(t))

	base := time.Now()
	var votes []domain.Vote
	for i := 0; i < 3; i++ {
		v, err := domain.NewVote(domain.TargetUpcoming, "voter", 5, base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatal(err)
		}
		votes = append(votes, v)
		if err := repo.Enqueue(ctx, v); err != nil {
			t.Fatal(err)
		}
	}

	if n, _ := repo.Size(ctx); n != 3 {
		t.Fatalf("size = %d", n)
	}

	batch, err := repo.Batch(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch length = %d", len(batch))
	}
	// Oldest first.
	if batch[0].ID != votes[0].ID {
		t.Errorf("batch[0] = %s, want %s", batch[0].ID, votes[0].ID)
	}

	if err := repo.Remove(ctx, votes[1].ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := repo.Size(ctx); n != 2 {
		t.Fatalf("size after remove = %d", n)
	}

	// Removing an unknown id is a no-op.
	if err := repo.Remove(ctx, "missing"); err != nil {
		t.Fatal(err)
	}
}

func TestSubscriberDeduplication(t *testing.T) {
	ctx := context.Background()
	repo := NewSubscriberRepository(openStore(t))

	added, err := repo.Add(ctx, repository.Subscriber{Email: "anna@example.se", Lang: "sv", JoinedAt: time.Now()})
	if err != nil || !added {
		t.Fatalf("first add: %v %v", added, err)
	}
	added, err = repo.Add(ctx, repository.Subscriber{Email: "anna@example.se", Lang: "en", JoinedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("duplicate email reported as new")
	}

	subs, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Fatalf("subscriber count = %d", len(subs))
	}
}
