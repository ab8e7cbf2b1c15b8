package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository/memory"
)

type stubHealth struct{ online bool }

func (s stubHealth) RedisOnline() bool { return s.online }

func enqueueVote(t *testing.T, pending *memory.PendingVoteRepository, score int) domain.Vote {
	t.Helper()
	vote, err := domain.NewVote(domain.TargetUpcoming, "voter", score, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := pending.Enqueue(context.Background(), vote); err != nil {
		t.Fatal(err)
	}
	return vote
}

func TestDrainReplaysBufferedVotes(t *testing.T) {
	ctx := context.Background()
	pending := memory.NewPendingVoteRepository()
	remote := memory.NewRatingRepository()

	enqueueVote(t, pending, 5)
	enqueueVote(t, pending, 3)

	vs := NewVoteSync(pending, remote, stubHealth{online: true}, nil, nil, SyncConfig{})
	if err := vs.Drain(ctx); err != nil {
		t.Fatal(err)
	}

	if n, _ := pending.Size(ctx); n != 0 {
		t.Fatalf("pending size after drain = %d", n)
	}
	agg, err := remote.GetAggregate(ctx, domain.TargetUpcoming)
	if err != nil {
		t.Fatal(err)
	}
	if agg.TotalVotes != 2 || agg.TotalScore != 8 {
		t.Fatalf("remote aggregate = %+v", agg)
	}
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	ctx := context.Background()
	pending := memory.NewPendingVoteRepository()
	remote := memory.NewRatingRepository()
	enqueueVote(t, pending, 4)

	vs := NewVoteSync(pending, remote, stubHealth{online: false}, nil, nil, SyncConfig{})
	if err := vs.Drain(ctx); err != nil {
		t.Fatal(err)
	}

	if n, _ := pending.Size(ctx); n != 1 {
		t.Fatalf("offline drain touched the buffer: size = %d", n)
	}
}

func TestDrainReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pending := memory.NewPendingVoteRepository()
	remote := memory.NewRatingRepository()

	vote := enqueueVote(t, pending, 5)

	// The vote already reached the aggregator through a successful retry.
	if _, err := remote.Apply(ctx, vote, 0); err != nil {
		t.Fatal(err)
	}

	vs := NewVoteSync(pending, remote, stubHealth{online: true}, nil, nil, SyncConfig{})
	if err := vs.Drain(ctx); err != nil {
		t.Fatal(err)
	}

	agg, _ := remote.GetAggregate(ctx, domain.TargetUpcoming)
	if agg.TotalVotes != 1 {
		t.Fatalf("replayed vote double-counted: %+v", agg)
	}
	if n, _ := pending.Size(ctx); n != 0 {
		t.Fatalf("replayed vote not purged: size = %d", n)
	}
}

func TestConcurrentDrainsKeepRetryCountersConsistent(t *testing.T) {
	ctx := context.Background()
	pending := memory.NewPendingVoteRepository()
	remote := memory.NewRatingRepository()
	remote.Fail = errors.New("still down")

	for i := 0; i < 10; i++ {
		enqueueVote(t, pending, 5)
	}

	// A scheduler tick can fire while a direct Drain is still working the
	// same batch; the retry counters must survive that.
	vs := NewVoteSync(pending, remote, stubHealth{online: true}, nil, nil, SyncConfig{MaxRetries: 100})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := vs.Drain(ctx); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if n, _ := pending.Size(ctx); n != 10 {
		t.Fatalf("votes dropped below max retries: size = %d", n)
	}
}

func TestDrainDropsVoteAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	pending := memory.NewPendingVoteRepository()
	remote := memory.NewRatingRepository()
	remote.Fail = errors.New("still down")

	enqueueVote(t, pending, 5)

	vs := NewVoteSync(pending, remote, stubHealth{online: true}, nil, nil, SyncConfig{MaxRetries: 2})

	if err := vs.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := pending.Size(ctx); n != 1 {
		t.Fatalf("vote dropped before max retries: size = %d", n)
	}

	if err := vs.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := pending.Size(ctx); n != 0 {
		t.Fatalf("vote kept past max retries: size = %d", n)
	}
}
