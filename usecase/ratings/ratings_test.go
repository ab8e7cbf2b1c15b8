package ratings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository/memory"
	"github.com/auktia/backend/usecase/analytics"
)

type fixture struct {
	uc      *UseCase
	remote  *memory.RatingRepository
	pending *memory.PendingVoteRepository
	tracker *analytics.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	remote := memory.NewRatingRepository()
	pending := memory.NewPendingVoteRepository()
	tracker := analytics.New(memory.NewEventRepository(), nil, nil)
	uc := New(remote, pending, tracker, nil)
	return &fixture{uc: uc, remote: remote, pending: pending, tracker: tracker}
}

func TestSubmitVoteAveraging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.SetCooldown(0)

	scores := []int{5, 4, 3}
	var result Result
	var err error
	for i, s := range scores {
		result, err = f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter"+string(rune('a'+i)), s)
		if err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}

	if result.TotalVotes != 3 || result.TotalScore != 12 {
		t.Fatalf("aggregate = %+v", result.RatingAggregate)
	}
	if result.Average != 4 {
		t.Errorf("average = %v, want 4", result.Average)
	}
	if result.Local {
		t.Error("healthy aggregator flagged as local")
	}
}

func TestSubmitVoteScoreValidation(t *testing.T) {
	f := newFixture(t)
	for _, score := range []int{0, 6, -3} {
		if _, err := f.uc.SubmitVote(context.Background(), domain.TargetUpcoming, "v", score); err == nil {
			t.Errorf("score %d accepted", score)
		}
	}
}

func TestCooldownBlocksRepeatVotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.SetCooldown(2 * time.Minute)

	base := time.Now()
	f.remote.Now = func() time.Time { return base }

	if _, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter1", 5); err != nil {
		t.Fatal(err)
	}

	_, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter1", 3)
	if !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("second vote inside cooldown: %v", err)
	}

	// A different voter is not affected.
	if _, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter2", 4); err != nil {
		t.Fatalf("other voter blocked: %v", err)
	}

	// A different target is not affected.
	if _, err := f.uc.SubmitVote(ctx, domain.ItemTarget("lot-1"), "voter1", 4); err != nil {
		t.Fatalf("other target blocked: %v", err)
	}

	// After the window the voter may vote again.
	f.remote.Now = func() time.Time { return base.Add(121 * time.Second) }
	result, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter1", 3)
	if err != nil {
		t.Fatalf("vote after cooldown: %v", err)
	}
	if result.TotalVotes != 3 {
		t.Errorf("upcoming votes = %d, want 3", result.TotalVotes)
	}
}

func TestCooldownRejectionLeavesAggregateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.SetCooldown(time.Minute)

	first, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter1", 1); err == nil {
		t.Fatal("cooldown not enforced")
	}

	after, err := f.uc.GetAggregate(ctx, domain.TargetUpcoming)
	if err != nil {
		t.Fatal(err)
	}
	if after.TotalVotes != first.TotalVotes || after.TotalScore != first.TotalScore {
		t.Errorf("rejected vote changed the aggregate: %+v -> %+v", first.RatingAggregate, after.RatingAggregate)
	}
	// A rejected vote must not linger in the replay buffer either.
	if n, _ := f.pending.Size(ctx); n != 0 {
		t.Errorf("pending buffer size = %d after cooldown rejection", n)
	}
}

func TestOutageFallsBackToLocalAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.SetCooldown(0)

	f.remote.Fail = errors.New("connection refused")

	result, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "voter1", 4)
	if err != nil {
		t.Fatalf("outage vote failed: %v", err)
	}
	if !result.Local {
		t.Error("outage aggregate not flagged local")
	}
	if result.TotalVotes != 1 || result.TotalScore != 4 {
		t.Errorf("local aggregate = %+v", result.RatingAggregate)
	}

	// The vote is buffered for replay.
	if n, _ := f.pending.Size(ctx); n != 1 {
		t.Fatalf("pending buffer size = %d, want 1", n)
	}

	// Reads also degrade to the local recomputation.
	read, err := f.uc.GetAggregate(ctx, domain.TargetUpcoming)
	if err != nil {
		t.Fatal(err)
	}
	if !read.Local || read.TotalVotes != 1 {
		t.Errorf("degraded read = %+v", read)
	}
}

func TestRecoveredAggregatorClearsLocalFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.SetCooldown(0)

	f.remote.Fail = errors.New("down")
	if _, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "v1", 5); err != nil {
		t.Fatal(err)
	}

	f.remote.Fail = nil
	result, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "v2", 3)
	if err != nil {
		t.Fatal(err)
	}
	if result.Local {
		t.Error("recovered aggregator still flagged local")
	}
}

func TestNoAggregatorConfigured(t *testing.T) {
	uc := New(nil, nil, nil, nil)
	_, err := uc.GetAggregate(context.Background(), domain.TargetUpcoming)
	if !domain.IsDomainError(err, domain.ErrCodeUnavailable) {
		t.Fatalf("err = %v, want UNAVAILABLE", err)
	}
}

func TestVotesAreTracked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.uc.SetCooldown(0)

	if _, err := f.uc.SubmitVote(ctx, domain.TargetUpcoming, "v1", 5); err != nil {
		t.Fatal(err)
	}

	events := f.tracker.Query(ctx, analytics.QueryParams{
		Types: []domain.EventType{domain.EventRatingSubmit},
		To:    time.Now().Add(time.Hour).UnixMilli(),
	})
	if len(events) != 1 {
		t.Fatalf("rating_submit events = %d, want 1", len(events))
	}
	if events[0].Field("target") != domain.TargetUpcoming {
		t.Errorf("tracked target = %q", events[0].Field("target"))
	}
}
