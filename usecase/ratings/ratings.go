// Package ratings submits and aggregates star votes. The remote aggregator
// (Redis) is authoritative; when it is unreachable the vote is recorded
// locally and replayed later, and the caller is told the returned aggregate
// is a local best-effort substitute.
package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository"
	"github.com/auktia/backend/usecase/analytics"
)

// DefaultCooldown is the per-voter, per-target wait between votes.
const DefaultCooldown = 120 * time.Second

// Result is a rating outcome. Local marks an aggregate recomputed from the
// local event log during an aggregator outage — never a phantom remote
// success.
type Result struct {
	domain.RatingAggregate
	Local bool `json:"local"`
}

type UseCase struct {
	remote   repository.RatingRepository
	pending  repository.PendingVoteRepository
	tracker  *analytics.UseCase
	cooldown time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(remote repository.RatingRepository, pending repository.PendingVoteRepository, tracker *analytics.UseCase, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		remote:   remote,
		pending:  pending,
		tracker:  tracker,
		cooldown: DefaultCooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// GetAggregate reads the current aggregate for a target; zeros when the
// target has never been voted on. A runtime aggregator failure degrades to
// the local event-log recomputation, flagged as such.
func (uc *UseCase) GetAggregate(ctx context.Context, target string) (Result, error) {
	if uc.remote == nil {
		return Result{}, domain.ErrStoreUnavailable
	}
	agg, err := uc.remote.GetAggregate(ctx, target)
	if err != nil {
		uc.logger.Warn("remote aggregate read failed, serving local", zap.String("target", target), zap.Error(err))
		return Result{RatingAggregate: uc.localAggregate(ctx, target), Local: true}, nil
	}
	return Result{RatingAggregate: agg}, nil
}

// SubmitVote validates and applies one vote. Cooldown rejections surface as
// domain.ErrCooldownActive; any other aggregator failure falls back to
// recording the vote locally (event log + replay buffer) and returns the
// local aggregate with Local set.
func (uc *UseCase) SubmitVote(ctx context.Context, target, voterKey string, score int) (Result, error) {
	vote, err := domain.NewVote(target, voterKey, score, uc.now())
	if err != nil {
		return Result{}, err
	}

	if uc.remote != nil {
		agg, err := uc.remote.Apply(ctx, vote, uc.cooldown)
		if err == nil {
			uc.trackVote(ctx, vote)
			return Result{RatingAggregate: agg}, nil
		}
		if errors.Is(err, domain.ErrCooldownActive) || domain.IsDomainError(err, domain.ErrCodeCooldown) {
			return Result{}, domain.ErrCooldownActive
		}
		uc.logger.Warn("remote vote failed, recording locally", zap.String("target", target), zap.Error(err))
	}

	// Local fallback path. The vote keeps its idempotency key, so a replay
	// that races a retry cannot double-count on the remote side.
	uc.trackVote(ctx, vote)
	if uc.pending != nil {
		if err := uc.pending.Enqueue(ctx, vote); err != nil {
			uc.logger.Warn("failed to buffer vote for replay", zap.Error(err))
		}
	}
	return Result{RatingAggregate: uc.localAggregate(ctx, target), Local: true}, nil
}

// SetCooldown overrides the cooldown window.
func (uc *UseCase) SetCooldown(d time.Duration) {
	uc.cooldown = d
}

// SetClock overrides the vote timestamp source (tests).
func (uc *UseCase) SetClock(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}

func (uc *UseCase) trackVote(ctx context.Context, vote domain.Vote) {
	if uc.tracker == nil {
		return
	}
	uc.tracker.Record(ctx, domain.EventRatingSubmit, domain.RatingPayload{
		Target: vote.Target,
		Score:  vote.Score,
		Voter:  vote.VoterKey,
		VoteID: vote.ID,
	})
}

// localAggregate recomputes an aggregate from rating_submit events for the
// target. Best-effort: an unreadable log yields zeros.
func (uc *UseCase) localAggregate(ctx context.Context, target string) domain.RatingAggregate {
	agg := domain.RatingAggregate{Target: target}
	if uc.tracker == nil {
		agg.Finalize()
		return agg
	}
	events := uc.tracker.Query(ctx, analytics.QueryParams{Types: []domain.EventType{domain.EventRatingSubmit}})
	for _, ev := range events {
		var payload domain.RatingPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			continue
		}
		if payload.Target != target || payload.Score < 1 || payload.Score > 5 {
			continue
		}
		agg.TotalVotes++
		agg.TotalScore += int64(payload.Score)
	}
	agg.Finalize()
	return agg
}
