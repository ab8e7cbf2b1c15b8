package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository"
	"github.com/auktia/backend/usecase/analytics"
)

// AggregatorHealth abstracts the connection monitor functionality.
type AggregatorHealth interface {
	RedisOnline() bool
}

// SyncConfig controls the replay schedule and retention policy.
type SyncConfig struct {
	Interval      time.Duration
	BatchSize     int
	MaxRetries    int
	RetentionDays int
}

// VoteSync replays locally buffered votes into the remote aggregator once it
// is reachable again, and applies the event-log retention policy on the same
// schedule. Vote idempotency keys make a replay that raced a successful
// retry a no-op on the remote side.
type VoteSync struct {
	pending repository.PendingVoteRepository
	remote  repository.RatingRepository
	monitor AggregatorHealth
	tracker *analytics.UseCase
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SyncConfig

	// Drain may be invoked from the scheduler and directly; retryMu keeps
	// the retry counters safe when runs overlap.
	retryMu sync.Mutex
	retries map[string]int
}

func NewVoteSync(
	pending repository.PendingVoteRepository,
	remote repository.RatingRepository,
	monitor AggregatorHealth,
	tracker *analytics.UseCase,
	logger *zap.Logger,
	cfg SyncConfig,
) *VoteSync {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 180
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	vs := &VoteSync{
		pending: pending,
		remote:  remote,
		monitor: monitor,
		tracker: tracker,
		logger:  logger,
		cfg:     cfg,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		retries: make(map[string]int),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = vs.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := vs.Drain(ctx); err != nil {
			vs.logger.Error("vote replay failed", zap.Error(err))
		}
		vs.prune(ctx)
	})

	return vs
}

// Start launches the cron scheduler.
func (vs *VoteSync) Start() {
	if vs == nil || vs.cron == nil {
		return
	}
	vs.cron.Start()
	vs.logger.Info("vote sync started", zap.Duration("interval", vs.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (vs *VoteSync) Stop(ctx context.Context) {
	if vs == nil || vs.cron == nil {
		return
	}
	stopCtx := vs.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	vs.logger.Info("vote sync stopped")
}

// Drain replays buffered votes synchronously.
func (vs *VoteSync) Drain(ctx context.Context) error {
	if vs == nil || vs.pending == nil || vs.remote == nil {
		return nil
	}
	if vs.monitor != nil && !vs.monitor.RedisOnline() {
		vs.logger.Debug("skipping vote replay (aggregator offline)")
		return nil
	}

	votes, err := vs.pending.Batch(ctx, vs.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, vote := range votes {
		// Replays never enforce cooldown: the vote was already accepted
		// locally when the aggregator was down.
		if _, err := vs.remote.Apply(ctx, vote, 0); err != nil {
			if errors.Is(err, domain.ErrCooldownActive) {
				_ = vs.pending.Remove(ctx, vote.ID)
				continue
			}
			if vs.recordFailure(vote.ID) {
				vs.logger.Warn("dropping buffered vote (max retries reached)",
					zap.String("vote_id", vote.ID),
					zap.String("target", vote.Target))
				_ = vs.pending.Remove(ctx, vote.ID)
			}
			continue
		}

		vs.clearFailures(vote.ID)
		if err := vs.pending.Remove(ctx, vote.ID); err != nil {
			vs.logger.Warn("failed to purge replayed vote", zap.Error(err))
		}
	}
	return nil
}

// recordFailure bumps the retry counter and reports whether the vote has
// exhausted its retries; an exhausted counter is cleared.
func (vs *VoteSync) recordFailure(voteID string) bool {
	vs.retryMu.Lock()
	defer vs.retryMu.Unlock()
	vs.retries[voteID]++
	if vs.retries[voteID] >= vs.cfg.MaxRetries {
		delete(vs.retries, voteID)
		return true
	}
	return false
}

func (vs *VoteSync) clearFailures(voteID string) {
	vs.retryMu.Lock()
	defer vs.retryMu.Unlock()
	delete(vs.retries, voteID)
}

func (vs *VoteSync) prune(ctx context.Context) {
	if vs.tracker == nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -vs.cfg.RetentionDays)
	if removed := vs.tracker.PruneBefore(ctx, cutoff); removed > 0 {
		vs.logger.Info("pruned analytics events", zap.Int("removed", removed))
	}
}
