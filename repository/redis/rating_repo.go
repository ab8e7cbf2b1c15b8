package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository"
)

const (
	fieldVotes = "votes"
	fieldScore = "score"

	// seenTTL bounds how long a vote's idempotency key is remembered. Replays
	// arrive from the pending-vote buffer within minutes, so a day is ample.
	seenTTL = 24 * time.Hour
)

type ratingRepository struct {
	client *redislib.Client
	prefix string
}

// NewRatingRepository creates the Redis-backed ratings aggregator. Counters
// are hashes incremented with HIncrBy, a single atomic add, so concurrent
// votes from independent clients are never lost.
func NewRatingRepository(client *redislib.Client) repository.RatingRepository {
	return &ratingRepository{
		client: client,
		prefix: "rating:",
	}
}

func (r *ratingRepository) GetAggregate(ctx context.Context, target string) (domain.RatingAggregate, error) {
	agg := domain.RatingAggregate{Target: target}
	values, err := r.client.HGetAll(ctx, r.key(target)).Result()
	if err != nil {
		return agg, err
	}
	if v, ok := values[fieldVotes]; ok {
		agg.TotalVotes, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := values[fieldScore]; ok {
		agg.TotalScore, _ = strconv.ParseInt(v, 10, 64)
	}
	agg.Finalize()
	return agg, nil
}

func (r *ratingRepository) Apply(ctx context.Context, vote domain.Vote, cooldown time.Duration) (domain.RatingAggregate, error) {
	// Idempotency: reserve the vote ID first so a replayed vote is a no-op.
	seen, err := r.client.SetNX(ctx, r.seenKey(vote.ID), 1, seenTTL).Result()
	if err != nil {
		return domain.RatingAggregate{}, err
	}
	if !seen {
		return r.GetAggregate(ctx, vote.Target)
	}

	if cooldown > 0 {
		ok, err := r.client.SetNX(ctx, r.cooldownKey(vote), 1, cooldown).Result()
		if err != nil {
			r.client.Del(ctx, r.seenKey(vote.ID))
			return domain.RatingAggregate{}, err
		}
		if !ok {
			// Rejected, so the vote was not consumed; release its ID.
			r.client.Del(ctx, r.seenKey(vote.ID))
			return domain.RatingAggregate{}, domain.ErrCooldownActive
		}
	}

	pipe := r.client.TxPipeline()
	votesCmd := pipe.HIncrBy(ctx, r.key(vote.Target), fieldVotes, 1)
	scoreCmd := pipe.HIncrBy(ctx, r.key(vote.Target), fieldScore, int64(vote.Score))
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.RatingAggregate{}, err
	}

	agg := domain.RatingAggregate{
		Target:     vote.Target,
		TotalVotes: votesCmd.Val(),
		TotalScore: scoreCmd.Val(),
	}
	agg.Finalize()
	return agg, nil
}

func (r *ratingRepository) key(target string) string {
	return r.prefix + target
}

func (r *ratingRepository) cooldownKey(vote domain.Vote) string {
	return fmt.Sprintf("%scd:%s:%s", r.prefix, vote.Target, vote.VoterKey)
}

func (r *ratingRepository) seenKey(id string) string {
	return fmt.Sprintf("%sseen:%s", r.prefix, id)
}
