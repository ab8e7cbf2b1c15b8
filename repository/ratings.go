package repository

import (
	"context"
	"time"

	"github.com/auktia/backend/domain"
)

// RatingRepository is the authoritative vote aggregator. Apply must perform
// a true atomic add so concurrent votes from different voters are never lost
// to a read-modify-write race.
type RatingRepository interface {
	GetAggregate(ctx context.Context, target string) (domain.RatingAggregate, error)
	// Apply increments the target's aggregate by one vote. It returns
	// domain.ErrCooldownActive when the same voter hit the same target within
	// the cooldown window, and is idempotent per vote ID: a replayed vote
	// leaves the aggregate unchanged.
	Apply(ctx context.Context, vote domain.Vote, cooldown time.Duration) (domain.RatingAggregate, error)
}

// PendingVoteRepository buffers votes that could not reach the remote
// aggregator, for later replay.
type PendingVoteRepository interface {
	Enqueue(ctx context.Context, vote domain.Vote) error
	Batch(ctx context.Context, limit int) ([]domain.Vote, error)
	Remove(ctx context.Context, id string) error
	Size(ctx context.Context) (int, error)
}
