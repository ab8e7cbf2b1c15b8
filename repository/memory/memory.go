// Package memory provides in-memory repository adapters. They back the
// usecase tests and any deployment that runs without external stores.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository"
)

// ContentRepository is a mutex-guarded in-memory content blob.
type ContentRepository struct {
	mu  sync.Mutex
	raw []byte
	rev int64
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{}
}

func (r *ContentRepository) Load(ctx context.Context) ([]byte, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raw == nil {
		return nil, 0, nil
	}
	return append([]byte(nil), r.raw...), r.rev, nil
}

func (r *ContentRepository) Save(ctx context.Context, raw []byte, rev int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = append([]byte(nil), raw...)
	r.rev = rev
	return nil
}

func (r *ContentRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = nil
	r.rev = 0
	return nil
}

// EventRepository is an in-memory append-only log.
type EventRepository struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) Append(ctx context.Context, ev domain.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *EventRepository) ReadAll(ctx context.Context) ([]domain.AnalyticsEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AnalyticsEvent(nil), r.events...), nil
}

func (r *EventRepository) PruneBefore(ctx context.Context, cutoff int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	removed := 0
	for _, ev := range r.events {
		if ev.TS < cutoff {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	r.events = kept
	return removed, nil
}

// RatingRepository is an in-memory aggregator with the same cooldown and
// idempotency semantics as the Redis implementation. Now is injectable so
// tests can move the clock.
type RatingRepository struct {
	mu         sync.Mutex
	aggregates map[string]*domain.RatingAggregate
	cooldowns  map[string]time.Time // cooldown key -> expiry
	seen       map[string]struct{}
	Now        func() time.Time

	// Fail makes every call error, simulating an unreachable aggregator.
	Fail error
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{
		aggregates: make(map[string]*domain.RatingAggregate),
		cooldowns:  make(map[string]time.Time),
		seen:       make(map[string]struct{}),
		Now:        time.Now,
	}
}

func (r *RatingRepository) GetAggregate(ctx context.Context, target string) (domain.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return domain.RatingAggregate{}, r.Fail
	}
	agg := domain.RatingAggregate{Target: target}
	if stored, ok := r.aggregates[target]; ok {
		agg = *stored
	}
	agg.Finalize()
	return agg, nil
}

func (r *RatingRepository) Apply(ctx context.Context, vote domain.Vote, cooldown time.Duration) (domain.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return domain.RatingAggregate{}, r.Fail
	}

	if _, ok := r.seen[vote.ID]; ok {
		agg := domain.RatingAggregate{Target: vote.Target}
		if stored, ok := r.aggregates[vote.Target]; ok {
			agg = *stored
		}
		agg.Finalize()
		return agg, nil
	}

	now := r.Now()
	key := vote.CooldownKey()
	if cooldown > 0 {
		if expiry, ok := r.cooldowns[key]; ok && now.Before(expiry) {
			return domain.RatingAggregate{}, domain.ErrCooldownActive
		}
		r.cooldowns[key] = now.Add(cooldown)
	}
	r.seen[vote.ID] = struct{}{}

	agg, ok := r.aggregates[vote.Target]
	if !ok {
		agg = &domain.RatingAggregate{Target: vote.Target}
		r.aggregates[vote.Target] = agg
	}
	agg.TotalVotes++
	agg.TotalScore += int64(vote.Score)

	out := *agg
	out.Finalize()
	return out, nil
}

// PendingVoteRepository is an in-memory replay buffer.
type PendingVoteRepository struct {
	mu    sync.Mutex
	votes []domain.Vote
}

func NewPendingVoteRepository() *PendingVoteRepository {
	return &PendingVoteRepository{}
}

func (r *PendingVoteRepository) Enqueue(ctx context.Context, vote domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = append(r.votes, vote)
	sort.SliceStable(r.votes, func(i, j int) bool {
		return r.votes[i].CastAt.Before(r.votes[j].CastAt)
	})
	return nil
}

func (r *PendingVoteRepository) Batch(ctx context.Context, limit int) ([]domain.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.votes) {
		limit = len(r.votes)
	}
	return append([]domain.Vote(nil), r.votes[:limit]...), nil
}

func (r *PendingVoteRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.votes {
		if v.ID == id {
			r.votes = append(r.votes[:i], r.votes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *PendingVoteRepository) Size(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.votes), nil
}

// ContactRepository is an in-memory submission archive.
type ContactRepository struct {
	mu   sync.Mutex
	subs []repository.ContactSubmission
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

func (r *ContactRepository) Create(ctx context.Context, sub *repository.ContactSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *ContactRepository) List(ctx context.Context, limit, offset int) ([]repository.ContactSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.subs) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(r.subs) {
		end = len(r.subs)
	}
	return append([]repository.ContactSubmission(nil), r.subs[offset:end]...), nil
}

// SubscriberRepository is an in-memory subscriber set.
type SubscriberRepository struct {
	mu   sync.Mutex
	subs map[string]repository.Subscriber
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{subs: make(map[string]repository.Subscriber)}
}

func (r *SubscriberRepository) Add(ctx context.Context, sub repository.Subscriber) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.Email]; ok {
		return false, nil
	}
	r.subs[sub.Email] = sub
	return true, nil
}

func (r *SubscriberRepository) List(ctx context.Context) ([]repository.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
