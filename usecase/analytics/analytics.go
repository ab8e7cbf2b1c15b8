// Package analytics implements the event-tracking query and aggregation
// pipeline: filtering, per-type histograms, time-series bucketing,
// period-over-period comparison, top-N breakdowns and CSV export.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/internal/broadcast"
	"github.com/auktia/backend/repository"
)

// Filters segment a query. An empty slice for a dimension means no
// restriction on that dimension; non-empty slices are AND-ed across
// dimensions.
type Filters struct {
	Langs   []string
	Devices []string
	Routes  []string
}

// QueryParams select events by type, inclusive time range and segmentation.
type QueryParams struct {
	Types   []domain.EventType // nil or empty: all types
	From    int64              // ms since epoch, inclusive
	To      int64              // ms since epoch, inclusive
	Filters Filters
}

// UseCase reads and aggregates the analytics event log.
type UseCase struct {
	events repository.EventRepository
	hub    *broadcast.Hub
	logger *zap.Logger
	now    func() time.Time
}

func New(events repository.EventRepository, hub *broadcast.Hub, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		events: events,
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

// Record appends one event. It is best-effort: storage failures are logged
// and swallowed so tracking can never break the feature it instruments.
func (uc *UseCase) Record(ctx context.Context, t domain.EventType, payload interface{}) domain.AnalyticsEvent {
	ev := domain.NewEvent(t, payload, uc.now())
	if uc.events == nil {
		return ev
	}
	if err := uc.events.Append(ctx, ev); err != nil {
		uc.logger.Warn("analytics append failed", zap.String("type", string(t)), zap.Error(err))
		return ev
	}
	uc.hub.Publish(broadcast.TopicEvents)
	return ev
}

// Query returns events whose type is in params.Types (all when empty) and
// whose timestamp lies in [From, To], further narrowed by the segmentation
// filters. Read failures yield an empty result, never an error.
func (uc *UseCase) Query(ctx context.Context, params QueryParams) []domain.AnalyticsEvent {
	if uc.events == nil {
		return nil
	}
	all, err := uc.events.ReadAll(ctx)
	if err != nil {
		uc.logger.Warn("analytics read failed", zap.Error(err))
		return nil
	}

	var out []domain.AnalyticsEvent
	for _, ev := range all {
		if !typeMatches(ev.Type, params.Types) {
			continue
		}
		if params.From != 0 && ev.TS < params.From {
			continue
		}
		if params.To != 0 && ev.TS > params.To {
			continue
		}
		if !filterMatches(ev, params.Filters) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Summarize builds a histogram of events by type.
func Summarize(events []domain.AnalyticsEvent) map[domain.EventType]int {
	counts := make(map[domain.EventType]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	return counts
}

// PruneBefore drops events older than the cutoff (retention policy).
func (uc *UseCase) PruneBefore(ctx context.Context, cutoff time.Time) int {
	if uc.events == nil {
		return 0
	}
	removed, err := uc.events.PruneBefore(ctx, cutoff.UnixMilli())
	if err != nil {
		uc.logger.Warn("analytics prune failed", zap.Error(err))
		return 0
	}
	return removed
}

// SetClock overrides the timestamp source (tests).
func (uc *UseCase) SetClock(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}

func typeMatches(t domain.EventType, types []domain.EventType) bool {
	if len(types) == 0 {
		return true
	}
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func filterMatches(ev domain.AnalyticsEvent, f Filters) bool {
	return dimensionMatches(ev.Field("lang"), f.Langs) &&
		dimensionMatches(ev.Field("device"), f.Devices) &&
		dimensionMatches(ev.Field("route"), f.Routes)
}

func dimensionMatches(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
