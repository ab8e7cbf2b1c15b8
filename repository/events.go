package repository

import (
	"context"

	"github.com/auktia/backend/domain"
)

// EventRepository is the append-only analytics log. Insertion order is
// preserved within one process.
type EventRepository interface {
	Append(ctx context.Context, ev domain.AnalyticsEvent) error
	// ReadAll returns every event in insertion order.
	ReadAll(ctx context.Context) ([]domain.AnalyticsEvent, error)
	// PruneBefore removes events older than the cutoff (ms since epoch).
	PruneBefore(ctx context.Context, cutoff int64) (int, error)
}
