package repository

import "context"

// ContentRepository persists the site content blob together with its
// revision. Both are always written in one transaction.
type ContentRepository interface {
	// Load returns the raw document and its revision. A missing document is
	// (nil, 0, nil), not an error.
	Load(ctx context.Context) (raw []byte, rev int64, err error)
	// Save replaces the document and revision atomically.
	Save(ctx context.Context, raw []byte, rev int64) error
	// Reset discards the stored document.
	Reset(ctx context.Context) error
}
