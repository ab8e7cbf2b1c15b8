package content

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/internal/broadcast"
	"github.com/auktia/backend/repository"
)

// DefaultMaxDocumentBytes bounds a saved document. Embedded images are the
// usual culprit; exceeding the bound fails loudly instead of silently
// dropping an admin's edits.
const DefaultMaxDocumentBytes = 2 << 20

// UseCase owns the versioned content document. All writes replace the whole
// document and are serialized in-process, so revision assignment is race-free
// within this service.
type UseCase struct {
	repo     repository.ContentRepository
	hub      *broadcast.Hub
	logger   *zap.Logger
	maxBytes int
	now      func() time.Time

	mu   sync.Mutex // revision assignment
	opMu sync.Mutex // whole read-modify-write cycles (Mutate)
}

func New(repo repository.ContentRepository, hub *broadcast.Hub, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repo:     repo,
		hub:      hub,
		logger:   logger,
		maxBytes: DefaultMaxDocumentBytes,
		now:      time.Now,
	}
}

// Load returns the current document merged over built-in defaults. It never
// fails: a missing repository, a read error or corrupt storage all degrade
// to defaults.
func (uc *UseCase) Load(ctx context.Context) *domain.ContentDocument {
	if uc.repo == nil {
		return domain.DefaultDocument()
	}
	raw, rev, err := uc.repo.Load(ctx)
	if err != nil {
		uc.logger.Warn("content load failed, serving defaults", zap.Error(err))
		return domain.DefaultDocument()
	}
	doc := domain.MergeDocument(raw)
	doc.Revision = rev
	return doc
}

// Revision returns the persisted revision without decoding the document.
func (uc *UseCase) Revision(ctx context.Context) int64 {
	if uc.repo == nil {
		return 0
	}
	_, rev, err := uc.repo.Load(ctx)
	if err != nil {
		return 0
	}
	return rev
}

// Save replaces the entire document. baseRev is the revision the caller read
// before editing; a stale base is rejected unless force is set, turning
// silent last-write-wins into a detectable conflict. Returns the new
// revision.
func (uc *UseCase) Save(ctx context.Context, doc *domain.ContentDocument, baseRev int64, force bool) (int64, error) {
	if uc.repo == nil {
		return 0, domain.ErrNoStore
	}
	if doc == nil {
		return 0, domain.ErrInvalidPayload
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	_, current, err := uc.repo.Load(ctx)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeUnavailable, "content store read failed", err)
	}
	if !force && baseRev != current {
		return 0, domain.ErrStaleRevision
	}

	// Revision is wall-clock milliseconds, bumped past the previous value
	// when the clock has not advanced.
	rev := uc.now().UnixMilli()
	if rev <= current {
		rev = current + 1
	}
	doc.Revision = rev

	raw, err := json.Marshal(doc)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeInvalid, "content document not serializable", err)
	}
	if uc.maxBytes > 0 && len(raw) > uc.maxBytes {
		return 0, domain.NewError(domain.ErrCodeQuota, "content document exceeds storage quota")
	}

	if err := uc.repo.Save(ctx, raw, rev); err != nil {
		return 0, domain.WrapError(domain.ErrCodeUnavailable, "content save failed", err)
	}

	uc.hub.Publish(broadcast.TopicContent)
	return rev, nil
}

// Reset restores the built-in defaults, discarding all edits.
func (uc *UseCase) Reset(ctx context.Context) (int64, error) {
	if uc.repo == nil {
		return 0, domain.ErrNoStore
	}
	return uc.Save(ctx, domain.DefaultDocument(), 0, true)
}

// Mutate loads the document, applies fn and saves the result as a forced
// write. Control actions (live transitions) use this: they are serialized
// server-side, so the stale-base check does not apply to them.
func (uc *UseCase) Mutate(ctx context.Context, fn func(doc *domain.ContentDocument) error) (*domain.ContentDocument, error) {
	if uc.repo == nil {
		return nil, domain.ErrNoStore
	}
	uc.opMu.Lock()
	defer uc.opMu.Unlock()
	doc := uc.Load(ctx)
	if err := fn(doc); err != nil {
		return nil, err
	}
	if _, err := uc.Save(ctx, doc, doc.Revision, true); err != nil {
		return nil, err
	}
	return doc, nil
}

// SetMaxDocumentBytes overrides the storage quota. Zero disables the check.
func (uc *UseCase) SetMaxDocumentBytes(n int) {
	uc.maxBytes = n
}

// SetClock overrides the revision clock (tests).
func (uc *UseCase) SetClock(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}
