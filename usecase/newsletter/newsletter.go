package newsletter

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository"
	"github.com/auktia/backend/usecase/analytics"
	"github.com/auktia/backend/usecase/contact"
)

type UseCase struct {
	subs    repository.SubscriberRepository
	tracker *analytics.UseCase
	logger  *zap.Logger
}

func New(subs repository.SubscriberRepository, tracker *analytics.UseCase, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		subs:    subs,
		tracker: tracker,
		logger:  logger,
	}
}

// Subscribe stores a subscriber, deduplicated by normalized email, and
// records a newsletter_subscribe event on a fresh signup.
func (uc *UseCase) Subscribe(ctx context.Context, email, lang string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !contact.ValidEmail(email) {
		return false, domain.NewError(domain.ErrCodeInvalid, "email address is invalid")
	}
	if uc.subs == nil {
		return false, domain.ErrNoStore
	}

	added, err := uc.subs.Add(ctx, repository.Subscriber{Email: email, Lang: lang, JoinedAt: time.Now()})
	if err != nil {
		return false, domain.WrapError(domain.ErrCodeUnavailable, "subscriber store failed", err)
	}
	if added && uc.tracker != nil {
		uc.tracker.Record(ctx, domain.EventSubscribe, domain.SubscribePayload{
			Dimensions: domain.Dimensions{Lang: lang},
		})
	}
	return added, nil
}

// List returns every subscriber (admin export).
func (uc *UseCase) List(ctx context.Context) ([]repository.Subscriber, error) {
	if uc.subs == nil {
		return nil, domain.ErrNoStore
	}
	return uc.subs.List(ctx)
}
