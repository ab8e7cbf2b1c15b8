// Package live drives the live-auction lifecycle. Every control action is a
// whole-document read-modify-write against the content store, so the
// persisted document stays the single source of truth and the public view is
// always a pure derivation.
package live

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/usecase/analytics"
	contentUC "github.com/auktia/backend/usecase/content"
)

type UseCase struct {
	content *contentUC.UseCase
	tracker *analytics.UseCase
	logger  *zap.Logger
	now     func() time.Time
}

func New(content *contentUC.UseCase, tracker *analytics.UseCase, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		content: content,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
	}
}

// View is the public read model of one live event, derived on every read.
type View struct {
	ID            string               `json:"id"`
	Title         domain.Localized     `json:"title"`
	Address       string               `json:"address,omitempty"`
	StartISO      string               `json:"startIso,omitempty"`
	Phase         domain.LivePhase     `json:"phase"`
	Started       bool                 `json:"started"`
	CurrentIndex  int                  `json:"currentIndex"`
	CurrentItem   *domain.LiveItem     `json:"currentItem,omitempty"`
	History       []domain.LiveItem    `json:"history"`
	Total         float64              `json:"total"`
	ItemCount     int                  `json:"itemCount"`
	PostRemaining int64                `json:"postRemaining"`
	Feedback      bool                 `json:"feedbackEnabled"`
	ThankYou      domain.Localized     `json:"thankYou"`
}

// Create registers a new scheduled event and appends it to the display
// order.
func (uc *UseCase) Create(ctx context.Context, title domain.Localized, startISO string, linkedAuction *int) (*domain.LiveEvent, error) {
	id := uuid.NewString()
	ev := domain.NewLiveEvent(id, title)
	ev.StartISO = startISO
	ev.Visible = true
	ev.LinkedAuctionIndex = linkedAuction

	_, err := uc.content.Mutate(ctx, func(doc *domain.ContentDocument) error {
		if linkedAuction != nil {
			idx := *linkedAuction
			if idx < 0 || idx >= len(doc.Sections.Auctions.List) {
				return domain.NewError(domain.ErrCodeInvalid, "linked auction index out of range")
			}
		}
		doc.Actions.Events[id] = ev
		doc.Actions.Order = append(doc.Actions.Order, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Delete removes an event. Events are never deleted automatically; this is
// the explicit admin path.
func (uc *UseCase) Delete(ctx context.Context, eventID string) error {
	_, err := uc.content.Mutate(ctx, func(doc *domain.ContentDocument) error {
		if _, ok := doc.Actions.Events[eventID]; !ok {
			return domain.ErrEventNotFound
		}
		delete(doc.Actions.Events, eventID)
		order := doc.Actions.Order[:0]
		for _, id := range doc.Actions.Order {
			if id != eventID {
				order = append(order, id)
			}
		}
		doc.Actions.Order = order
		return nil
	})
	return err
}

// Start begins (or re-affirms) a run, auto-revealing the first item.
func (uc *UseCase) Start(ctx context.Context, eventID string) (*View, error) {
	return uc.transition(ctx, eventID, func(ev *domain.LiveEvent) error {
		ev.Start(uc.now())
		return nil
	})
}

// Stop halts the run; the first stop records the end timestamp.
func (uc *UseCase) Stop(ctx context.Context, eventID string) (*View, error) {
	return uc.transition(ctx, eventID, func(ev *domain.LiveEvent) error {
		ev.Stop(uc.now())
		return nil
	})
}

// RevealNext advances to the next item; past the last item it is a no-op.
func (uc *UseCase) RevealNext(ctx context.Context, eventID string) (*View, error) {
	return uc.transition(ctx, eventID, func(ev *domain.LiveEvent) error {
		ev.RevealNext()
		return nil
	})
}

// MarkSold closes the currently revealed item at the given price.
func (uc *UseCase) MarkSold(ctx context.Context, eventID, finalPrice string) (*View, error) {
	return uc.transition(ctx, eventID, func(ev *domain.LiveEvent) error {
		return ev.MarkSold(finalPrice)
	})
}

// SubmitFeedback appends a feedback entry while the post-event window is
// open, validated against the server clock.
func (uc *UseCase) SubmitFeedback(ctx context.Context, eventID string, sub domain.FeedbackSubmission) error {
	_, err := uc.transition(ctx, eventID, func(ev *domain.LiveEvent) error {
		return ev.AcceptFeedback(sub, uc.now())
	})
	if err != nil {
		return err
	}
	if uc.tracker != nil {
		uc.tracker.Record(ctx, domain.EventCustom, domain.CustomPayload{Name: "live_feedback"})
	}
	return nil
}

// Get returns the derived view of one event.
func (uc *UseCase) Get(ctx context.Context, eventID string) (*View, error) {
	doc := uc.content.Load(ctx)
	ev, ok := doc.Actions.Events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return uc.buildView(doc, ev), nil
}

// List returns the views of all publicly visible events in display order.
func (uc *UseCase) List(ctx context.Context) []*View {
	doc := uc.content.Load(ctx)
	views := make([]*View, 0, len(doc.Actions.Order))
	for _, id := range doc.Actions.Order {
		ev, ok := doc.Actions.Events[id]
		if !ok || !ev.Visible || !ev.Settings.ShowOnSite {
			continue
		}
		views = append(views, uc.buildView(doc, ev))
	}
	return views
}

// SetClock overrides the transition clock (tests).
func (uc *UseCase) SetClock(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}

func (uc *UseCase) transition(ctx context.Context, eventID string, fn func(*domain.LiveEvent) error) (*View, error) {
	var view *View
	doc, err := uc.content.Mutate(ctx, func(doc *domain.ContentDocument) error {
		ev, ok := doc.Actions.Events[eventID]
		if !ok {
			return domain.ErrEventNotFound
		}
		return fn(ev)
	})
	if err != nil {
		return nil, err
	}
	if ev, ok := doc.Actions.Events[eventID]; ok {
		view = uc.buildView(doc, ev)
	}
	return view, nil
}

// buildView derives the public read model. Title, address and start time
// come from the linked auction when the back-reference is valid; the event's
// own fields are fallback-only.
func (uc *UseCase) buildView(doc *domain.ContentDocument, ev *domain.LiveEvent) *View {
	now := uc.now()
	view := &View{
		ID:            ev.ID,
		Title:         ev.Title,
		StartISO:      ev.StartISO,
		Phase:         ev.Phase(now),
		Started:       ev.State.Started,
		CurrentIndex:  ev.State.CurrentIndex,
		CurrentItem:   ev.CurrentItem(),
		History:       ev.History(),
		Total:         ev.Total(),
		ItemCount:     len(ev.Items),
		PostRemaining: ev.PostRemaining(now),
		Feedback:      ev.Settings.FeedbackEnabled,
		ThankYou:      ev.Settings.ThankYou,
	}
	if auction, ok := doc.LinkedAuction(ev); ok {
		view.Title = auction.Title
		view.Address = auction.Address
		if auction.StartISO != "" {
			view.StartISO = auction.StartISO
		}
	}
	return view
}
