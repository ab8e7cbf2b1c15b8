package live

import (
	"context"
	"testing"
	"time"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository/memory"
	contentUC "github.com/auktia/backend/usecase/content"
)

type fixture struct {
	uc      *UseCase
	content *contentUC.UseCase
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	content := contentUC.New(memory.NewContentRepository(), nil, nil)
	f := &fixture{
		uc:      New(content, nil, nil),
		content: content,
		clock:   time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC),
	}
	f.uc.SetClock(func() time.Time { return f.clock })
	return f
}

func (f *fixture) createWithItems(t *testing.T, items int) string {
	t.Helper()
	ev, err := f.uc.Create(context.Background(), domain.Localized{SV: "Kvällsauktion"}, "2026-07-01T18:00", nil)
	if err != nil {
		t.Fatal(err)
	}
	if items > 0 {
		_, err = f.content.Mutate(context.Background(), func(doc *domain.ContentDocument) error {
			stored := doc.Actions.Events[ev.ID]
			for i := 0; i < items; i++ {
				stored.Items = append(stored.Items, domain.LiveItem{
					Title:      domain.Localized{SV: "Objekt"},
					StartPrice: 100,
				})
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return ev.ID
}

func TestCreateAppendsToOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id1 := f.createWithItems(t, 0)
	id2 := f.createWithItems(t, 0)

	doc := f.content.Load(ctx)
	if len(doc.Actions.Order) != 2 || doc.Actions.Order[0] != id1 || doc.Actions.Order[1] != id2 {
		t.Fatalf("order = %v", doc.Actions.Order)
	}

	views := f.uc.List(ctx)
	if len(views) != 2 {
		t.Fatalf("list length = %d", len(views))
	}
	if views[0].Phase != domain.PhaseScheduled {
		t.Errorf("fresh event phase = %s", views[0].Phase)
	}
}

func TestCreateValidatesLinkedAuction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	idx := 0
	if _, err := f.uc.Create(ctx, domain.Localized{SV: "x"}, "", &idx); err == nil {
		t.Fatal("linked auction accepted with empty auction list")
	}

	_, err := f.content.Mutate(ctx, func(doc *domain.ContentDocument) error {
		doc.Sections.Auctions.List = []domain.Auction{
			{ID: "a1", Title: domain.Localized{SV: "Gårdsauktion"}, Address: "Storgatan 1", StartISO: "2026-07-05T10:00"},
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ev, err := f.uc.Create(ctx, domain.Localized{SV: "fallback"}, "", &idx)
	if err != nil {
		t.Fatal(err)
	}

	// The view inherits title, address and start from the linked auction.
	view, err := f.uc.Get(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Title.SV != "Gårdsauktion" || view.Address != "Storgatan 1" || view.StartISO != "2026-07-05T10:00" {
		t.Errorf("view = %+v", view)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.createWithItems(t, 2)

	view, err := f.uc.Start(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Phase != domain.PhaseRunning || view.CurrentIndex != 0 {
		t.Fatalf("after start: %+v", view)
	}

	f.clock = f.clock.Add(time.Hour)
	view, err = f.uc.Stop(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Phase != domain.PhaseFeedbackOpen {
		t.Errorf("after stop phase = %s", view.Phase)
	}
	if view.PostRemaining != 30*60_000 {
		t.Errorf("PostRemaining = %d", view.PostRemaining)
	}

	// State survives the store round-trip.
	reloaded, err := f.uc.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Started || reloaded.Phase != domain.PhaseFeedbackOpen {
		t.Errorf("reloaded = %+v", reloaded)
	}
}

func TestRevealAndSoldFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.createWithItems(t, 3)

	if _, err := f.uc.Start(ctx, id); err != nil {
		t.Fatal(err)
	}

	view, err := f.uc.MarkSold(ctx, id, "2500")
	if err != nil {
		t.Fatal(err)
	}
	if view.CurrentItem == nil || !view.CurrentItem.Sold {
		t.Fatalf("current item after sale: %+v", view.CurrentItem)
	}

	view, err = f.uc.RevealNext(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.CurrentIndex != 1 || len(view.History) != 1 {
		t.Fatalf("after reveal: index=%d history=%d", view.CurrentIndex, len(view.History))
	}

	if _, err := f.uc.MarkSold(ctx, id, "1000"); err != nil {
		t.Fatal(err)
	}
	view, err = f.uc.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Total != 3500 {
		t.Errorf("total = %v, want 3500", view.Total)
	}

	// Re-selling the current item is rejected.
	if _, err := f.uc.MarkSold(ctx, id, "9999"); err == nil {
		t.Fatal("double sale accepted")
	}
}

func TestRevealPastEndIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.createWithItems(t, 1)

	if _, err := f.uc.Start(ctx, id); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		view, err := f.uc.RevealNext(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if view.CurrentIndex != 0 {
			t.Fatalf("index = %d after reveal past end", view.CurrentIndex)
		}
	}
}

func TestTransitionsOnUnknownEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.uc.Start(ctx, "missing"); err != domain.ErrEventNotFound {
		t.Errorf("start: %v", err)
	}
	if _, err := f.uc.Get(ctx, "missing"); err != domain.ErrEventNotFound {
		t.Errorf("get: %v", err)
	}
	if err := f.uc.Delete(ctx, "missing"); err != domain.ErrEventNotFound {
		t.Errorf("delete: %v", err)
	}
}

func TestFeedbackWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.createWithItems(t, 1)

	sub := domain.FeedbackSubmission{Message: "Trevlig auktion!"}

	// Feedback before the event ends is rejected.
	if err := f.uc.SubmitFeedback(ctx, id, sub); err == nil {
		t.Fatal("feedback accepted before the event ended")
	}

	if _, err := f.uc.Start(ctx, id); err != nil {
		t.Fatal(err)
	}
	f.clock = f.clock.Add(time.Hour)
	if _, err := f.uc.Stop(ctx, id); err != nil {
		t.Fatal(err)
	}

	f.clock = f.clock.Add(10 * time.Minute)
	if err := f.uc.SubmitFeedback(ctx, id, sub); err != nil {
		t.Fatalf("feedback inside window: %v", err)
	}

	f.clock = f.clock.Add(25 * time.Minute)
	if err := f.uc.SubmitFeedback(ctx, id, sub); err == nil {
		t.Fatal("feedback accepted after the window closed")
	}

	doc := f.content.Load(ctx)
	if got := len(doc.Actions.Events[id].Feedback); got != 1 {
		t.Errorf("stored feedback count = %d, want 1", got)
	}
}

func TestListSkipsHiddenEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	visible := f.createWithItems(t, 0)
	hidden := f.createWithItems(t, 0)

	_, err := f.content.Mutate(ctx, func(doc *domain.ContentDocument) error {
		doc.Actions.Events[hidden].Visible = false
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	views := f.uc.List(ctx)
	if len(views) != 1 || views[0].ID != visible {
		t.Fatalf("list = %+v", views)
	}
}

func TestDeleteRemovesFromOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id1 := f.createWithItems(t, 0)
	id2 := f.createWithItems(t, 0)

	if err := f.uc.Delete(ctx, id1); err != nil {
		t.Fatal(err)
	}

	doc := f.content.Load(ctx)
	if len(doc.Actions.Order) != 1 || doc.Actions.Order[0] != id2 {
		t.Fatalf("order after delete = %v", doc.Actions.Order)
	}
	if _, ok := doc.Actions.Events[id1]; ok {
		t.Error("deleted event still stored")
	}
}
