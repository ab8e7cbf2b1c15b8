package newsletter

import (
	"context"
	"testing"
	"time"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository/memory"
	"github.com/auktia/backend/usecase/analytics"
)

func TestSubscribeDeduplicates(t *testing.T) {
	ctx := context.Background()
	tracker := analytics.New(memory.NewEventRepository(), nil, nil)
	uc := New(memory.NewSubscriberRepository(), tracker, nil)

	added, err := uc.Subscribe(ctx, "Anna@Example.SE", "sv")
	if err != nil || !added {
		t.Fatalf("first subscribe: added=%v err=%v", added, err)
	}

	// Case and whitespace variants are the same address.
	added, err = uc.Subscribe(ctx, "  anna@example.se ", "sv")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("duplicate subscribe reported as new")
	}

	subs, err := uc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Email != "anna@example.se" {
		t.Fatalf("subscribers = %+v", subs)
	}

	// Only the fresh signup is tracked.
	events := tracker.Query(ctx, analytics.QueryParams{
		Types: []domain.EventType{domain.EventSubscribe},
		To:    time.Now().Add(time.Hour).UnixMilli(),
	})
	if len(events) != 1 {
		t.Errorf("newsletter_subscribe events = %d, want 1", len(events))
	}
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	uc := New(memory.NewSubscriberRepository(), nil, nil)
	for _, email := range []string{"", "nope", "a@b"} {
		if _, err := uc.Subscribe(context.Background(), email, "sv"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Errorf("Subscribe(%q) err = %v, want INVALID", email, err)
		}
	}
}

func TestSubscribeWithoutStore(t *testing.T) {
	uc := New(nil, nil, nil)
	_, err := uc.Subscribe(context.Background(), "anna@example.se", "sv")
	if !domain.IsDomainError(err, domain.ErrCodeNotImplemented) {
		t.Fatalf("err = %v, want NOT_IMPLEMENTED", err)
	}
}
