package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the analytics event kinds the site records.
type EventType string

const (
	EventPageView     EventType = "page_view"
	EventSectionView  EventType = "section_view"
	EventSubscribe    EventType = "newsletter_subscribe"
	EventRegistration EventType = "registration_submit"
	EventRatingSubmit EventType = "rating_submit"
	EventCustom       EventType = "custom"
)

// KnownEventTypes lists every recordable type in a stable order.
var KnownEventTypes = []EventType{
	EventPageView,
	EventSectionView,
	EventSubscribe,
	EventRegistration,
	EventRatingSubmit,
	EventCustom,
}

// ValidEventType reports whether t is a recordable event type.
func ValidEventType(t EventType) bool {
	for _, k := range KnownEventTypes {
		if k == t {
			return true
		}
	}
	return false
}

// AnalyticsEvent is one append-only log entry. Events are never mutated
// after creation.
type AnalyticsEvent struct {
	ID      string          `json:"id"`
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	TS      int64           `json:"ts"` // milliseconds since epoch
}

// Dimensions are the segmentation fields shared by every payload variant.
type Dimensions struct {
	Lang   string `json:"lang,omitempty"`
	Device string `json:"device,omitempty"`
	Route  string `json:"route,omitempty"`
}

// PageViewPayload accompanies page_view events.
type PageViewPayload struct {
	Dimensions
	Referrer string `json:"referrer,omitempty"`
}

// SectionViewPayload accompanies section_view events.
type SectionViewPayload struct {
	Dimensions
	SectionID string `json:"sectionId"`
}

// SubscribePayload accompanies newsletter_subscribe events.
type SubscribePayload struct {
	Dimensions
}

// RegistrationPayload accompanies registration_submit events.
type RegistrationPayload struct {
	Dimensions
	Title     string `json:"title,omitempty"`
	AuctionID string `json:"auctionId,omitempty"`
}

// RatingPayload accompanies rating_submit events. VoteID doubles as the
// idempotency key when a locally recorded vote is replayed to the remote
// aggregator.
type RatingPayload struct {
	Dimensions
	Target string `json:"target"`
	Score  int    `json:"score"`
	Voter  string `json:"voter,omitempty"`
	VoteID string `json:"voteId,omitempty"`
}

// CustomPayload accompanies custom events.
type CustomPayload struct {
	Dimensions
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an event with a fresh collision-resistant ID and the given
// timestamp. The payload is marshalled best-effort; a marshal failure leaves
// it empty rather than failing the instrumented call site.
func NewEvent(t EventType, payload interface{}, ts time.Time) AnalyticsEvent {
	ev := AnalyticsEvent{
		ID:   uuid.NewString(),
		Type: t,
		TS:   ts.UnixMilli(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = raw
		}
	}
	return ev
}

// Time returns the event timestamp as a UTC time.
func (e AnalyticsEvent) Time() time.Time {
	return time.UnixMilli(e.TS).UTC()
}

// Field extracts a top-level string field from the payload. Missing or
// non-string fields yield "".
func (e AnalyticsEvent) Field(name string) string {
	if len(e.Payload) == 0 {
		return ""
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(e.Payload, &m); err != nil {
		return ""
	}
	raw, ok := m[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
