package domain

import (
	"strconv"
	"time"
)

// LivePhase is the public lifecycle phase of a live event.
type LivePhase string

const (
	PhaseScheduled      LivePhase = "scheduled"
	PhaseRunning        LivePhase = "running"
	PhaseEnded          LivePhase = "ended"
	PhaseFeedbackOpen   LivePhase = "feedback_open"
	PhaseFeedbackClosed LivePhase = "feedback_closed"
)

// LiveEvent is one scheduled or in-progress auction broadcast with
// sequential item reveals.
type LiveEvent struct {
	ID                 string               `json:"id"`
	Title              Localized            `json:"title"`
	StartISO           string               `json:"startIso,omitempty"`
	Visible            bool                 `json:"visible"`
	LinkedAuctionIndex *int                 `json:"linkedAuctionIndex,omitempty"`
	Items              []LiveItem           `json:"items"`
	Settings           LiveSettings         `json:"settings"`
	State              LiveState            `json:"state"`
	Feedback           []FeedbackSubmission `json:"feedbackSubmissions"`
}

// LiveItem is a single lot. FinalPrice is set if and only if Sold is true.
type LiveItem struct {
	Title      Localized `json:"title"`
	StartPrice int64     `json:"startPrice"`
	Img        string    `json:"img,omitempty"`
	Sold       bool      `json:"sold"`
	FinalPrice string    `json:"finalPrice,omitempty"`
}

type LiveSettings struct {
	DurationMinutes int       `json:"durationMinutes"`
	PostMinutes     int       `json:"postMinutes"`
	ShowOnSite      bool      `json:"showOnSite"`
	FeedbackEnabled bool      `json:"feedbackEnabled"`
	ThankYou        Localized `json:"thankYou"`
}

// LiveState tracks the run. CurrentIndex is -1 when nothing is revealed and
// only ever advances during a run.
type LiveState struct {
	Started      bool   `json:"started"`
	CurrentIndex int    `json:"currentIndex"`
	StartedAt    *int64 `json:"startedAt,omitempty"` // ms since epoch
	EndedAt      *int64 `json:"endedAt,omitempty"`   // ms since epoch
}

type FeedbackSubmission struct {
	Name        string `json:"name,omitempty"`
	Message     string `json:"message"`
	Rating      int    `json:"rating,omitempty"`
	SubmittedAt int64  `json:"submittedAt"` // ms since epoch
}

// NewLiveEvent builds an event in the scheduled state.
func NewLiveEvent(id string, title Localized) *LiveEvent {
	return &LiveEvent{
		ID:    id,
		Title: title,
		Items: []LiveItem{},
		Settings: LiveSettings{
			DurationMinutes: 60,
			PostMinutes:     30,
			ShowOnSite:      true,
			FeedbackEnabled: true,
		},
		State:    LiveState{CurrentIndex: -1},
		Feedback: []FeedbackSubmission{},
	}
}

// Start marks the event running and auto-reveals the first item. Starting an
// already-running event only re-affirms the flag.
func (e *LiveEvent) Start(now time.Time) {
	e.State.Started = true
	if e.State.CurrentIndex < 0 && len(e.Items) > 0 {
		e.State.CurrentIndex = 0
	}
	if e.State.StartedAt == nil {
		ts := now.UnixMilli()
		e.State.StartedAt = &ts
	}
}

// Stop halts the run. The first stop after having been running records the
// end timestamp; re-stopping never overwrites it.
func (e *LiveEvent) Stop(now time.Time) {
	wasRunning := e.State.Started
	e.State.Started = false
	if wasRunning && e.State.EndedAt == nil {
		ts := now.UnixMilli()
		e.State.EndedAt = &ts
	}
}

// RevealNext advances to the next item. Revealing past the last item is a
// no-op; the index never wraps or decreases.
func (e *LiveEvent) RevealNext() {
	next := e.State.CurrentIndex + 1
	if next < len(e.Items) {
		e.State.CurrentIndex = next
	}
}

// MarkSold records the sale of the currently revealed item. The index must
// reference a valid, not-yet-sold item and finalPrice must be numeric; a
// previous sale is never silently overwritten.
func (e *LiveEvent) MarkSold(finalPrice string) error {
	idx := e.State.CurrentIndex
	if idx < 0 || idx >= len(e.Items) {
		return NewError(ErrCodeInvalid, "no item is currently revealed")
	}
	if e.Items[idx].Sold {
		return NewError(ErrCodeConflict, "item is already sold")
	}
	if _, err := strconv.ParseFloat(finalPrice, 64); err != nil {
		return NewError(ErrCodeInvalid, "final price must be numeric")
	}
	e.Items[idx].Sold = true
	e.Items[idx].FinalPrice = finalPrice
	return nil
}

// PostRemaining returns how much of the post-event feedback window is left,
// in milliseconds. Zero when the event has not ended or the window elapsed.
func (e *LiveEvent) PostRemaining(now time.Time) int64 {
	if e.State.EndedAt == nil {
		return 0
	}
	window := int64(e.Settings.PostMinutes) * 60_000
	remaining := window - (now.UnixMilli() - *e.State.EndedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Phase derives the lifecycle phase from state and the server clock.
func (e *LiveEvent) Phase(now time.Time) LivePhase {
	if e.State.Started {
		return PhaseRunning
	}
	if e.State.EndedAt == nil {
		return PhaseScheduled
	}
	if !e.Settings.FeedbackEnabled || e.Settings.PostMinutes <= 0 {
		return PhaseEnded
	}
	if e.PostRemaining(now) > 0 {
		return PhaseFeedbackOpen
	}
	return PhaseFeedbackClosed
}

// AcceptFeedback appends a submission while the window is open. The check
// runs against the server clock; the client is never trusted with it.
func (e *LiveEvent) AcceptFeedback(sub FeedbackSubmission, now time.Time) error {
	if !e.Settings.FeedbackEnabled {
		return ErrFeedbackClosed
	}
	if e.PostRemaining(now) <= 0 {
		return ErrFeedbackClosed
	}
	sub.SubmittedAt = now.UnixMilli()
	e.Feedback = append(e.Feedback, sub)
	return nil
}

// CurrentItem returns the revealed item, or nil when nothing is revealed.
func (e *LiveEvent) CurrentItem() *LiveItem {
	idx := e.State.CurrentIndex
	if idx < 0 || idx >= len(e.Items) {
		return nil
	}
	return &e.Items[idx]
}

// History returns the items strictly before the current index, regardless of
// sold status.
func (e *LiveEvent) History() []LiveItem {
	idx := e.State.CurrentIndex
	if idx <= 0 {
		return []LiveItem{}
	}
	if idx > len(e.Items) {
		idx = len(e.Items)
	}
	return e.Items[:idx]
}

// Total sums the final prices of sold items; unsold items contribute zero.
func (e *LiveEvent) Total() float64 {
	var total float64
	for _, it := range e.Items {
		if !it.Sold {
			continue
		}
		if v, err := strconv.ParseFloat(it.FinalPrice, 64); err == nil {
			total += v
		}
	}
	return total
}
