package domain

import (
	"testing"
	"time"
)

func runningEvent(items int) *LiveEvent {
	ev := NewLiveEvent("ev1", Localized{SV: "Testauktion"})
	for i := 0; i < items; i++ {
		ev.Items = append(ev.Items, LiveItem{Title: Localized{SV: "Objekt"}, StartPrice: 100})
	}
	return ev
}

func TestStartAutoRevealsFirstItem(t *testing.T) {
	now := time.Now()

	ev := runningEvent(3)
	ev.Start(now)
	if !ev.State.Started {
		t.Fatal("event not started")
	}
	if ev.State.CurrentIndex != 0 {
		t.Fatalf("CurrentIndex = %d, want 0", ev.State.CurrentIndex)
	}

	empty := runningEvent(0)
	empty.Start(now)
	if empty.State.CurrentIndex != -1 {
		t.Fatalf("empty event CurrentIndex = %d, want -1", empty.State.CurrentIndex)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	ev := runningEvent(2)
	first := time.Now()
	ev.Start(first)
	startedAt := *ev.State.StartedAt

	ev.RevealNext()
	ev.Start(first.Add(time.Minute))

	if *ev.State.StartedAt != startedAt {
		t.Error("second start overwrote StartedAt")
	}
	if ev.State.CurrentIndex != 1 {
		t.Errorf("second start reset CurrentIndex to %d", ev.State.CurrentIndex)
	}
}

func TestRevealNextNeverPassesLastItem(t *testing.T) {
	ev := runningEvent(2)
	ev.Start(time.Now())

	for i := 0; i < 5; i++ {
		ev.RevealNext()
	}
	if ev.State.CurrentIndex != 1 {
		t.Fatalf("CurrentIndex = %d, want 1", ev.State.CurrentIndex)
	}
}

func TestRevealIndexIsMonotonic(t *testing.T) {
	ev := runningEvent(4)
	ev.Start(time.Now())

	prev := ev.State.CurrentIndex
	for i := 0; i < 10; i++ {
		ev.RevealNext()
		if ev.State.CurrentIndex < prev {
			t.Fatalf("index decreased from %d to %d", prev, ev.State.CurrentIndex)
		}
		prev = ev.State.CurrentIndex
	}
}

func TestMarkSold(t *testing.T) {
	ev := runningEvent(2)
	ev.Start(time.Now())

	if err := ev.MarkSold("1500"); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}
	if !ev.Items[0].Sold || ev.Items[0].FinalPrice != "1500" {
		t.Fatalf("item not recorded as sold: %+v", ev.Items[0])
	}

	// A second sale of the same item must be rejected, not overwritten.
	if err := ev.MarkSold("2000"); err == nil {
		t.Fatal("re-selling the current item succeeded")
	}
	if ev.Items[0].FinalPrice != "1500" {
		t.Fatalf("FinalPrice overwritten to %q", ev.Items[0].FinalPrice)
	}
}

func TestMarkSoldValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *LiveEvent
		price string
	}{
		{"nothing revealed", func() *LiveEvent { return runningEvent(2) }, "100"},
		{"non-numeric price", func() *LiveEvent {
			ev := runningEvent(1)
			ev.Start(time.Now())
			return ev
		}, "hundra"},
		{"empty price", func() *LiveEvent {
			ev := runningEvent(1)
			ev.Start(time.Now())
			return ev
		}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup().MarkSold(tc.price); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStopRecordsEndOnce(t *testing.T) {
	ev := runningEvent(1)
	start := time.Now()
	ev.Start(start)

	ev.Stop(start.Add(time.Hour))
	first := *ev.State.EndedAt

	ev.Stop(start.Add(2 * time.Hour))
	if *ev.State.EndedAt != first {
		t.Error("second stop overwrote EndedAt")
	}

	// Stopping a never-started event records no end.
	fresh := runningEvent(1)
	fresh.Stop(start)
	if fresh.State.EndedAt != nil {
		t.Error("stop on scheduled event recorded EndedAt")
	}
}

func TestPhase(t *testing.T) {
	start := time.Now()

	ev := runningEvent(1)
	if got := ev.Phase(start); got != PhaseScheduled {
		t.Errorf("fresh event phase = %s", got)
	}

	ev.Start(start)
	if got := ev.Phase(start); got != PhaseRunning {
		t.Errorf("started event phase = %s", got)
	}

	ev.Stop(start.Add(time.Hour))
	end := start.Add(time.Hour)
	if got := ev.Phase(end.Add(time.Minute)); got != PhaseFeedbackOpen {
		t.Errorf("phase just after stop = %s", got)
	}
	if got := ev.Phase(end.Add(31 * time.Minute)); got != PhaseFeedbackClosed {
		t.Errorf("phase after window = %s", got)
	}

	ev.Settings.FeedbackEnabled = false
	if got := ev.Phase(end.Add(time.Minute)); got != PhaseEnded {
		t.Errorf("phase with feedback disabled = %s", got)
	}
}

func TestAcceptFeedbackWindow(t *testing.T) {
	start := time.Now()
	ev := runningEvent(1)
	ev.Start(start)
	end := start.Add(time.Hour)
	ev.Stop(end)

	sub := FeedbackSubmission{Message: "Tack!", SubmittedAt: 12345}
	if err := ev.AcceptFeedback(sub, end.Add(10*time.Minute)); err != nil {
		t.Fatalf("feedback inside window rejected: %v", err)
	}
	// The server clock stamps the submission, whatever the client sent.
	if got := ev.Feedback[0].SubmittedAt; got != end.Add(10*time.Minute).UnixMilli() {
		t.Errorf("SubmittedAt = %d, want server time", got)
	}

	if err := ev.AcceptFeedback(sub, end.Add(31*time.Minute)); err == nil {
		t.Error("feedback after window accepted")
	}

	ev.Settings.FeedbackEnabled = false
	if err := ev.AcceptFeedback(sub, end.Add(time.Minute)); err == nil {
		t.Error("feedback accepted with feedback disabled")
	}
}

func TestPostRemaining(t *testing.T) {
	start := time.Now()
	ev := runningEvent(1)

	if got := ev.PostRemaining(start); got != 0 {
		t.Errorf("PostRemaining before end = %d", got)
	}

	ev.Start(start)
	end := start.Add(time.Hour)
	ev.Stop(end)

	if got := ev.PostRemaining(end.Add(10 * time.Minute)); got != 20*60_000 {
		t.Errorf("PostRemaining = %d, want %d", got, 20*60_000)
	}
	if got := ev.PostRemaining(end.Add(time.Hour)); got != 0 {
		t.Errorf("PostRemaining after window = %d", got)
	}
}

func TestHistoryAndTotal(t *testing.T) {
	ev := runningEvent(3)
	ev.Start(time.Now())

	if err := ev.MarkSold("100.50"); err != nil {
		t.Fatal(err)
	}
	ev.RevealNext()
	ev.RevealNext()
	if err := ev.MarkSold("200"); err != nil {
		t.Fatal(err)
	}

	history := ev.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if got := ev.Total(); got != 300.50 {
		t.Errorf("Total = %v, want 300.50", got)
	}
}
