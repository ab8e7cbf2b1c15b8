package domain

import (
	"testing"
	"time"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		typ, id string
		want    string
		wantErr bool
	}{
		{"upcoming", "", "upcoming", false},
		{"upcoming", "ignored", "upcoming", false},
		{"item", "lot-7", "item:lot-7", false},
		{"item", "", "", true},
		{"", "", "", true},
		{"auction", "x", "", true},
		{"Upcoming", "", "", true},
	}
	for _, tc := range tests {
		got, err := ParseTarget(tc.typ, tc.id)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTarget(%q, %q): expected error", tc.typ, tc.id)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseTarget(%q, %q) = %q, %v, want %q", tc.typ, tc.id, got, err, tc.want)
		}
	}
}

func TestFinalizeAverage(t *testing.T) {
	tests := []struct {
		votes, score int64
		want         float64
	}{
		{0, 0, 0},
		{1, 5, 5},
		{3, 10, 3.33},
		{3, 11, 3.67},
		{7, 23, 3.29},
	}
	for _, tc := range tests {
		agg := RatingAggregate{TotalVotes: tc.votes, TotalScore: tc.score}
		agg.Finalize()
		if agg.Average != tc.want {
			t.Errorf("Finalize(%d/%d) average = %v, want %v", tc.score, tc.votes, agg.Average, tc.want)
		}
	}
}

func TestNewVote(t *testing.T) {
	now := time.Now()

	for _, score := range []int{0, -1, 6, 100} {
		if _, err := NewVote("upcoming", "voter", score, now); err == nil {
			t.Errorf("score %d accepted", score)
		}
	}

	v1, err := NewVote("upcoming", "voter", 4, now)
	if err != nil {
		t.Fatal(err)
	}
	v2, _ := NewVote("upcoming", "voter", 4, now)
	if v1.ID == v2.ID {
		t.Error("votes share an idempotency key")
	}
	if v1.CooldownKey() != v2.CooldownKey() {
		t.Error("same voter and target produced different cooldown keys")
	}

	other, _ := NewVote(ItemTarget("lot-1"), "voter", 4, now)
	if other.CooldownKey() == v1.CooldownKey() {
		t.Error("different targets share a cooldown key")
	}
}
