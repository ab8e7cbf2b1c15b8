package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// TargetUpcoming is the rateable target for the upcoming-auctions block.
// Item targets are formed with ItemTarget.
const TargetUpcoming = "upcoming"

// ItemTarget builds the rating target key for a catalog item.
func ItemTarget(id string) string {
	return "item:" + id
}

// ParseTarget validates a type/id pair from the wire and returns the target
// key. Type must be exactly "upcoming" or "item".
func ParseTarget(typ, id string) (string, error) {
	switch typ {
	case "upcoming":
		return TargetUpcoming, nil
	case "item":
		if id == "" {
			return "", ErrInvalidTarget
		}
		return ItemTarget(id), nil
	default:
		return "", ErrInvalidTarget
	}
}

// RatingAggregate is the vote count and running score for one target.
// Average is derived, never stored.
type RatingAggregate struct {
	Target     string  `json:"target"`
	TotalVotes int64   `json:"totalVotes"`
	TotalScore int64   `json:"totalScore"`
	Average    float64 `json:"average"`
}

// Finalize recomputes the derived average, rounded to two decimals.
func (a *RatingAggregate) Finalize() {
	if a.TotalVotes <= 0 {
		a.Average = 0
		return
	}
	avg := float64(a.TotalScore) / float64(a.TotalVotes)
	a.Average = math.Round(avg*100) / 100
}

// Vote is a single accepted vote. ID is the idempotency key: applying the
// same vote twice must increment the aggregate once.
type Vote struct {
	ID       string    `json:"id"`
	Target   string    `json:"target"`
	VoterKey string    `json:"voterKey"`
	Score    int       `json:"score"`
	CastAt   time.Time `json:"castAt"`
}

// NewVote validates the score and builds a vote with a fresh idempotency key.
func NewVote(target, voterKey string, score int, now time.Time) (Vote, error) {
	if score < 1 || score > 5 {
		return Vote{}, ErrInvalidScore
	}
	return Vote{
		ID:       uuid.NewString(),
		Target:   target,
		VoterKey: voterKey,
		Score:    score,
		CastAt:   now,
	}, nil
}

// CooldownKey identifies the per-voter, per-target cooldown slot.
func (v Vote) CooldownKey() string {
	return fmt.Sprintf("%s|%s", v.Target, v.VoterKey)
}
