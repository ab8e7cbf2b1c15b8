package repository

import (
	"context"
	"time"
)

// ContactSubmission is one stored contact-form record.
type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactRepository archives contact submissions. Writes are best-effort
// from the caller's perspective; a failure never fails the request.
type ContactRepository interface {
	Create(ctx context.Context, sub *ContactSubmission) error
	List(ctx context.Context, limit, offset int) ([]ContactSubmission, error)
}

// Subscriber is one newsletter signup.
type Subscriber struct {
	Email    string    `json:"email"`
	Lang     string    `json:"lang,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// SubscriberRepository stores newsletter subscribers, deduplicated by
// normalized email.
type SubscriberRepository interface {
	// Add stores the subscriber. It returns false when the email was already
	// subscribed.
	Add(ctx context.Context, sub Subscriber) (bool, error)
	List(ctx context.Context) ([]Subscriber, error)
}
