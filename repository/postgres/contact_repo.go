package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auktia/backend/domain"
	"github.com/auktia/backend/repository"
)

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a Postgres-backed archive of contact
// submissions.
func NewContactRepository(pool *pgxpool.Pool) repository.ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, sub *repository.ContactSubmission) error {
	if sub == nil {
		return domain.ErrInvalidPayload
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO contact_submissions (id, name, email, message, lang)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		sub.ID,
		sub.Name,
		sub.Email,
		sub.Message,
		sub.Lang,
	).Scan(&sub.CreatedAt)
}

func (r *contactRepository) List(ctx context.Context, limit, offset int) ([]repository.ContactSubmission, error) {
	const query = `
	SELECT id, name, email, message, lang, created_at
	FROM contact_submissions
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []repository.ContactSubmission
	for rows.Next() {
		var sub repository.ContactSubmission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Message, &sub.Lang, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
