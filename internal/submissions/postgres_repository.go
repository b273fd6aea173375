package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the slice of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores submissions in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("submissions: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO submissions (id, name, email, phone, company, subject, message,
		    privacy_consent, newsletter_consent, page_id, user_agent, referrer, source_ip, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.Phone,
		req.Company,
		req.Subject,
		req.Message,
		req.PrivacyConsent,
		req.NewsletterConsent,
		req.PageID,
		req.UserAgent,
		req.Referrer,
		req.SourceIP,
		string(StatusPrivate),
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("submissions: insert failed: %w", err)
	}

	return &Submission{
		ID:                id.String(),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Company:           req.Company,
		Subject:           req.Subject,
		Message:           req.Message,
		PrivacyConsent:    req.PrivacyConsent,
		NewsletterConsent: req.NewsletterConsent,
		PageID:            req.PageID,
		UserAgent:         req.UserAgent,
		Referrer:          req.Referrer,
		SourceIP:          req.SourceIP,
		Status:            StatusPrivate,
		CreatedAt:         createdAt,
	}, nil
}

// GetByID fetches a single submission.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Submission, error) {
	query := `
		SELECT id, name, email, phone, company, subject, message,
		       privacy_consent, newsletter_consent, page_id, user_agent, referrer, source_ip,
		       status, created_at
		FROM submissions
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("submissions: select failed: %w", err)
	}
	return sub, nil
}

// List returns submissions newest first, honoring the filter.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Submission, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := `
		SELECT id, name, email, phone, company, subject, message,
		       privacy_consent, newsletter_consent, page_id, user_agent, referrer, source_ip,
		       status, created_at
		FROM submissions
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR subject = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, string(filter.Status), filter.Subject, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("submissions: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("submissions: scan failed: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Delete removes a submission by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("submissions: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubmission(row pgx.Row) (*Submission, error) {
	var sub Submission
	if err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Email,
		&sub.Phone,
		&sub.Company,
		&sub.Subject,
		&sub.Message,
		&sub.PrivacyConsent,
		&sub.NewsletterConsent,
		&sub.PageID,
		&sub.UserAgent,
		&sub.Referrer,
		&sub.SourceIP,
		&sub.Status,
		&sub.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}
