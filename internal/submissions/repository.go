package submissions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for submission storage
type Repository interface {
	Create(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error)
	GetByID(ctx context.Context, id string) (*Submission, error)
	List(ctx context.Context, filter ListFilter) ([]*Submission, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is a Repository for tests and local development.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*Submission
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*Submission)}
}

// Create stores a new submission. Identical payloads are intentionally
// stored as distinct records; the intake pipeline never deduplicates.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := &Submission{
		ID:                uuid.New().String(),
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
		CreatedAt:         time.Now().UTC(),
	}

	r.mu.Lock()
	r.rows[sub.ID] = sub
	r.mu.Unlock()

	return sub, nil
}

// GetByID retrieves a submission by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sub, nil
}

// List returns submissions newest first, honoring the filter.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Submission, error) {
	r.mu.RLock()
	all := make([]*Submission, 0, len(r.rows))
	for _, s := range r.rows {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Subject != "" && s.Subject != filter.Subject {
			continue
		}
		all = append(all, s)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if filter.Offset >= len(all) {
		return []*Submission{}, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}

// Delete removes a submission by ID
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
