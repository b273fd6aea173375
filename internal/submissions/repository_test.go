package submissions

import (
	"context"
	"testing"
)

func TestInMemoryCreate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	req := &CreateSubmissionRequest{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Subject:        "general",
		Message:        "Hello, I have a question about your services.",
		PrivacyConsent: true,
		SourceIP:       "203.0.113.1",
	}

	sub, err := repo.Create(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sub.ID == "" {
		t.Error("expected submission ID to be set")
	}
	if sub.Status != StatusPrivate {
		t.Errorf("expected new submissions private, got %s", sub.Status)
	}
	if sub.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestInMemoryCreate_Invalid(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Create(context.Background(), &CreateSubmissionRequest{
		Email:   "jane@example.com",
		Message: "A message that is long enough.",
	})
	if err != ErrMissingName {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
}

func TestInMemoryCreate_NoDedup(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	req := &CreateSubmissionRequest{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "general",
		Message: "Identical content submitted twice.",
	}

	first, err := repo.Create(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := repo.Create(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("identical submissions must produce distinct records")
	}

	all, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(all))
	}
}

func TestInMemoryGetByID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &CreateSubmissionRequest{
		Name:    "Test User",
		Email:   "test@example.com",
		Subject: "careers",
		Message: "Do you have any open roles?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("expected ID %s, got %s", created.ID, found.ID)
	}
}

func TestInMemoryGetByID_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryList_FilterAndPaging(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	subjects := []string{"general", "careers", "general", "media"}
	for i, subj := range subjects {
		_, err := repo.Create(ctx, &CreateSubmissionRequest{
			Name:    "User",
			Email:   "user@example.com",
			Subject: subj,
			Message: "Message body with enough length.",
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	general, err := repo.List(ctx, ListFilter{Subject: "general"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(general) != 2 {
		t.Fatalf("expected 2 general submissions, got %d", len(general))
	}

	paged, err := repo.List(ctx, ListFilter{Limit: 2, Offset: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paged) != 1 {
		t.Fatalf("expected 1 submission on last page, got %d", len(paged))
	}
}

func TestInMemoryDelete(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, _ := repo.Create(ctx, &CreateSubmissionRequest{
		Name:    "Del Me",
		Email:   "del@example.com",
		Subject: "other",
		Message: "Please remove this record later.",
	})

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
