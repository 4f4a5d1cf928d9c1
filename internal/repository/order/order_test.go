package order

import (
	"context"
	"errors"
	"testing"

	"shekinah-backend/internal/domain"
)

func TestPostgres_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	// The short circuit fires before any query, so no pool is needed.
	repo := NewPostgres(nil, nil)

	if err := repo.UpdateStatus(ctx, "order-1", domain.StatusPaid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdateStatus: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}
