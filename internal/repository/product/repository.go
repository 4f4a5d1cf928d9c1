package product

import (
	"context"

	"shekinah-backend/internal/domain"
)

// Repository is the write-through contract for the products collection.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (string, error)
	Update(ctx context.Context, docID string, p domain.Product) error
	Delete(ctx context.Context, docID string) error
	// FindDocID resolves the backing document reference for a business id,
	// trying the string typing first and falling back to the numeric typing
	// used by legacy seed rows.
	FindDocID(ctx context.Context, id string) (string, error)
	// DecrementStock applies stock = max(stock - qty, 0) as a single
	// conditional update.
	DecrementStock(ctx context.Context, docID string, qty int) error
}
