package order

import (
	"context"

	"shekinah-backend/internal/domain"
)

// Repository is the write-through contract for the orders collection. The
// creation timestamp is assigned by the store; the status comes from the caller.
type Repository interface {
	List(ctx context.Context) ([]domain.Order, error)
	Insert(ctx context.Context, o domain.Order) (string, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
}
