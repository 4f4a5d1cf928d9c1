package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"shekinah-backend/internal/domain"
	"shekinah-backend/internal/watch"
)

type orderRepo interface {
	List(ctx context.Context) ([]domain.Order, error)
	Insert(ctx context.Context, o domain.Order) (string, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
}

// Store mirrors the orders collection, but only while a privileged session
// exists. When privilege is dropped the subscription is torn down and the
// local mirror cleared, so order data never lingers in a non-privileged
// process state. Writes go through regardless of the mirror: checkout records
// orders from unprivileged sessions.
type Store struct {
	repo    orderRepo
	watcher watch.Watcher
	logger  *zap.Logger

	mu     sync.RWMutex
	orders []domain.Order
	active bool
	gen    int
	cancel context.CancelFunc
}

func New(repo orderRepo, watcher watch.Watcher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, watcher: watcher, logger: logger}
}

// SetPrivileged starts or stops the live mirror. Transitions are idempotent.
func (s *Store) SetPrivileged(ctx context.Context, privileged bool) {
	s.mu.Lock()
	if privileged == s.active {
		s.mu.Unlock()
		return
	}
	s.active = privileged
	s.gen++
	gen := s.gen

	if !privileged {
		cancel := s.cancel
		s.cancel = nil
		s.orders = nil
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		s.logger.Info("orders: mirror torn down")
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	sub, err := s.watcher.Watch(subCtx, "orders_changed")
	if err != nil {
		s.logger.Error("orders: subscribe failed", zap.Error(err))
		return
	}
	s.logger.Info("orders: mirror started")
	go s.consume(subCtx, sub, gen)
}

func (s *Store) consume(ctx context.Context, sub *watch.Subscription, gen int) {
	for range sub.C {
		s.reload(ctx, gen)
	}
}

func (s *Store) reload(ctx context.Context, gen int) {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("orders: reload failed", zap.Error(err))
		return
	}
	// Most recent first.
	sort.Slice(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	// A reload racing a teardown must not resurrect cleared data.
	if !s.active || gen != s.gen {
		return
	}
	s.orders = list
}

// Snapshot returns a copy of the mirrored orders, newest first. It is empty
// whenever the session role is not privileged.
func (s *Store) Snapshot() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// AddOrder persists a new order. The status must be supplied by the caller;
// the creation timestamp is assigned by the store backend.
func (s *Store) AddOrder(ctx context.Context, o domain.Order) (string, error) {
	id, err := s.repo.Insert(ctx, o)
	if err != nil {
		return "", fmt.Errorf("add order: %w", err)
	}
	return id, nil
}

// UpdateStatus overwrites an order's status. No transition rules apply.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update order %s: %w", id, err)
	}
	return nil
}

// Delete removes an order permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}
