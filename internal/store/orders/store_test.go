package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shekinah-backend/internal/domain"
	"shekinah-backend/internal/watch"
)

type stubRepo struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (r *stubRepo) List(context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *stubRepo) Insert(_ context.Context, o domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = "order-new"
	r.orders = append(r.orders, o)
	return o.ID, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type stubWatcher struct {
	mu  sync.Mutex
	chs []chan struct{}
}

func (w *stubWatcher) Watch(ctx context.Context, _ string) (*watch.Subscription, error) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	w.mu.Lock()
	w.chs = append(w.chs, ch)
	w.mu.Unlock()
	_, cancel := context.WithCancel(ctx)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return watch.NewSubscription(ch, cancel), nil
}

func testOrder(id string, date time.Time) domain.Order {
	return domain.Order{
		ID:            id,
		CustomerName:  "Ana Quispe",
		PaymentMethod: "Yape",
		Total:         decimal.RequireFromString("200.00"),
		Status:        domain.StatusPending,
		Date:          date,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition never reached")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSnapshotEmptyWithoutPrivilege(t *testing.T) {
	repo := &stubRepo{orders: []domain.Order{testOrder("order-1", time.Now())}}
	s := New(repo, &stubWatcher{}, nil)

	assert.Empty(t, s.Snapshot())
}

func TestSetPrivilegedLoadsMirror(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{orders: []domain.Order{
		testOrder("order-old", now.Add(-time.Hour)),
		testOrder("order-new", now),
	}}
	s := New(repo, &stubWatcher{}, nil)

	s.SetPrivileged(context.Background(), true)
	waitFor(t, func() bool { return len(s.Snapshot()) == 2 })

	got := s.Snapshot()
	assert.Equal(t, "order-new", got[0].ID)
	assert.Equal(t, "order-old", got[1].ID)
}

func TestTeardownClearsMirror(t *testing.T) {
	repo := &stubRepo{orders: []domain.Order{testOrder("order-1", time.Now())}}
	s := New(repo, &stubWatcher{}, nil)

	ctx := context.Background()
	s.SetPrivileged(ctx, true)
	waitFor(t, func() bool { return len(s.Snapshot()) == 1 })

	s.SetPrivileged(ctx, false)
	assert.Empty(t, s.Snapshot())
}

func TestSetPrivilegedIsIdempotent(t *testing.T) {
	repo := &stubRepo{orders: []domain.Order{testOrder("order-1", time.Now())}}
	w := &stubWatcher{}
	s := New(repo, w, nil)

	ctx := context.Background()
	s.SetPrivileged(ctx, true)
	s.SetPrivileged(ctx, true)

	w.mu.Lock()
	subs := len(w.chs)
	w.mu.Unlock()
	assert.Equal(t, 1, subs)
}

func TestWritesWorkWithoutPrivilege(t *testing.T) {
	repo := &stubRepo{}
	s := New(repo, &stubWatcher{}, nil)

	id, err := s.AddOrder(context.Background(), testOrder("", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "order-new", id)

	require.NoError(t, s.UpdateStatus(context.Background(), "order-new", domain.StatusPaid))
	require.NoError(t, s.Delete(context.Background(), "order-new"))

	err = s.Delete(context.Background(), "order-new")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
