package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"shekinah-backend/internal/domain"
	"shekinah-backend/internal/imaging"
	"shekinah-backend/internal/watch"
)

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (string, error)
	Update(ctx context.Context, docID string, p domain.Product) error
	Delete(ctx context.Context, docID string) error
	FindDocID(ctx context.Context, id string) (string, error)
	DecrementStock(ctx context.Context, docID string, qty int) error
}

// Store mirrors the products collection into memory and writes through to it.
// The mirror is replaced wholesale on every change signal; writers never wait
// for the echo of their own write.
type Store struct {
	repo    productRepo
	watcher watch.Watcher
	logger  *zap.Logger

	mu       sync.RWMutex
	products []domain.Product
	loading  bool
}

func New(repo productRepo, watcher watch.Watcher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:    repo,
		watcher: watcher,
		logger:  logger,
		loading: true,
	}
}

// Run subscribes to the products change feed for the lifetime of ctx. It
// returns when the subscription channel closes. Subscription errors are logged
// and degrade to "no data"; they are never surfaced to shoppers.
func (s *Store) Run(ctx context.Context) {
	sub, err := s.watcher.Watch(ctx, "products_changed")
	if err != nil {
		s.logger.Error("catalog: subscribe failed", zap.Error(err))
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return
	}
	for range sub.C {
		s.reload(ctx)
	}
}

func (s *Store) reload(ctx context.Context) {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("catalog: reload failed", zap.Error(err))
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return
	}
	// Descending string comparison keeps generated ids (newest first) ahead of
	// the small legacy ids, matching the storefront display order.
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID > list[j].ID
	})

	s.mu.Lock()
	s.products = list
	s.loading = false
	s.mu.Unlock()
	s.logger.Debug("catalog: mirror replaced", zap.Int("count", len(list)))
}

// Snapshot returns a copy of the current product list.
func (s *Store) Snapshot() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Loading reports whether the first snapshot has not arrived yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Get looks a product up in the local mirror by business id.
func (s *Store) Get(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// AddProduct persists a new product. A supplied image file runs through the
// downscale pipeline first; the id is generated from the current time plus a
// random suffix. The local mirror updates when the subscription delivers the
// change, not here.
func (s *Store) AddProduct(ctx context.Context, p domain.Product, imageData []byte) error {
	if imageData != nil {
		img, err := imaging.Process(imageData)
		if err != nil {
			return fmt.Errorf("process image: %w", err)
		}
		p.Image = img
	}
	p.ID = newProductID()
	if _, err := s.repo.Insert(ctx, p); err != nil {
		return fmt.Errorf("add product: %w", err)
	}
	return nil
}

// UpdateProduct writes an in-place update. The product must resolve to a known
// document reference through the local mirror; otherwise the update fails with
// a data-integrity error.
func (s *Store) UpdateProduct(ctx context.Context, p domain.Product, imageData []byte) error {
	local, ok := s.Get(p.ID)
	if !ok || local.DocID == "" {
		return fmt.Errorf("update product %s: %w", p.ID, domain.ErrNoDocumentRef)
	}
	if imageData != nil {
		img, err := imaging.Process(imageData)
		if err != nil {
			return fmt.Errorf("process image: %w", err)
		}
		p.Image = img
	}
	if err := s.repo.Update(ctx, local.DocID, p); err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes a product permanently. The document reference is
// resolved from the local mirror first, then through the repository's
// string-then-numeric fallback lookup for legacy rows.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	docID := ""
	if local, ok := s.Get(id); ok {
		docID = local.DocID
	}
	if docID == "" {
		found, err := s.repo.FindDocID(ctx, id)
		if err != nil {
			return fmt.Errorf("delete product %s: %w", id, err)
		}
		docID = found
	}
	if err := s.repo.Delete(ctx, docID); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

// PurchaseItems decrements stock for each cart item as independent writes.
// Each decrement is a single conditional update clamped at zero, but the loop
// is not transactional: a failure leaves earlier items decremented.
func (s *Store) PurchaseItems(ctx context.Context, items []domain.CartItem) error {
	for _, item := range items {
		local, ok := s.Get(item.ID)
		if !ok || local.DocID == "" {
			continue
		}
		if err := s.repo.DecrementStock(ctx, local.DocID, item.Quantity); err != nil {
			return fmt.Errorf("decrement stock for %s: %w", item.ID, err)
		}
	}
	return nil
}

func newProductID() string {
	return fmt.Sprintf("prod-%d-%d", time.Now().UnixMilli(), rand.IntN(1000))
}
