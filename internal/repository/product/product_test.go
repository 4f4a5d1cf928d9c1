package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shekinah-backend/internal/db"
	"shekinah-backend/internal/domain"
	"shekinah-backend/internal/migrate"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE products, orders, admin_users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func TestPostgres_InsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	docID, err := repo.Insert(ctx, domain.Product{
		ID:          "prod-1700000000000-1",
		Category:    domain.CategoryCascosFundas,
		Name:        "Casco Integral",
		Price:       decimal.RequireFromString("259.90"),
		Stock:       4,
		Description: []string{"Certificado DOT"},
		Badge:       "Nuevo",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if docID == "" {
		t.Fatal("expected a doc id")
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}
	got := list[0]
	if got.ID != "prod-1700000000000-1" || got.DocID != docID {
		t.Fatalf("unexpected product %+v", got)
	}
	if !got.Price.Equal(decimal.RequireFromString("259.90")) {
		t.Fatalf("unexpected price %s", got.Price)
	}
}

func TestPostgres_InsertDuplicateID(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	p := domain.Product{ID: "prod-dup", Category: domain.CategoryCascosFundas, Name: "Casco", Price: decimal.New(100, 0)}

	if _, err := repo.Insert(ctx, p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := repo.Insert(ctx, p); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgres_FindDocIDNumericFallback(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	// legacy rows store the business id as a JSON number
	var docID string
	err := pool.QueryRow(ctx, `
		INSERT INTO products (id, category, name, price, stock, description)
		VALUES (to_jsonb(6::bigint), 'Stickers resinados', 'Sticker', 15.00, 0, '[]'::jsonb)
		RETURNING doc_id::text
	`).Scan(&docID)
	if err != nil {
		t.Fatalf("insert legacy product: %v", err)
	}

	repo := NewPostgres(pool, nil)

	found, err := repo.FindDocID(ctx, "6")
	if err != nil {
		t.Fatalf("FindDocID: %v", err)
	}
	if found != docID {
		t.Fatalf("expected %s, got %s", docID, found)
	}

	if _, err := repo.FindDocID(ctx, "999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_DecrementStockClampsAtZero(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	docID, err := repo.Insert(ctx, domain.Product{
		ID:       "prod-stock",
		Category: domain.CategoryCascosFundas,
		Name:     "Casco",
		Price:    decimal.New(100, 0),
		Stock:    3,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.DecrementStock(ctx, docID, 5); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list[0].Stock != 0 {
		t.Fatalf("expected stock 0, got %d", list[0].Stock)
	}
}
