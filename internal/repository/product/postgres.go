package product

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shekinah-backend/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT doc_id::text, id, category, name, price, stock, description, COALESCE(image, ''), COALESCE(badge, ''), created_at
FROM products
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("product repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Insert(ctx context.Context, p domain.Product) (string, error) {
	const q = `
INSERT INTO products (id, category, name, price, stock, description, image, badge)
VALUES (to_jsonb($1::text), $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
RETURNING doc_id::text
`
	var docID string
	err := r.pool.QueryRow(ctx, q,
		p.ID,
		string(p.Category),
		p.Name,
		p.Price,
		p.Stock,
		p.Description,
		p.Image,
		p.Badge,
	).Scan(&docID)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrAlreadyExists
		}
		r.logger.Error("product repo: insert", zap.String("id", p.ID), zap.Error(err))
		return "", err
	}
	r.logger.Info("product repo: inserted", zap.String("id", p.ID), zap.String("doc_id", docID))
	return docID, nil
}

func (r *postgresRepo) Update(ctx context.Context, docID string, p domain.Product) error {
	const q = `
UPDATE products
SET category = $2, name = $3, price = $4, stock = $5, description = $6, image = NULLIF($7, ''), badge = NULLIF($8, '')
WHERE doc_id = $1
`
	tag, err := r.pool.Exec(ctx, q,
		docID,
		string(p.Category),
		p.Name,
		p.Price,
		p.Stock,
		p.Description,
		p.Image,
		p.Badge,
	)
	if err != nil {
		r.logger.Error("product repo: update", zap.String("doc_id", docID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("product repo: updated", zap.String("doc_id", docID))
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, docID string) error {
	const q = `DELETE FROM products WHERE doc_id = $1`
	tag, err := r.pool.Exec(ctx, q, docID)
	if err != nil {
		r.logger.Error("product repo: delete", zap.String("doc_id", docID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("product repo: deleted", zap.String("doc_id", docID))
	return nil
}

func (r *postgresRepo) FindDocID(ctx context.Context, id string) (string, error) {
	const byString = `SELECT doc_id::text FROM products WHERE id = to_jsonb($1::text)`
	var docID string
	err := r.pool.QueryRow(ctx, byString, id).Scan(&docID)
	if err == nil {
		return docID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	// Legacy seed rows store the id as a JSON number.
	n, convErr := strconv.ParseInt(id, 10, 64)
	if convErr != nil {
		return "", domain.ErrNotFound
	}
	const byNumber = `SELECT doc_id::text FROM products WHERE id = to_jsonb($1::bigint)`
	err = r.pool.QueryRow(ctx, byNumber, n).Scan(&docID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return docID, nil
}

func (r *postgresRepo) DecrementStock(ctx context.Context, docID string, qty int) error {
	const q = `UPDATE products SET stock = GREATEST(stock - $2, 0) WHERE doc_id = $1`
	tag, err := r.pool.Exec(ctx, q, docID, qty)
	if err != nil {
		r.logger.Error("product repo: decrement stock", zap.String("doc_id", docID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(rows pgx.Rows) (domain.Product, error) {
	var (
		p     domain.Product
		idRaw []byte
		image string
		badge string
	)
	if err := rows.Scan(&p.DocID, &idRaw, &p.Category, &p.Name, &p.Price, &p.Stock, &p.Description, &image, &badge, &p.CreatedAt); err != nil {
		return domain.Product{}, err
	}
	p.ID = normalizeID(idRaw)
	p.Image = image
	p.Badge = badge
	if p.Description == nil {
		p.Description = []string{}
	}
	return p, nil
}

// normalizeID flattens the jsonb business id (string or number) to a string.
func normalizeID(raw []byte) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	default:
		return string(raw)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
