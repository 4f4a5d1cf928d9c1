package order

import (
	"context"

	"github.com/google/uuid"
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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT id::text, customer_name, customer_address, payment_method, items, total, status, created_at
FROM orders
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("order repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerAddress, &o.PaymentMethod, &o.Items, &o.Total, &o.Status, &o.Date); err != nil {
			return nil, err
		}
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("order repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("order repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Insert(ctx context.Context, o domain.Order) (string, error) {
	const q = `
INSERT INTO orders (customer_name, customer_address, payment_method, items, total, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q,
		o.CustomerName,
		o.CustomerAddress,
		o.PaymentMethod,
		o.Items,
		o.Total,
		string(o.Status),
	).Scan(&id)
	if err != nil {
		r.logger.Error("order repo: insert", zap.Error(err))
		return "", err
	}
	r.logger.Info("order repo: inserted", zap.String("id", id))
	return id, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	// Ids are uuids; anything else cannot exist.
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	const q = `UPDATE orders SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, string(status))
	if err != nil {
		r.logger.Error("order repo: update status", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("order repo: status updated", zap.String("id", id), zap.String("status", string(status)))
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	const q = `DELETE FROM orders WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		r.logger.Error("order repo: delete", zap.String("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("order repo: deleted", zap.String("id", id))
	return nil
}
