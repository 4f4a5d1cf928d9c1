package watch

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const reconnectDelay = 2 * time.Second

// PostgresWatcher implements Watcher over LISTEN/NOTIFY. Each subscription
// holds a dedicated pooled connection while listening; errors are logged and
// the listener reconnects, so consumers degrade to a stale mirror instead of
// failing.
type PostgresWatcher struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *PostgresWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresWatcher{pool: pool, logger: logger}
}

func (w *PostgresWatcher) Watch(ctx context.Context, channel string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan struct{}, 1)

	// Initial signal so consumers load their first snapshot without waiting
	// for a change.
	ch <- struct{}{}

	go w.listen(ctx, channel, ch)

	return NewSubscription(ch, cancel), nil
}

func (w *PostgresWatcher) listen(ctx context.Context, channel string, ch chan<- struct{}) {
	defer close(ch)

	for {
		if ctx.Err() != nil {
			return
		}
		if err := w.listenOnce(ctx, channel, ch); err != nil && ctx.Err() == nil {
			w.logger.Warn("watch: listener lost, reconnecting",
				zap.String("channel", channel), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}
}

func (w *PostgresWatcher) listenOnce(ctx context.Context, channel string, ch chan<- struct{}) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return err
	}

	// A change may have landed between the last snapshot and LISTEN taking
	// effect; force a reload.
	signal(ch)

	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		signal(ch)
	}
}

func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
