package watch

import "context"

// Subscription is a live change feed for one collection channel. C receives a
// signal whenever the collection may have changed; bursts are coalesced, so a
// signal means "reload", not "one change". Cancel tears the feed down and
// eventually closes C.
type Subscription struct {
	C      <-chan struct{}
	cancel context.CancelFunc
}

// NewSubscription pairs a signal channel with its teardown func.
func NewSubscription(c <-chan struct{}, cancel context.CancelFunc) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Cancel stops the subscription.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Watcher hands out subscriptions to named change channels.
type Watcher interface {
	Watch(ctx context.Context, channel string) (*Subscription, error)
}
