// Package notify delivers alert texts to subscribers. Delivery is
// best-effort: a failed send is reported, never retried here.
package notify

import (
	"context"
	"errors"
)

// ErrDeliveryFailed indicates one recipient was unreachable. Fan-out to the
// remaining recipients continues.
var ErrDeliveryFailed = errors.New("delivery failed")

// Notifier sends a text message to one subscriber.
type Notifier interface {
	Send(ctx context.Context, subscriberID string, text string) error
}
