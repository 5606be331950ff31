package broadcast

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTransfer  Kind = "transfer"
	KindAssociate Kind = "associate"
	KindCreate    Kind = "create"
	KindBalance   Kind = "balance"
)

// Kinds lists every event kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindTransfer, KindAssociate, KindCreate, KindBalance}
}

// ParseKind accepts a kind name in any case.
func ParseKind(raw string) (Kind, bool) {
	candidate := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range Kinds() {
		if kind == candidate {
			return kind, true
		}
	}
	return "", false
}

// Event is one per-item batch result as seen by subscribers. Sequence is
// 1-based within the batch.
type Event struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batchId"`
	Kind      Kind      `json:"kind"`
	Topic     string    `json:"topic"`
	Sequence  int       `json:"sequence"`
	Total     int       `json:"total"`
	Network   string    `json:"network"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps a fresh event ID and timestamp.
func NewEvent(batchID string, kind Kind, topic string, sequence int, total int, network string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		BatchID:   batchID,
		Kind:      kind,
		Topic:     topic,
		Sequence:  sequence,
		Total:     total,
		Network:   network,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TopicName joins a dotted prefix and an event kind, e.g. hedera.batch.transfer.
func TopicName(prefix string, kind Kind) string {
	trimmed := strings.Trim(strings.TrimSpace(prefix), ".")
	if trimmed == "" {
		return string(kind)
	}
	return trimmed + "." + string(kind)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// IsContextError reports whether err is a context cancellation or deadline.
// Publishers return those unwrapped.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
