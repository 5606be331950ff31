// Package kafka produces batch events to Kafka. Records are keyed by batch ID
// so one batch lands on one partition and keeps its order.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
)

// Writer is the minimal producer the publisher needs.
type Writer interface {
	Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

type Publisher struct {
	Writer Writer
	Codec  broadcast.Codec
}

var _ broadcast.Publisher = (*Publisher)(nil)

func New(writer Writer, codec broadcast.Codec) *Publisher {
	return &Publisher{Writer: writer, Codec: codec}
}

func (p *Publisher) Publish(ctx context.Context, event broadcast.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Writer == nil {
		return fmt.Errorf("kafka publish: %w", broadcast.ErrNotConfigured)
	}

	message, err := p.Codec.Encode(event)
	if err != nil {
		return fmt.Errorf("kafka publish serialize: %w", err)
	}

	if err := p.Writer.Write(ctx, event.Topic, []byte(event.BatchID), message.Body, message.Headers); err != nil {
		if broadcast.IsContextError(err) {
			return err
		}
		return fmt.Errorf("kafka publish to %q: %w", event.Topic, errors.Join(broadcast.ErrPublishFailed, err))
	}
	return nil
}
