// Package nats publishes batch events to NATS subjects named after the event
// topic.
package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
)

// Client is the slice of a NATS connection the publisher needs.
type Client interface {
	Publish(subject string, data []byte, headers map[string]string) error
}

type Publisher struct {
	Client Client
	Codec  broadcast.Codec
}

var _ broadcast.Publisher = (*Publisher)(nil)

func New(client Client, codec broadcast.Codec) *Publisher {
	return &Publisher{Client: client, Codec: codec}
}

func (p *Publisher) Publish(ctx context.Context, event broadcast.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Client == nil {
		return fmt.Errorf("nats publish: %w", broadcast.ErrNotConfigured)
	}

	message, err := p.Codec.Encode(event)
	if err != nil {
		return fmt.Errorf("nats publish serialize: %w", err)
	}

	if err := p.Client.Publish(event.Topic, message.Body, message.Headers); err != nil {
		if broadcast.IsContextError(err) {
			return err
		}
		return fmt.Errorf("nats publish to %q: %w", event.Topic, errors.Join(broadcast.ErrPublishFailed, err))
	}
	return nil
}
