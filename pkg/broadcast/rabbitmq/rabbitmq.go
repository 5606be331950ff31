package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
)

const DefaultExchange = "hedera.batch"

// PubMsg is one AMQP publishing. RoutingKey is the event topic.
type PubMsg struct {
	Exchange    string
	RoutingKey  string
	Body        []byte
	Headers     map[string]string
	ContentType string
	Encoding    string
	MessageID   string
}

type Channel interface {
	Publish(ctx context.Context, m PubMsg) error
}

type Publisher struct {
	Channel  Channel
	Exchange string
	Codec    broadcast.Codec
}

var _ broadcast.Publisher = (*Publisher)(nil)

func New(channel Channel, exchange string, codec broadcast.Codec) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{Channel: channel, Exchange: exchange, Codec: codec}
}

func (p *Publisher) Publish(ctx context.Context, event broadcast.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Channel == nil {
		return fmt.Errorf("rabbitmq publish: %w", broadcast.ErrNotConfigured)
	}

	message, err := p.Codec.Encode(event)
	if err != nil {
		return fmt.Errorf("rabbitmq publish serialize: %w", err)
	}

	headers := make(map[string]string, len(message.Headers))
	for key, value := range message.Headers {
		if key == broadcast.HeaderContentType || key == broadcast.HeaderContentEncoding {
			continue
		}
		headers[key] = value
	}

	msg := PubMsg{
		Exchange:    p.Exchange,
		RoutingKey:  event.Topic,
		Body:        message.Body,
		Headers:     headers,
		ContentType: message.Headers[broadcast.HeaderContentType],
		Encoding:    message.Headers[broadcast.HeaderContentEncoding],
		MessageID:   event.ID,
	}
	if err := p.Channel.Publish(ctx, msg); err != nil {
		if broadcast.IsContextError(err) {
			return err
		}
		return fmt.Errorf("rabbitmq publish to %q: %w", event.Topic, errors.Join(broadcast.ErrPublishFailed, err))
	}
	return nil
}
