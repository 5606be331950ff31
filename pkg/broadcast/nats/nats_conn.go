package nats

import (
	"fmt"
	"time"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/nats-io/nats.go"
)

type Config struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	MaxReconnects int
}

type natsClient struct{ nc *nats.Conn }

func (c natsClient) Publish(subject string, data []byte, headers map[string]string) error {
	msg := &nats.Msg{Subject: subject, Data: data}
	if len(headers) > 0 {
		msg.Header = nats.Header{}
		for key, value := range headers {
			msg.Header.Add(key, value)
		}
	}

	if err := c.nc.PublishMsg(msg); err != nil {
		return err
	}
	return c.nc.Flush()
}

// NewWithNATS connects to cfg.URL and returns a Publisher plus a cleanup that
// drains the connection.
func NewWithNATS(cfg Config, codec broadcast.Codec) (*Publisher, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: nats url required", broadcast.ErrNotConfigured)
	}

	opts := []nats.Option{}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}
	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: nats connect: %w", broadcast.ErrPublishFailed, err)
	}

	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain()
			nc.Close()
		}
	}
	return New(natsClient{nc: nc}, codec), cleanup, nil
}
