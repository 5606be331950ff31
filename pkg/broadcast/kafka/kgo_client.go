package kafka

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/twmb/franz-go/pkg/kgo"
)

type Config struct {
	Brokers    []string
	ClientID   string
	TLS        *tls.Config
	Acks       kgo.Acks
	Idempotent bool
}

type kgoWriter struct{ cl *kgo.Client }

func (w kgoWriter) Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if len(headers) > 0 {
		record.Headers = make([]kgo.RecordHeader, 0, len(headers))
		for headerKey, headerValue := range headers {
			record.Headers = append(record.Headers, kgo.RecordHeader{Key: headerKey, Value: []byte(headerValue)})
		}
	}
	return w.cl.ProduceSync(ctx, record).FirstErr()
}

// NewWithKgo builds a franz-go backed Publisher. The cleanup closes the client.
func NewWithKgo(cfg Config, codec broadcast.Codec) (*Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("%w: kafka brokers required", broadcast.ErrNotConfigured)
	}

	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Brokers...)}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(cfg.TLS))
	}
	if cfg.Idempotent {
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	} else {
		opts = append(opts, kgo.DisableIdempotentWrite())
		if cfg.Acks != (kgo.Acks{}) {
			opts = append(opts, kgo.RequiredAcks(cfg.Acks))
		}
	}

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka client init: %w", broadcast.ErrPublishFailed, err)
	}
	return New(kgoWriter{cl: cl}, codec), cl.Close, nil
}
