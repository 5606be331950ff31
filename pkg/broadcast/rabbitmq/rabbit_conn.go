package rabbitmq

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const exchangeKind = "topic"

type Config struct {
	URL         string
	Exchange    string
	ConnTimeout time.Duration
}

// reconnectingChannel keeps one AMQP channel open, redialling with jittered
// exponential backoff whenever the connection drops.
type reconnectingChannel struct {
	cfg    Config
	logger zerolog.Logger
	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed chan struct{}
	ready  chan struct{}
}

func newReconnectingChannel(cfg Config, logger zerolog.Logger) *reconnectingChannel {
	rc := &reconnectingChannel{
		cfg:    cfg,
		logger: logger,
		closed: make(chan struct{}),
		ready:  make(chan struct{}),
	}
	go rc.run()
	return rc
}

func (rc *reconnectingChannel) Publish(ctx context.Context, m PubMsg) error {
	rc.mu.RLock()
	ch := rc.ch
	ready := rc.ready
	rc.mu.RUnlock()

	if ch == nil {
		select {
		case <-ready:
		case <-rc.closed:
			return broadcast.ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
		rc.mu.RLock()
		ch = rc.ch
		rc.mu.RUnlock()
		if ch == nil {
			return fmt.Errorf("%w: rabbitmq not connected", broadcast.ErrPublishFailed)
		}
	}

	var headers amqp.Table
	if len(m.Headers) > 0 {
		headers = amqp.Table{}
		for key, value := range m.Headers {
			headers[key] = value
		}
	}

	return ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode:    amqp.Persistent,
			Headers:         headers,
			ContentType:     m.ContentType,
			ContentEncoding: m.Encoding,
			MessageId:       m.MessageID,
			Timestamp:       time.Now().UTC(),
			Body:            m.Body,
		},
	)
}

func (rc *reconnectingChannel) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(rc.cfg.URL, amqp.Config{
		Locale:     "en_US",
		Properties: amqp.Table{"product": "hedera-batch-go"},
		Dial:       amqp.DefaultDial(rc.cfg.ConnTimeout),
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if err := ch.ExchangeDeclare(rc.cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func (rc *reconnectingChannel) run() {
	backoff := time.Second
	const maxBackoff = 30 * time.Second
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // jitter only

	for {
		select {
		case <-rc.closed:
			return
		default:
		}

		conn, ch, err := rc.dial()
		if err != nil {
			jitter := time.Duration(rng.Int63n(int64(backoff / 2)))
			sleep := backoff + jitter/2
			if sleep > maxBackoff {
				sleep = maxBackoff
			}
			rc.logger.Warn().Err(err).Dur("retry_in", sleep).Msg("rabbitmq dial failed")

			timer := time.NewTimer(sleep)
			select {
			case <-rc.closed:
				timer.Stop()
				return
			case <-timer.C:
			}
			if backoff < maxBackoff {
				backoff = min(backoff*2, maxBackoff)
			}
			continue
		}

		backoff = time.Second
		rc.logger.Info().Str("exchange", rc.cfg.Exchange).Msg("rabbitmq channel ready")

		rc.mu.Lock()
		rc.conn = conn
		rc.ch = ch
		close(rc.ready)
		rc.mu.Unlock()

		notify := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-rc.closed:
			_ = ch.Close()
			_ = conn.Close()
			return
		case amqpErr := <-notify:
			rc.logger.Warn().Interface("reason", amqpErr).Msg("rabbitmq connection closed; reconnecting")
			rc.mu.Lock()
			rc.ch = nil
			rc.conn = nil
			rc.ready = make(chan struct{})
			rc.mu.Unlock()
			_ = ch.Close()
			_ = conn.Close()
		}
	}
}

func (rc *reconnectingChannel) close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	select {
	case <-rc.closed:
		return
	default:
		close(rc.closed)
	}
	if rc.ch != nil {
		_ = rc.ch.Close()
		rc.ch = nil
	}
	if rc.conn != nil {
		_ = rc.conn.Close()
		rc.conn = nil
	}
}

// NewWithAMQP starts a reconnecting channel that declares cfg.Exchange as a
// durable topic exchange. Publishing blocks until the first connection is up
// or the caller's context ends.
func NewWithAMQP(cfg Config, codec broadcast.Codec, logger zerolog.Logger) (*Publisher, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: rabbitmq url required", broadcast.ErrNotConfigured)
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	channel := newReconnectingChannel(cfg, logger.With().Str("publisher", "rabbitmq").Logger())
	return New(channel, cfg.Exchange, codec), channel.close, nil
}
