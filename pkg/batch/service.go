package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
)

const (
	DefaultMaxBatchSize       = 100
	DefaultBalanceConcurrency = 4
	DefaultTopicPrefix        = "hedera.batch"
	DefaultBroadcastTimeout   = 5 * time.Second
)

type Config struct {
	// DefaultNetwork applies when a request names no network.
	DefaultNetwork string
	// DefaultOperator pays for requests that carry no credentials.
	DefaultOperator    shared.OperatorConfig
	MaxBatchSize       int
	BalanceConcurrency int
	TopicPrefix        string
	// BroadcastTimeout bounds each publish. Publishing outlives request
	// cancellation so completed items still reach subscribers.
	BroadcastTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultNetwork == "" {
		c.DefaultNetwork = shared.NetworkTestnet
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.BalanceConcurrency <= 0 {
		c.BalanceConcurrency = DefaultBalanceConcurrency
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.BroadcastTimeout <= 0 {
		c.BroadcastTimeout = DefaultBroadcastTimeout
	}
	return c
}

type Service struct {
	factory   ledger.Factory
	publisher broadcast.Publisher
	logger    zerolog.Logger
	config    Config
}

// NewService wires a ledger factory to a publisher. A nil publisher discards
// every event.
func NewService(factory ledger.Factory, publisher broadcast.Publisher, logger zerolog.Logger, config Config) (*Service, error) {
	if factory == nil {
		return nil, fmt.Errorf("ledger factory is required")
	}
	if publisher == nil {
		publisher = broadcast.PublisherFunc(func(context.Context, broadcast.Event) error { return nil })
	}
	return &Service{
		factory:   factory,
		publisher: publisher,
		logger:    logger.With().Str("component", "batch").Logger(),
		config:    config.withDefaults(),
	}, nil
}

func (s *Service) Config() Config {
	return s.config
}

// run tracks one batch while it executes.
type run struct {
	service  *Service
	id       string
	kind     broadcast.Kind
	topic    string
	network  string
	total    int
	failures int
	logger   zerolog.Logger
	started  time.Time
}

func (s *Service) newRun(kind broadcast.Kind, network string, total int) *run {
	id := uuid.NewString()
	return &run{
		service: s,
		id:      id,
		kind:    kind,
		topic:   broadcast.TopicName(s.config.TopicPrefix, kind),
		network: network,
		total:   total,
		logger: s.logger.With().
			Str("batch_id", id).
			Str("kind", string(kind)).
			Str("network", network).
			Logger(),
		started: time.Now(),
	}
}

// open connects to the ledger. The returned func closes it and must run when
// the batch finishes.
func (r *run) open(ctx context.Context, credentials ledger.Credentials) (ledger.Ledger, func(), error) {
	l, err := r.service.factory.Open(ctx, credentials)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s ledger: %w", credentials.Network, err)
	}
	if l.Network() != credentials.Network {
		_ = l.Close()
		return nil, nil, fmt.Errorf("ledger opened on %s, batch requested %s", l.Network(), credentials.Network)
	}
	r.logger.Info().
		Str("operator", l.Operator().String()).
		Int("items", r.total).
		Msg("batch started")
	return l, func() {
		if closeErr := l.Close(); closeErr != nil {
			r.logger.Warn().Err(closeErr).Msg("failed to close ledger client")
		}
	}, nil
}

// publish broadcasts one item result. Failures are counted, never returned.
func (r *run) publish(ctx context.Context, sequence int, payload any) {
	event := broadcast.NewEvent(r.id, r.kind, r.topic, sequence, r.total, r.network, payload)

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.service.config.BroadcastTimeout)
	defer cancel()

	if err := r.service.publisher.Publish(publishCtx, event); err != nil {
		r.failures++
		r.logger.Warn().
			Err(err).
			Int("sequence", sequence).
			Str("event_id", event.ID).
			Msg("failed to broadcast batch result")
	}
}

func (r *run) itemDone(sequence int, status string, err error) {
	if err != nil {
		r.logger.Warn().Err(err).Int("sequence", sequence).Str("status", status).Msg("batch item failed")
		return
	}
	r.logger.Debug().Int("sequence", sequence).Str("status", status).Msg("batch item completed")
}

// finish logs completion and returns the context error when the batch was cut
// short.
func (r *run) finish(ctx context.Context, completed int) error {
	var err error
	if completed < r.total {
		err = ctx.Err()
	}

	event := r.logger.Info()
	if err != nil {
		event = r.logger.Warn().Err(err)
	}
	event.
		Int("completed", completed).
		Int("broadcast_failures", r.failures).
		Dur("elapsed", time.Since(r.started)).
		Msg("batch finished")
	return err
}

// itemStatus returns the status and error text recorded for a failed item.
func itemStatus(err error) (string, string) {
	if status, ok := ledger.StatusFromError(err); ok {
		return status, err.Error()
	}
	return StatusFailed, err.Error()
}

// interrupted reports whether err comes from ctx being done rather than
// from the ledger.
func interrupted(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil && broadcast.IsContextError(err)
}
