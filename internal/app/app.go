// Package app assembles the batch service and its broadcast fan-out from
// configuration. Both the HTTP server and the CLI start from here.
package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/hashgraph-online/hedera-batch-go/internal/config"
	"github.com/hashgraph-online/hedera-batch-go/pkg/batch"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/hcs"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/hub"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/kafka"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/nats"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/rabbitmq"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/socketio"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
)

type App struct {
	Config  config.Config
	Logger  zerolog.Logger
	Service *batch.Service
	Fanout  *broadcast.Fanout
	// Hub is nil when the in-process hub is disabled.
	Hub *hub.Hub
}

// New builds every configured publisher and the batch service on top of
// them. extra publishers, such as an inmemory recorder, join the fan-out
// under their map key.
func New(cfg config.Config, logger zerolog.Logger, extra map[string]broadcast.Publisher) (*App, error) {
	fanout, eventHub, err := BuildFanout(cfg, logger)
	if err != nil {
		return nil, err
	}
	for name, publisher := range extra {
		fanout.Add(name, publisher, nil)
	}

	service, err := batch.NewService(ledger.NewHederaFactory(cfg.Ledger()), fanout, logger, cfg.Batch())
	if err != nil {
		fanout.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Service: service,
		Fanout:  fanout,
		Hub:     eventHub,
	}, nil
}

// Close releases every publisher.
func (a *App) Close() {
	a.Fanout.Close()
}

// BuildFanout creates one publisher per configured transport. Publishers
// built before a failure are closed again.
func BuildFanout(cfg config.Config, logger zerolog.Logger) (*broadcast.Fanout, *hub.Hub, error) {
	fanout := broadcast.NewFanout(logger)
	codec := cfg.Codec()

	fail := func(name string, err error) (*broadcast.Fanout, *hub.Hub, error) {
		fanout.Close()
		return nil, nil, fmt.Errorf("failed to build %s publisher: %w", name, err)
	}

	var eventHub *hub.Hub
	if cfg.Hub.Enabled {
		eventHub = hub.New(cfg.Hub.BufferSize, logger)
		fanout.Add("hub", eventHub, eventHub.Close)
	}

	if cfg.NATS.URL != "" {
		publisher, cleanup, err := nats.NewWithNATS(nats.Config{
			URL:           cfg.NATS.URL,
			Name:          cfg.NATS.Name,
			ConnTimeout:   cfg.ConnTimeout,
			MaxReconnects: cfg.NATS.MaxReconnects,
		}, codec)
		if err != nil {
			return fail("nats", err)
		}
		fanout.Add("nats", publisher, cleanup)
	}

	if cfg.RabbitMQ.URL != "" {
		publisher, cleanup, err := rabbitmq.NewWithAMQP(rabbitmq.Config{
			URL:         cfg.RabbitMQ.URL,
			Exchange:    cfg.RabbitMQ.Exchange,
			ConnTimeout: cfg.ConnTimeout,
		}, codec, logger)
		if err != nil {
			return fail("rabbitmq", err)
		}
		fanout.Add("rabbitmq", publisher, cleanup)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		acks, idempotent := KafkaAcks(cfg.Kafka.Acks)
		publisher, cleanup, err := kafka.NewWithKgo(kafka.Config{
			Brokers:    cfg.Kafka.Brokers,
			ClientID:   cfg.Kafka.ClientID,
			Acks:       acks,
			Idempotent: idempotent,
		}, codec)
		if err != nil {
			return fail("kafka", err)
		}
		fanout.Add("kafka", publisher, cleanup)
	}

	if cfg.SocketIO.URL != "" {
		publisher, err := socketio.NewWithSocketIO(socketio.Config{
			URL:    cfg.SocketIO.URL,
			APIKey: cfg.SocketIO.APIKey,
		}, logger)
		if err != nil {
			return fail("socketio", err)
		}
		fanout.Add("socketio", publisher, nil)
	}

	if cfg.HCS.TopicID != "" {
		publisher, cleanup, err := hcs.NewWithOperator(hcs.Config{
			Network:     cfg.Network,
			TopicID:     cfg.HCS.TopicID,
			OperatorID:  cfg.Operator.AccountID,
			OperatorKey: cfg.Operator.PrivateKey,
			Compress:    cfg.HCS.Compress,
		})
		if err != nil {
			return fail("hcs", err)
		}
		fanout.Add("hcs", publisher, cleanup)
	}

	logger.Info().Strs("publishers", fanout.Names()).Msg("broadcast publishers ready")
	return fanout, eventHub, nil
}

// KafkaAcks maps an acks setting onto franz-go. "all" keeps idempotent
// writes, which require acks from every in-sync replica.
func KafkaAcks(setting string) (kgo.Acks, bool) {
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "leader":
		return kgo.LeaderAck(), false
	case "none":
		return kgo.NoAck(), false
	default:
		return kgo.AllISRAcks(), true
	}
}
