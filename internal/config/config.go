// Package config loads service configuration from the environment.
//
// Operator credentials follow the network-scoped lookup of pkg/shared, so
// TESTNET_HEDERA_ACCOUNT_ID wins over HEDERA_ACCOUNT_ID when the network is
// testnet. A .env file found by walking up from the working directory is
// loaded first; variables already set are never overwritten.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashgraph-online/hedera-batch-go/pkg/batch"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
)

type Hub struct {
	Enabled    bool
	BufferSize int
}

type NATS struct {
	URL           string
	Name          string
	MaxReconnects int
}

type RabbitMQ struct {
	URL      string
	Exchange string
}

type Kafka struct {
	Brokers  []string
	ClientID string
	// Acks is all, leader or none.
	Acks string
}

type SocketIO struct {
	URL    string
	APIKey string
}

type HCS struct {
	TopicID  string
	Compress bool
}

type Config struct {
	Network  string
	Operator shared.OperatorConfig

	HTTPAddr           string
	ShutdownTimeout    time.Duration
	MaxBatchSize       int
	BalanceConcurrency int
	TopicPrefix        string
	BroadcastTimeout   time.Duration

	Compression          string
	CompressionThreshold int
	ConnTimeout          time.Duration

	MirrorBaseURL string
	MirrorAPIKey  string

	Hub      Hub
	NATS     NATS
	RabbitMQ RabbitMQ
	Kafka    Kafka
	SocketIO SocketIO
	HCS      HCS

	LogLevel  string
	LogFormat string
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	shared.LoadDotEnv()

	operator := shared.LookupOperatorConfigFromEnv()

	cfg := Config{
		Network:  operator.Network,
		Operator: operator,

		HTTPAddr:           shared.EnvString("BATCH_HTTP_ADDR", ":8080"),
		ShutdownTimeout:    shared.EnvDuration("BATCH_SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxBatchSize:       shared.EnvInt("BATCH_MAX_SIZE", batch.DefaultMaxBatchSize),
		BalanceConcurrency: shared.EnvInt("BATCH_BALANCE_CONCURRENCY", batch.DefaultBalanceConcurrency),
		TopicPrefix:        shared.EnvString("BATCH_TOPIC_PREFIX", batch.DefaultTopicPrefix),
		BroadcastTimeout:   shared.EnvDuration("BATCH_BROADCAST_TIMEOUT", batch.DefaultBroadcastTimeout),

		Compression:          shared.EnvString("BATCH_COMPRESSION", broadcast.CompressionNone),
		CompressionThreshold: shared.EnvInt("BATCH_COMPRESSION_THRESHOLD", 0),
		ConnTimeout:          shared.EnvDuration("BROADCAST_CONN_TIMEOUT", 5*time.Second),

		MirrorBaseURL: shared.FirstNonEmptyEnv("MIRROR_BASE_URL", "MIRROR_NODE_URL"),
		MirrorAPIKey:  shared.FirstNonEmptyEnv("MIRROR_API_KEY", "MIRROR_NODE_API_KEY"),

		Hub: Hub{
			Enabled:    shared.EnvBool("BROADCAST_HUB_ENABLED", true),
			BufferSize: shared.EnvInt("BROADCAST_HUB_BUFFER", 64),
		},
		NATS: NATS{
			URL:           shared.EnvString("BROADCAST_NATS_URL", ""),
			Name:          shared.EnvString("BROADCAST_NATS_NAME", "hedera-batch"),
			MaxReconnects: shared.EnvInt("BROADCAST_NATS_MAX_RECONNECTS", 60),
		},
		RabbitMQ: RabbitMQ{
			URL:      shared.EnvString("BROADCAST_RABBITMQ_URL", ""),
			Exchange: shared.EnvString("BROADCAST_RABBITMQ_EXCHANGE", ""),
		},
		Kafka: Kafka{
			Brokers:  shared.EnvList("BROADCAST_KAFKA_BROKERS"),
			ClientID: shared.EnvString("BROADCAST_KAFKA_CLIENT_ID", "hedera-batch"),
			Acks:     shared.EnvString("BROADCAST_KAFKA_ACKS", "all"),
		},
		SocketIO: SocketIO{
			URL:    shared.EnvString("BROADCAST_SOCKETIO_URL", ""),
			APIKey: shared.EnvString("BROADCAST_SOCKETIO_API_KEY", ""),
		},
		HCS: HCS{
			TopicID:  shared.EnvString("BROADCAST_HCS_TOPIC_ID", ""),
			Compress: shared.EnvBool("BROADCAST_HCS_COMPRESS", true),
		},

		LogLevel:  shared.EnvString("LOG_LEVEL", "info"),
		LogFormat: shared.EnvString("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalizes the network and compression names and checks limits.
func (c *Config) Validate() error {
	network, err := shared.NormalizeNetwork(c.Network)
	if err != nil {
		return fmt.Errorf("HEDERA_NETWORK: %w", err)
	}
	c.Network = network
	c.Operator.Network = network

	compression, err := broadcast.ParseCompression(c.Compression)
	if err != nil {
		return fmt.Errorf("BATCH_COMPRESSION: %w", err)
	}
	c.Compression = compression

	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("BATCH_MAX_SIZE must be positive, got %d", c.MaxBatchSize)
	}
	if c.BalanceConcurrency <= 0 {
		return fmt.Errorf("BATCH_BALANCE_CONCURRENCY must be positive, got %d", c.BalanceConcurrency)
	}
	if c.Hub.BufferSize <= 0 {
		return fmt.Errorf("BROADCAST_HUB_BUFFER must be positive, got %d", c.Hub.BufferSize)
	}

	switch strings.ToLower(strings.TrimSpace(c.Kafka.Acks)) {
	case "", "all", "leader", "none":
	default:
		return fmt.Errorf("BROADCAST_KAFKA_ACKS must be all, leader or none, got %q", c.Kafka.Acks)
	}

	if c.HCS.TopicID != "" && c.Operator.IsZero() {
		return fmt.Errorf("BROADCAST_HCS_TOPIC_ID requires operator credentials: %w", shared.ErrOperatorNotConfigured)
	}
	return nil
}

// Batch returns the batch service settings.
func (c Config) Batch() batch.Config {
	return batch.Config{
		DefaultNetwork:     c.Network,
		DefaultOperator:    c.Operator,
		MaxBatchSize:       c.MaxBatchSize,
		BalanceConcurrency: c.BalanceConcurrency,
		TopicPrefix:        c.TopicPrefix,
		BroadcastTimeout:   c.BroadcastTimeout,
	}
}

// Ledger returns the ledger factory settings. MIRROR_BASE_URL applies to the
// configured network only.
func (c Config) Ledger() ledger.FactoryConfig {
	factory := ledger.FactoryConfig{MirrorAPIKey: c.MirrorAPIKey}
	if c.MirrorBaseURL != "" {
		factory.MirrorBaseURLs = map[string]string{c.Network: c.MirrorBaseURL}
	}
	return factory
}

// Codec returns the broadcast codec settings.
func (c Config) Codec() broadcast.Codec {
	return broadcast.Codec{Compression: c.Compression, Threshold: c.CompressionThreshold}
}
