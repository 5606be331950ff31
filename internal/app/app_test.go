package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/hashgraph-online/hedera-batch-go/internal/config"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/inmemory"
)

func baseConfig() config.Config {
	return config.Config{
		Network:            "testnet",
		MaxBatchSize:       10,
		BalanceConcurrency: 2,
		TopicPrefix:        "hedera.batch",
		Compression:        broadcast.CompressionNone,
		Hub:                config.Hub{Enabled: true, BufferSize: 4},
	}
}

func TestBuildFanoutHubOnly(t *testing.T) {
	fanout, eventHub, err := BuildFanout(baseConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fanout.Close()

	if eventHub == nil {
		t.Fatal("expected a hub")
	}
	names := fanout.Names()
	if len(names) != 1 || names[0] != "hub" {
		t.Fatalf("unexpected publishers %v", names)
	}

	subscription := eventHub.Subscribe("hedera.batch.*")
	defer subscription.Close()

	event := broadcast.NewEvent("b1", broadcast.KindBalance, "hedera.batch.balance", 1, 1, "testnet", nil)
	if err := fanout.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	received := <-subscription.Events()
	if received.ID != event.ID {
		t.Fatalf("unexpected event %+v", received)
	}
}

func TestBuildFanoutWithKafka(t *testing.T) {
	cfg := baseConfig()
	cfg.Hub.Enabled = false
	cfg.Kafka = config.Kafka{Brokers: []string{"127.0.0.1:1"}, ClientID: "test", Acks: "leader"}

	fanout, eventHub, err := BuildFanout(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fanout.Close()

	if eventHub != nil {
		t.Fatal("expected no hub when disabled")
	}
	names := fanout.Names()
	if len(names) != 1 || names[0] != "kafka" {
		t.Fatalf("unexpected publishers %v", names)
	}
}

func TestBuildFanoutRejectsBadHCSTopic(t *testing.T) {
	cfg := baseConfig()
	cfg.HCS.TopicID = "not-a-topic"

	if _, _, err := BuildFanout(cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for malformed topic")
	}
}

func TestNewAddsExtraPublishers(t *testing.T) {
	recorder := inmemory.New()
	application, err := New(baseConfig(), zerolog.Nop(), map[string]broadcast.Publisher{"print": recorder})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer application.Close()

	if application.Service == nil || application.Hub == nil {
		t.Fatal("expected service and hub")
	}
	if got := application.Service.Config().MaxBatchSize; got != 10 {
		t.Fatalf("expected batch size from config, got %d", got)
	}

	names := application.Fanout.Names()
	if len(names) != 2 || names[1] != "print" {
		t.Fatalf("unexpected publishers %v", names)
	}
}

func TestKafkaAcks(t *testing.T) {
	cases := []struct {
		setting    string
		acks       kgo.Acks
		idempotent bool
	}{
		{"", kgo.AllISRAcks(), true},
		{"all", kgo.AllISRAcks(), true},
		{"Leader", kgo.LeaderAck(), false},
		{"none", kgo.NoAck(), false},
	}
	for _, tc := range cases {
		acks, idempotent := KafkaAcks(tc.setting)
		if acks != tc.acks || idempotent != tc.idempotent {
			t.Fatalf("%q: unexpected acks", tc.setting)
		}
	}
}
