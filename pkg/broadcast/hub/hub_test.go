package hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/rs/zerolog"
)

func receive(t *testing.T, subscription *Subscription) broadcast.Event {
	t.Helper()
	select {
	case event := <-subscription.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return broadcast.Event{}
	}
}

func TestSubscriptionFilters(t *testing.T) {
	cases := []struct {
		filters []string
		topic   string
		kind    broadcast.Kind
		match   bool
	}{
		{nil, "hedera.batch.transfer", broadcast.KindTransfer, true},
		{[]string{"*"}, "anything", "", true},
		{[]string{"hedera.batch.transfer"}, "hedera.batch.transfer", broadcast.KindTransfer, true},
		{[]string{"hedera.batch.transfer"}, "hedera.batch.create", broadcast.KindCreate, false},
		{[]string{"hedera.batch.*"}, "hedera.batch.create", broadcast.KindCreate, true},
		{[]string{"hedera.batch.*"}, "hedera.other.create", broadcast.KindCreate, false},
		{[]string{"a", "b"}, "b", "", true},
		{[]string{"Balance"}, "custom.prefix.balance", broadcast.KindBalance, true},
		{[]string{"balance"}, "custom.prefix.create", broadcast.KindCreate, false},
		{[]string{"create", "hedera.batch.transfer"}, "hedera.batch.transfer", broadcast.KindTransfer, true},
	}
	h := New(1, zerolog.Nop())
	defer h.Close()
	for _, tc := range cases {
		subscription := h.Subscribe(tc.filters...)
		event := broadcast.Event{Topic: tc.topic, Kind: tc.kind}
		if got := subscription.matches(event); got != tc.match {
			t.Fatalf("filters %v topic %q kind %q: got %v want %v", tc.filters, tc.topic, tc.kind, got, tc.match)
		}
		subscription.Close()
	}
}

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	h := New(4, zerolog.Nop())
	transfers := h.Subscribe("hedera.batch.transfer")
	everything := h.Subscribe(" ", "")
	defer transfers.Close()
	defer everything.Close()

	if err := h.Publish(context.Background(), broadcast.Event{Topic: "hedera.batch.create", Sequence: 1}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := h.Publish(context.Background(), broadcast.Event{Topic: "hedera.batch.transfer", Sequence: 2}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if got := receive(t, transfers); got.Sequence != 2 {
		t.Fatalf("transfer subscriber got sequence %d", got.Sequence)
	}
	if got := receive(t, everything); got.Sequence != 1 {
		t.Fatalf("catch-all subscriber got sequence %d first", got.Sequence)
	}
	if got := receive(t, everything); got.Sequence != 2 {
		t.Fatalf("catch-all subscriber got sequence %d second", got.Sequence)
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	h := New(1, zerolog.Nop())
	slow := h.Subscribe()
	defer slow.Close()

	for i := 0; i < 3; i++ {
		if err := h.Publish(context.Background(), broadcast.Event{Topic: "t"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if h.Dropped() != 2 {
		t.Fatalf("expected 2 dropped, got %d", h.Dropped())
	}
}

func TestCloseSubscriptionAndHub(t *testing.T) {
	h := New(1, zerolog.Nop())
	subscription := h.Subscribe()
	if h.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", h.SubscriberCount())
	}
	subscription.Close()
	subscription.Close()
	if h.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", h.SubscriberCount())
	}
	if _, ok := <-subscription.Events(); ok {
		t.Fatal("expected closed channel")
	}

	other := h.Subscribe()
	h.Close()
	h.Close()
	if _, ok := <-other.Events(); ok {
		t.Fatal("expected hub close to close subscriptions")
	}
	if err := h.Publish(context.Background(), broadcast.Event{}); !errors.Is(err, broadcast.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	late := h.Subscribe()
	if _, ok := <-late.Events(); ok {
		t.Fatal("expected subscription on closed hub to be closed")
	}
	late.Close()
}

func TestPublishCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(1, zerolog.Nop()).Publish(ctx, broadcast.Event{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestServeWSStreamsFilteredEvents(t *testing.T) {
	h := New(8, zerolog.Nop())
	defer h.Close()

	server := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/?topics=hedera.batch.balance"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	_ = h.Publish(context.Background(), broadcast.Event{Topic: "hedera.batch.transfer", Sequence: 1})
	_ = h.Publish(context.Background(), broadcast.Event{Topic: "hedera.batch.balance", Sequence: 2, BatchID: "b-1"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event broadcast.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read: %v", err)
	}
	if event.Sequence != 2 || event.BatchID != "b-1" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestServeWSUnsubscribesOnDisconnect(t *testing.T) {
	h := New(8, zerolog.Nop())
	defer h.Close()

	server := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for h.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber was not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
