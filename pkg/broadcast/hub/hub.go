package hub

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/rs/zerolog"
)

const defaultBufferSize = 64

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*Subscription
	nextID      uint64
	bufferSize  int
	closed      bool
	dropped     atomic.Int64
	logger      zerolog.Logger
}

var _ broadcast.Publisher = (*Hub)(nil)

// New creates a hub whose subscribers buffer up to bufferSize events.
func New(bufferSize int, logger zerolog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		subscribers: make(map[uint64]*Subscription),
		bufferSize:  bufferSize,
		logger:      logger.With().Str("publisher", "hub").Logger(),
	}
}

// Subscription receives events whose topic matches one of its filters. A
// filter is an exact topic, a prefix ending in ".*", "*", or an event kind
// name such as "transfer".
type Subscription struct {
	id      uint64
	filters []string
	kinds   []broadcast.Kind
	events  chan broadcast.Event
	hub     *Hub
	once    sync.Once
}

func (s *Subscription) Events() <-chan broadcast.Event {
	return s.events
}

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

func (s *Subscription) matches(event broadcast.Event) bool {
	if len(s.filters) == 0 && len(s.kinds) == 0 {
		return true
	}
	for _, kind := range s.kinds {
		if event.Kind == kind {
			return true
		}
	}
	topic := event.Topic
	for _, filter := range s.filters {
		switch {
		case filter == "*":
			return true
		case strings.HasSuffix(filter, ".*"):
			if strings.HasPrefix(topic, strings.TrimSuffix(filter, "*")) {
				return true
			}
		case filter == topic:
			return true
		}
	}
	return false
}

// Subscribe registers a subscriber; no filters means every topic. Subscribing
// to a closed hub returns an already-closed subscription.
func (h *Hub) Subscribe(filters ...string) *Subscription {
	cleaned := make([]string, 0, len(filters))
	var kinds []broadcast.Kind
	for _, filter := range filters {
		trimmed := strings.TrimSpace(filter)
		if trimmed == "" {
			continue
		}
		if kind, ok := broadcast.ParseKind(trimmed); ok {
			kinds = append(kinds, kind)
			continue
		}
		cleaned = append(cleaned, trimmed)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	subscription := &Subscription{
		id:      h.nextID,
		filters: cleaned,
		kinds:   kinds,
		events:  make(chan broadcast.Event, h.bufferSize),
		hub:     h,
	}
	if h.closed {
		subscription.once.Do(func() { close(subscription.events) })
		return subscription
	}
	h.subscribers[subscription.id] = subscription
	return subscription
}

func (h *Hub) remove(subscription *Subscription) {
	h.mu.Lock()
	delete(h.subscribers, subscription.id)
	h.mu.Unlock()
	subscription.once.Do(func() { close(subscription.events) })
}

// Publish never blocks on a slow subscriber: when its buffer is full the
// event is dropped for that subscriber and counted.
func (h *Hub) Publish(ctx context.Context, event broadcast.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return broadcast.ErrClosed
	}

	for _, subscription := range h.subscribers {
		if !subscription.matches(event) {
			continue
		}
		select {
		case subscription.events <- event:
		default:
			h.dropped.Add(1)
			h.logger.Warn().
				Uint64("subscriber", subscription.id).
				Str("topic", event.Topic).
				Msg("subscriber buffer full; event dropped")
		}
	}
	return nil
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns how many deliveries were skipped because of full buffers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close closes every subscription. Publish afterwards returns ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subscribers := h.subscribers
	h.subscribers = make(map[uint64]*Subscription)
	h.mu.Unlock()

	for _, subscription := range subscribers {
		subscription.once.Do(func() { close(subscription.events) })
	}
}
