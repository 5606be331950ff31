// Package inmemory records published events. It backs tests and the CLI's
// --print-events flag.
package inmemory

import (
	"context"
	"sync"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
)

// Publisher is a thread-safe recorder of events.
type Publisher struct {
	mu     sync.Mutex
	events []broadcast.Event
	// Err, when set, is returned from every Publish after recording.
	Err error
}

var _ broadcast.Publisher = (*Publisher)(nil)

func New() *Publisher { return &Publisher{} }

func (p *Publisher) Publish(ctx context.Context, event broadcast.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of everything recorded so far.
func (p *Publisher) Events() []broadcast.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broadcast.Event(nil), p.events...)
}

// ByTopic returns the recorded events addressed to topic.
func (p *Publisher) ByTopic(topic string) []broadcast.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []broadcast.Event
	for _, event := range p.events {
		if event.Topic == topic {
			matched = append(matched, event)
		}
	}
	return matched
}

func (p *Publisher) Reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}
