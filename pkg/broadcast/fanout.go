package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type namedPublisher struct {
	name      string
	publisher Publisher
	cleanup   func()
}

// Fanout delivers every event to each registered publisher in registration
// order. One publisher failing does not stop delivery to the rest.
type Fanout struct {
	mu         sync.RWMutex
	publishers []namedPublisher
	closed     bool
	logger     zerolog.Logger
}

func NewFanout(logger zerolog.Logger) *Fanout {
	return &Fanout{logger: logger.With().Str("component", "broadcast").Logger()}
}

// Add registers a publisher. cleanup, when non-nil, runs on Close.
func (f *Fanout) Add(name string, publisher Publisher, cleanup func()) {
	if publisher == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishers = append(f.publishers, namedPublisher{name: name, publisher: publisher, cleanup: cleanup})
	f.logger.Info().Str("publisher", name).Msg("broadcast publisher registered")
}

// Names returns the registered publisher names in order.
func (f *Fanout) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.publishers))
	for _, entry := range f.publishers {
		names = append(names, entry.name)
	}
	return names
}

// Publish returns nil when there are no publishers. Failures are joined and
// tagged with the publisher name; context errors end delivery early.
func (f *Fanout) Publish(ctx context.Context, event Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return ErrClosed
	}

	var errs []error
	for _, entry := range f.publishers {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := entry.publisher.Publish(ctx, event); err != nil {
			if IsContextError(err) {
				return err
			}
			f.logger.Warn().
				Err(err).
				Str("publisher", entry.name).
				Str("topic", event.Topic).
				Str("batch_id", event.BatchID).
				Int("sequence", event.Sequence).
				Msg("broadcast publish failed")
			errs = append(errs, fmt.Errorf("%s: %w", entry.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close runs every cleanup in reverse registration order. Later Publish
// calls return ErrClosed.
func (f *Fanout) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for index := len(f.publishers) - 1; index >= 0; index-- {
		if cleanup := f.publishers[index].cleanup; cleanup != nil {
			cleanup()
		}
	}
}
