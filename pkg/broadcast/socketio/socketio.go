// Package socketio relays batch events to a Socket.IO server, emitting each
// event under its topic name so browser clients can listen with
// socket.on("hedera.batch.transfer", ...).
package socketio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/rs/zerolog"
	socketio "github.com/zhouhui8915/go-socket.io-client"
)

// Emitter is satisfied by *socketio.Client.
type Emitter interface {
	Emit(event string, args ...interface{}) error
}

// Listener is satisfied by *socketio.Client.
type Listener interface {
	On(event string, handler interface{}) error
}

type Publisher struct {
	mu      sync.Mutex
	emitter Emitter
}

var _ broadcast.Publisher = (*Publisher)(nil)

func New(emitter Emitter) *Publisher {
	return &Publisher{emitter: emitter}
}

func (p *Publisher) Publish(ctx context.Context, event broadcast.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.emitter == nil {
		return fmt.Errorf("socketio publish: %w", broadcast.ErrNotConfigured)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.emitter.Emit(event.Topic, event); err != nil {
		return fmt.Errorf("socketio emit %q: %w", event.Topic, errors.Join(broadcast.ErrPublishFailed, err))
	}
	return nil
}

type Config struct {
	URL    string
	APIKey string
}

// NewWithSocketIO connects to the relay over the websocket transport. The
// API key, when set, is sent both as a query parameter and an x-api-key header.
// Relay errors and disconnects are logged; publishing while disconnected fails.
func NewWithSocketIO(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	relayURL := strings.TrimSpace(cfg.URL)
	if relayURL == "" {
		return nil, fmt.Errorf("%w: socket.io url required", broadcast.ErrNotConfigured)
	}

	options := &socketio.Options{
		Transport: "websocket",
		Query:     map[string]string{},
		Header:    map[string][]string{},
	}
	if apiKey := strings.TrimSpace(cfg.APIKey); apiKey != "" {
		options.Query["apiKey"] = apiKey
		options.Header["x-api-key"] = []string{apiKey}
	}

	client, err := socketio.NewClient(relayURL, options)
	if err != nil {
		return nil, fmt.Errorf("%w: socket.io connect: %w", broadcast.ErrPublishFailed, err)
	}
	watch(client, logger.With().Str("publisher", "socketio").Str("relay", relayURL).Logger())
	return New(client), nil
}

func watch(listener Listener, logger zerolog.Logger) {
	_ = listener.On("error", func(message any) {
		logger.Warn().Str("error", fmt.Sprintf("%v", message)).Msg("socket.io relay error")
	})
	_ = listener.On("disconnection", func() {
		logger.Warn().Msg("socket.io relay disconnected")
	})
}
