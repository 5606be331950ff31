// Package broadcast carries per-item batch results to subscribers.
//
// Every result becomes an Event addressed to a dotted topic such as
// hedera.batch.transfer. A Fanout delivers each event to any number of
// Publisher implementations; the adapters live in subpackages:
//
//   - inmemory records events, for tests and dry runs
//   - hub pushes to in-process subscribers and websocket clients
//   - nats, rabbitmq and kafka publish to message brokers
//   - socketio emits to a Socket.IO relay
//   - hcs submits events to a Hedera Consensus Service topic
//
// Codec is shared by the broker adapters. It encodes events as JSON and
// brotli-compresses large bodies when configured, advertising the encoding in
// the content-encoding header.
//
// Errors use the codes in errors.go joined with the transport's own error,
// so callers can match with errors.Is(err, broadcast.ErrPublishFailed).
// Context cancellation is returned as-is.
package broadcast
