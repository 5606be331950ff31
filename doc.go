// Hedera Batch for Go runs multi-item operations against the Hedera public
// ledger and streams a result for every item as it completes. A single request
// can pay many recipients, associate many accounts with many tokens, create
// many accounts, or query many balances.
//
// # Operations
//
//   - MultipleTransfer: one HBAR transfer per recipient (pkg/batch)
//   - MultipleAssociate: one token association per account (pkg/batch)
//   - MultipleCreateAccount: N new accounts, keys optionally sealed (pkg/batch, pkg/keyseal)
//   - CheckBalance: concurrent balance queries, reported in request order (pkg/batch)
//
// # Result Broadcasting
//
// Every item result is published as an event through pkg/broadcast. Events can
// fan out to an in-process WebSocket hub, NATS, RabbitMQ, Kafka, a Socket.IO
// relay, and a Hedera Consensus Service topic. Topic events can be replayed
// from the mirror node.
//
// # Running
//
// The hedera-batch command serves the HTTP API and exposes each operation as a
// subcommand:
//
//	go install github.com/hashgraph-online/hedera-batch-go/cmd/hedera-batch@latest
//	hedera-batch serve
//	hedera-batch transfer --amount 1.5 --to 0.0.1001 --to 0.0.1002
//
// Configuration is read from the environment (HEDERA_*, BATCH_*, BROADCAST_*)
// and from a .env file when present.
package hedera_batch_go
