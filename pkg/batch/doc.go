// Package batch runs batches of Hedera operations on behalf of one operator
// and broadcasts every per-item outcome.
//
// A Service exposes four operations:
//
//   - MultipleTransfer sends the same HBAR amount from the operator to each
//     receiver, one TransferTransaction per receiver.
//   - MultipleAssociate associates every token with every account, one
//     TokenAssociateTransaction per pair, in account-major order.
//   - MultipleCreateAccount generates fresh key pairs and creates one account
//     per key. Private keys are returned to the caller, optionally sealed for
//     a recipient with package keyseal, and never broadcast.
//   - CheckBalance reads HBAR balances from the network, or token balances
//     from the mirror node, with bounded parallelism.
//
// Requests are validated in full before a ledger connection is opened. A
// failing item does not stop the batch: its status and error are recorded in
// the item result and broadcast like any other. Cancelling the context stops
// the batch between items and returns the partial result together with the
// context error.
//
// Results are published through a broadcast.Publisher, usually a
// broadcast.Fanout, one event per item with a 1-based sequence number. A
// publish failure is logged and counted in BroadcastFailures; it never fails
// the batch.
package batch
