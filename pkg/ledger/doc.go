// Package ledger wraps the Hedera SDK calls made by a batch behind the Ledger
// interface so the batch service can be exercised without a network.
//
// HederaFactory opens one SDK client per batch, bound to the request's
// operator, together with a mirror node client used for token balances.
// Failed prechecks and non-SUCCESS receipts surface as *StatusError so
// callers can report the ledger status name next to the error text.
package ledger
