// Package mirror is a small read-only client for the Hedera mirror node REST
// API.
//
// The batch service uses it where the SDK's own queries are a poor fit:
// token balances come from /api/v1/accounts/{id}/tokens because the balance
// query's token map is deprecated, transaction records back the CLI's
// lookup command, and topic messages let operators replay events that were
// published to a consensus topic.
//
// Every call takes a context and returns *HTTPError for non-2xx answers so
// callers can tell a missing entity (IsNotFound) from a transport failure.
package mirror
