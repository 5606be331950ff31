// Package shared holds the small helpers every other package in the batch
// service leans on: network name normalization, Hedera client construction,
// account/token/key parsing, and environment loading (including .env
// discovery and network-scoped operator credentials).
//
// # Environment Variables
//
// Operator credentials are resolved from HEDERA_ACCOUNT_ID and
// HEDERA_PRIVATE_KEY (with OPERATOR_ID/OPERATOR_KEY style aliases). When
// HEDERA_NETWORK names a network, MAINNET_, TESTNET_ or PREVIEWNET_ prefixed
// variants take precedence.
package shared
