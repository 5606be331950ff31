package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	NetworkMainnet    = "mainnet"
	NetworkTestnet    = "testnet"
	NetworkPreviewnet = "previewnet"
)

// NormalizeNetwork lowercases and validates a network name. An empty name
// resolves to testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkTestnet, nil
	}

	switch normalized {
	case NetworkMainnet, NetworkTestnet, NetworkPreviewnet:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// NewHederaClient creates an SDK client for the named network without an operator.
func NewHederaClient(network string) (*hedera.Client, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}

	switch normalized {
	case NetworkMainnet:
		return hedera.ClientForMainnet(), nil
	case NetworkPreviewnet:
		return hedera.ClientForPreviewnet(), nil
	default:
		return hedera.ClientForTestnet(), nil
	}
}

// NewOperatorClient creates an SDK client for the named network that pays for
// and signs transactions with the given operator.
func NewOperatorClient(network string, operatorID hedera.AccountID, operatorKey hedera.PrivateKey) (*hedera.Client, error) {
	client, err := NewHederaClient(network)
	if err != nil {
		return nil, err
	}
	client.SetOperator(operatorID, operatorKey)
	return client, nil
}

// ParseAccountID parses a shard.realm.num account identifier.
func ParseAccountID(raw string) (hedera.AccountID, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.AccountID{}, fmt.Errorf("account ID cannot be empty")
	}

	accountID, err := hedera.AccountIDFromString(candidate)
	if err != nil {
		return hedera.AccountID{}, fmt.Errorf("invalid account ID %q: %w", candidate, err)
	}
	return accountID, nil
}

// ParseTokenID parses a shard.realm.num token identifier.
func ParseTokenID(raw string) (hedera.TokenID, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.TokenID{}, fmt.Errorf("token ID cannot be empty")
	}

	tokenID, err := hedera.TokenIDFromString(candidate)
	if err != nil {
		return hedera.TokenID{}, fmt.Errorf("invalid token ID %q: %w", candidate, err)
	}
	return tokenID, nil
}
