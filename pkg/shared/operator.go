package shared

import (
	"errors"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// ErrOperatorNotConfigured is returned when no operator account or key can be
// resolved from the environment.
var ErrOperatorNotConfigured = errors.New("operator credentials are not configured")

type OperatorConfig struct {
	AccountID  string
	PrivateKey string
	Network    string
}

// IsZero reports whether no operator credentials are present.
func (c OperatorConfig) IsZero() bool {
	return strings.TrimSpace(c.AccountID) == "" && strings.TrimSpace(c.PrivateKey) == ""
}

// OperatorConfigFromEnv resolves the operator account and key from the
// environment, preferring network-scoped variables such as
// TESTNET_HEDERA_ACCOUNT_ID over the generic ones.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	config := LookupOperatorConfigFromEnv()

	if config.AccountID == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_ACCOUNT_ID is required: %w", ErrOperatorNotConfigured)
	}
	if config.PrivateKey == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_PRIVATE_KEY is required: %w", ErrOperatorNotConfigured)
	}

	return config, nil
}

// LookupOperatorConfigFromEnv behaves like OperatorConfigFromEnv but returns
// whatever it found, possibly empty, instead of failing.
func LookupOperatorConfigFromEnv() OperatorConfig {
	loadDotEnvIfPresent()

	network := FirstNonEmptyEnv("HEDERA_NETWORK", "NETWORK")
	if network == "" {
		network = NetworkTestnet
	}

	accountID := FirstNonEmptyEnv("HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "ACCOUNT_ID", "OPERATOR_ID")
	privateKey := FirstNonEmptyEnv("HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "PRIVATE_KEY", "OPERATOR_KEY")

	if scope := scopedEnvPrefix(network); scope != "" {
		if scopedAccount := FirstNonEmptyEnv(
			scope+"_HEDERA_ACCOUNT_ID",
			scope+"_HEDERA_OPERATOR_ID",
			scope+"_OPERATOR_ID",
		); scopedAccount != "" {
			accountID = scopedAccount
		}
		if scopedKey := FirstNonEmptyEnv(
			scope+"_HEDERA_PRIVATE_KEY",
			scope+"_HEDERA_OPERATOR_KEY",
			scope+"_OPERATOR_KEY",
		); scopedKey != "" {
			privateKey = scopedKey
		}
	}

	return OperatorConfig{
		AccountID:  accountID,
		PrivateKey: privateKey,
		Network:    network,
	}
}

func scopedEnvPrefix(network string) string {
	switch strings.ToLower(strings.TrimSpace(network)) {
	case NetworkMainnet:
		return "MAINNET"
	case NetworkTestnet:
		return "TESTNET"
	case NetworkPreviewnet:
		return "PREVIEWNET"
	default:
		return ""
	}
}

// ParsePrivateKey parses a DER or raw hex private key, trying ED25519, then
// ECDSA, then the SDK's generic parser.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	ed25519Key, edErr := hedera.PrivateKeyFromStringEd25519(candidate)
	if edErr == nil {
		return ed25519Key, nil
	}

	ecdsaKey, ecdsaErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}

	genericKey, genericErr := hedera.PrivateKeyFromString(candidate)
	if genericErr == nil {
		return genericKey, nil
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse private key as ED25519 (%v), ECDSA (%v), or generic (%v)",
		edErr,
		ecdsaErr,
		genericErr,
	)
}
