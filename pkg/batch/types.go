package batch

import (
	"github.com/shopspring/decimal"

	"github.com/hashgraph-online/hedera-batch-go/pkg/keyseal"
)

// StatusFailed is reported for items that failed without a ledger status,
// such as transport errors.
const StatusFailed = "FAILED"

// Credentials identify the operator that pays for and signs a batch. When
// both AccountAddress and PrivateKey are empty the service's default operator
// is used.
type Credentials struct {
	AccountAddress string `json:"accountAddress"`
	PrivateKey     string `json:"privateKey"`
	Network        string `json:"network,omitempty"`
}

type TransferRequest struct {
	Credentials
	// Amount is in HBAR and must be a whole number of tinybars.
	Amount            decimal.Decimal `json:"amount"`
	ReceivedAddresses []string        `json:"receivedAddresses"`
	Memo              string          `json:"memo,omitempty"`
}

type AssociateRequest struct {
	Credentials
	Tokens              []string `json:"tokens"`
	AssociatedAddresses []string `json:"associatedAddresses"`
	// AccountKeys optionally maps an associated account to its own private
	// key, which then co-signs that account's associations.
	AccountKeys map[string]string `json:"accountKeys,omitempty"`
}

type CreateAccountsRequest struct {
	Credentials
	NumberOfAccounts int             `json:"numberOfAccounts"`
	InitialBalance   decimal.Decimal `json:"initialBalance"`
	// KeyType is ed25519 (default) or ecdsa.
	KeyType                       string `json:"keyType,omitempty"`
	MaxAutomaticTokenAssociations *int32 `json:"maxAutomaticTokenAssociations,omitempty"`
	AccountMemo                   string `json:"accountMemo,omitempty"`
	// RecipientPublicKey is a hex secp256k1 key. When set, generated private
	// keys are returned sealed for it instead of in the clear.
	RecipientPublicKey string `json:"recipientPublicKey,omitempty"`
}

type BalanceRequest struct {
	Credentials
	AccountAddresses []string `json:"accountAddresses"`
	TokenID          string   `json:"tokenId,omitempty"`
}

type TransferResult struct {
	ReceivedAddress string `json:"receivedAddress"`
	Status          string `json:"status"`
	TransactionID   string `json:"transactionId,omitempty"`
	Error           string `json:"error,omitempty"`
}

type AssociateResult struct {
	ReceivedAddress string `json:"receivedAddress"`
	TokenID         string `json:"tokenId"`
	Status          string `json:"status"`
	TransactionID   string `json:"transactionId,omitempty"`
	Error           string `json:"error,omitempty"`
}

type CreateAccountResult struct {
	AccountAddress   string            `json:"accountAddress,omitempty"`
	PublicKey        string            `json:"publicKey"`
	PrivateKey       string            `json:"privateKey,omitempty"`
	SealedPrivateKey *keyseal.Envelope `json:"sealedPrivateKey,omitempty"`
	Status           string            `json:"status"`
	TransactionID    string            `json:"transactionId,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// AccountCreatedEvent is the broadcast payload for a created account. It has
// no private key field.
type AccountCreatedEvent struct {
	AccountAddress string `json:"accountAddress,omitempty"`
	PublicKey      string `json:"publicKey"`
	Status         string `json:"status"`
	TransactionID  string `json:"transactionId,omitempty"`
	Error          string `json:"error,omitempty"`
}

type BalanceResult struct {
	AccountAddress string `json:"accountAddress"`
	TokenID        string `json:"tokenId,omitempty"`
	// Balance is in tinybars, or in the token's smallest unit.
	Balance int64  `json:"balance"`
	Error   string `json:"error,omitempty"`
}

type TransferBatchResult struct {
	BatchID           string           `json:"batchId"`
	Network           string           `json:"network"`
	Results           []TransferResult `json:"results"`
	BroadcastFailures int              `json:"broadcastFailures"`
}

type AssociateBatchResult struct {
	BatchID           string            `json:"batchId"`
	Network           string            `json:"network"`
	Results           []AssociateResult `json:"results"`
	BroadcastFailures int               `json:"broadcastFailures"`
}

type CreateAccountsBatchResult struct {
	BatchID           string                `json:"batchId"`
	Network           string                `json:"network"`
	Results           []CreateAccountResult `json:"results"`
	BroadcastFailures int                   `json:"broadcastFailures"`
}

type BalanceBatchResult struct {
	BatchID           string          `json:"batchId"`
	Network           string          `json:"network"`
	Results           []BalanceResult `json:"results"`
	BroadcastFailures int             `json:"broadcastFailures"`
}
