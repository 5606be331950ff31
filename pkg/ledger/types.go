package ledger

import (
	"context"
	"net/http"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Ledger is the set of network calls a batch makes. One Ledger is bound to a
// single network and operator for the lifetime of a batch.
type Ledger interface {
	Network() string
	Operator() hedera.AccountID
	TransferHbar(ctx context.Context, params TransferParams) (Receipt, error)
	AssociateToken(ctx context.Context, params AssociateParams) (Receipt, error)
	CreateAccount(ctx context.Context, params AccountCreateParams) (Receipt, error)
	HbarBalance(ctx context.Context, accountID hedera.AccountID) (int64, error)
	TokenBalance(ctx context.Context, accountID hedera.AccountID, tokenID hedera.TokenID) (int64, error)
	Close() error
}

// Factory opens a Ledger for a set of operator credentials.
type Factory interface {
	Open(ctx context.Context, credentials Credentials) (Ledger, error)
}

type Credentials struct {
	Network    string
	AccountID  hedera.AccountID
	PrivateKey hedera.PrivateKey
}

// Receipt is the outcome of a submitted transaction. AccountID is only set
// for account creation.
type Receipt struct {
	Status        string
	TransactionID string
	AccountID     string
}

type TransferParams struct {
	To              hedera.AccountID
	Amount          hedera.Hbar
	TransactionMemo string
}

type AssociateParams struct {
	AccountID  hedera.AccountID
	TokenIDs   []hedera.TokenID
	AccountKey *hedera.PrivateKey
}

type AccountCreateParams struct {
	PublicKey                     hedera.PublicKey
	InitialBalance                hedera.Hbar
	MaxAutomaticTokenAssociations *int32
	AccountMemo                   string
	TransactionMemo               string
}

type FactoryConfig struct {
	// MirrorBaseURLs overrides the public mirror node per network name.
	MirrorBaseURLs map[string]string
	MirrorAPIKey   string
	HTTPClient     *http.Client
}
