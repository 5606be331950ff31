package ledger

import (
	"context"
	"fmt"

	"github.com/hashgraph-online/hedera-batch-go/pkg/mirror"
	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

type HederaFactory struct {
	config FactoryConfig
}

// NewHederaFactory creates a Factory backed by the Hedera SDK and the mirror node.
func NewHederaFactory(config FactoryConfig) *HederaFactory {
	return &HederaFactory{config: config}
}

// Open builds an SDK client bound to the operator plus a mirror client for
// the same network.
func (f *HederaFactory) Open(ctx context.Context, credentials Credentials) (Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	network, err := shared.NormalizeNetwork(credentials.Network)
	if err != nil {
		return nil, err
	}
	if credentials.PrivateKey.String() == "" {
		return nil, fmt.Errorf("operator private key is required")
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network:    network,
		BaseURL:    f.config.MirrorBaseURLs[network],
		APIKey:     f.config.MirrorAPIKey,
		HTTPClient: f.config.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	hederaClient, err := shared.NewOperatorClient(network, credentials.AccountID, credentials.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &HederaLedger{
		network:      network,
		operatorID:   credentials.AccountID,
		hederaClient: hederaClient,
		mirrorClient: mirrorClient,
	}, nil
}

// HederaLedger submits transactions through one SDK client. It is not safe
// for concurrent transaction submission; balance reads may run in parallel.
type HederaLedger struct {
	network      string
	operatorID   hedera.AccountID
	hederaClient *hedera.Client
	mirrorClient *mirror.Client
}

func (l *HederaLedger) Network() string {
	return l.network
}

func (l *HederaLedger) Operator() hedera.AccountID {
	return l.operatorID
}

// TransferHbar moves params.Amount from the operator to params.To and waits
// for the receipt.
func (l *HederaLedger) TransferHbar(ctx context.Context, params TransferParams) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	transaction, err := BuildTransferTx(l.operatorID, params)
	if err != nil {
		return Receipt{}, err
	}

	response, err := transaction.Execute(l.hederaClient)
	if err != nil {
		return Receipt{}, classifyError("failed to execute transfer transaction", err)
	}
	return l.awaitReceipt(response, "transfer")
}

// AssociateToken associates params.TokenIDs with params.AccountID. The
// operator always signs; the account key signs too when supplied.
func (l *HederaLedger) AssociateToken(ctx context.Context, params AssociateParams) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	transaction, err := BuildAssociateTx(params)
	if err != nil {
		return Receipt{}, err
	}

	frozen, err := transaction.FreezeWith(l.hederaClient)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to freeze token associate transaction: %w", err)
	}
	if params.AccountKey != nil {
		frozen = frozen.Sign(*params.AccountKey)
	}

	response, err := frozen.Execute(l.hederaClient)
	if err != nil {
		return Receipt{}, classifyError("failed to execute token associate transaction", err)
	}
	return l.awaitReceipt(response, "token associate")
}

// CreateAccount creates an account keyed to params.PublicKey and returns its ID
// in the receipt.
func (l *HederaLedger) CreateAccount(ctx context.Context, params AccountCreateParams) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	transaction, err := BuildAccountCreateTx(params)
	if err != nil {
		return Receipt{}, err
	}

	response, err := transaction.Execute(l.hederaClient)
	if err != nil {
		return Receipt{}, classifyError("failed to execute account create transaction", err)
	}

	receipt, err := response.GetReceipt(l.hederaClient)
	if err != nil {
		return Receipt{}, classifyError("failed to retrieve account create receipt", err)
	}
	result := Receipt{
		Status:        receipt.Status.String(),
		TransactionID: response.TransactionID.String(),
	}
	if result.Status != statusSuccess {
		return result, &StatusError{
			Status:        result.Status,
			TransactionID: result.TransactionID,
			Err:           fmt.Errorf("account create transaction failed"),
		}
	}
	if receipt.AccountID == nil {
		return result, fmt.Errorf("account create receipt carried no account ID")
	}
	result.AccountID = receipt.AccountID.String()
	return result, nil
}

// HbarBalance returns the account's HBAR balance in tinybars.
func (l *HederaLedger) HbarBalance(ctx context.Context, accountID hedera.AccountID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	balance, err := hedera.NewAccountBalanceQuery().
		SetAccountID(accountID).
		Execute(l.hederaClient)
	if err != nil {
		return 0, classifyError("failed to query account balance", err)
	}
	return balance.Hbars.AsTinybar(), nil
}

// TokenBalance returns the account's balance of tokenID in the token's
// smallest unit, or 0 when the account is not associated with it. It reads
// the mirror node, which can trail consensus by a few seconds.
func (l *HederaLedger) TokenBalance(ctx context.Context, accountID hedera.AccountID, tokenID hedera.TokenID) (int64, error) {
	balance, _, err := l.mirrorClient.GetAccountTokenBalance(ctx, accountID.String(), tokenID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to query token balance: %w", err)
	}
	return balance, nil
}

func (l *HederaLedger) Close() error {
	return l.hederaClient.Close()
}

func (l *HederaLedger) awaitReceipt(response hedera.TransactionResponse, kind string) (Receipt, error) {
	receipt, err := response.GetReceipt(l.hederaClient)
	if err != nil {
		return Receipt{}, classifyError(fmt.Sprintf("failed to retrieve %s receipt", kind), err)
	}

	result := Receipt{
		Status:        receipt.Status.String(),
		TransactionID: response.TransactionID.String(),
	}
	if result.Status != statusSuccess {
		return result, &StatusError{
			Status:        result.Status,
			TransactionID: result.TransactionID,
			Err:           fmt.Errorf("%s transaction failed", kind),
		}
	}
	return result, nil
}
