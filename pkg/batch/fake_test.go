package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/inmemory"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
)

type fakeLedger struct {
	mu sync.Mutex

	network  string
	operator hedera.AccountID

	transfers    []ledger.TransferParams
	associations []ledger.AssociateParams
	creates      []ledger.AccountCreateParams

	// failures maps an account ID to the error its calls return.
	failures      map[string]error
	hbarBalances  map[string]int64
	tokenBalances map[string]int64
	nextAccount   uint64
	calls         int
	onCall        func(call int)
	closed        bool
}

var _ ledger.Ledger = (*fakeLedger)(nil)

func (f *fakeLedger) Network() string            { return f.network }
func (f *fakeLedger) Operator() hedera.AccountID { return f.operator }

func (f *fakeLedger) record(ctx context.Context, accountID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.calls++
	call := f.calls
	hook := f.onCall
	err := f.failures[accountID]
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return err
}

func (f *fakeLedger) TransferHbar(ctx context.Context, params ledger.TransferParams) (ledger.Receipt, error) {
	if err := f.record(ctx, params.To.String()); err != nil {
		return ledger.Receipt{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, params)
	return ledger.Receipt{Status: "SUCCESS", TransactionID: fmt.Sprintf("0.0.2@%d.0", len(f.transfers))}, nil
}

func (f *fakeLedger) AssociateToken(ctx context.Context, params ledger.AssociateParams) (ledger.Receipt, error) {
	if err := f.record(ctx, params.AccountID.String()); err != nil {
		return ledger.Receipt{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.associations = append(f.associations, params)
	return ledger.Receipt{Status: "SUCCESS", TransactionID: fmt.Sprintf("0.0.2@%d.1", len(f.associations))}, nil
}

func (f *fakeLedger) CreateAccount(ctx context.Context, params ledger.AccountCreateParams) (ledger.Receipt, error) {
	if err := f.record(ctx, "create"); err != nil {
		return ledger.Receipt{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, params)
	f.nextAccount++
	return ledger.Receipt{
		Status:        "SUCCESS",
		TransactionID: fmt.Sprintf("0.0.2@%d.2", len(f.creates)),
		AccountID:     fmt.Sprintf("0.0.%d", 9000+f.nextAccount),
	}, nil
}

func (f *fakeLedger) HbarBalance(ctx context.Context, accountID hedera.AccountID) (int64, error) {
	if err := f.record(ctx, accountID.String()); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hbarBalances[accountID.String()], nil
}

func (f *fakeLedger) TokenBalance(ctx context.Context, accountID hedera.AccountID, tokenID hedera.TokenID) (int64, error) {
	if err := f.record(ctx, accountID.String()); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenBalances[accountID.String()+"/"+tokenID.String()], nil
}

func (f *fakeLedger) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeFactory struct {
	ledger      *fakeLedger
	err         error
	network     string
	opened      int
	credentials ledger.Credentials
}

func (f *fakeFactory) Open(_ context.Context, credentials ledger.Credentials) (ledger.Ledger, error) {
	f.opened++
	f.credentials = credentials
	if f.err != nil {
		return nil, f.err
	}
	f.ledger.network = credentials.Network
	if f.network != "" {
		f.ledger.network = f.network
	}
	f.ledger.operator = credentials.AccountID
	return f.ledger, nil
}

var errInsufficientBalance = &ledger.StatusError{
	Status:        "INSUFFICIENT_PAYER_BALANCE",
	TransactionID: "0.0.2@99.0",
	Err:           errors.New("failed to execute transfer"),
}

type harness struct {
	service   *Service
	factory   *fakeFactory
	ledger    *fakeLedger
	publisher *inmemory.Publisher
	operator  Credentials
}

func newHarness(t *testing.T, config Config) *harness {
	t.Helper()

	key, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("failed to generate operator key: %v", err)
	}

	fake := &fakeLedger{failures: map[string]error{}}
	factory := &fakeFactory{ledger: fake}
	publisher := inmemory.New()

	service, err := NewService(factory, publisher, zerolog.Nop(), config)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	return &harness{
		service:   service,
		factory:   factory,
		ledger:    fake,
		publisher: publisher,
		operator: Credentials{
			AccountAddress: "0.0.2",
			PrivateKey:     key.String(),
			Network:        shared.NetworkTestnet,
		},
	}
}
