package ledger

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

func TestLedgerIntegration_CreateFundAndQuery(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") != "1" {
		t.Skip("set RUN_INTEGRATION=1 to run live integration tests")
	}

	operatorConfig, err := shared.OperatorConfigFromEnv()
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	if strings.EqualFold(operatorConfig.Network, shared.NetworkMainnet) && os.Getenv("ALLOW_MAINNET_INTEGRATION") != "1" {
		t.Skip("resolved mainnet credentials; set ALLOW_MAINNET_INTEGRATION=1 to allow live mainnet writes")
	}

	operatorID, err := shared.ParseAccountID(operatorConfig.AccountID)
	if err != nil {
		t.Fatalf("invalid operator account: %v", err)
	}
	operatorKey, err := shared.ParsePrivateKey(operatorConfig.PrivateKey)
	if err != nil {
		t.Fatalf("invalid operator key: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	opened, err := NewHederaFactory(FactoryConfig{}).Open(ctx, Credentials{
		Network:    operatorConfig.Network,
		AccountID:  operatorID,
		PrivateKey: operatorKey,
	})
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer opened.Close()

	newKey, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	created, err := opened.CreateAccount(ctx, AccountCreateParams{
		PublicKey:   newKey.PublicKey(),
		AccountMemo: "hedera-batch-go integration",
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	t.Logf("created account %s tx=%s", created.AccountID, created.TransactionID)

	newAccount, err := shared.ParseAccountID(created.AccountID)
	if err != nil {
		t.Fatalf("receipt carried an invalid account ID: %v", err)
	}

	transfer, err := opened.TransferHbar(ctx, TransferParams{
		To:     newAccount,
		Amount: hedera.HbarFromTinybar(1_000),
	})
	if err != nil {
		t.Fatalf("failed to transfer: %v", err)
	}
	if transfer.Status != "SUCCESS" {
		t.Fatalf("unexpected transfer status %s", transfer.Status)
	}

	balance, err := opened.HbarBalance(ctx, newAccount)
	if err != nil {
		t.Fatalf("failed to query balance: %v", err)
	}
	if balance != 1_000 {
		t.Fatalf("expected 1000 tinybars, got %d", balance)
	}
}
