package batch

import (
	"context"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/keyseal"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
)

// MultipleCreateAccount creates request.NumberOfAccounts accounts, each with
// a freshly generated key. Private keys appear only in the returned results,
// sealed when a recipient public key is given.
func (s *Service) MultipleCreateAccount(ctx context.Context, request CreateAccountsRequest) (CreateAccountsBatchResult, error) {
	plan, err := s.validateCreate(request)
	if err != nil {
		return CreateAccountsBatchResult{}, err
	}

	r := s.newRun(broadcast.KindCreate, plan.credentials.Network, plan.count)
	result := CreateAccountsBatchResult{
		BatchID: r.id,
		Network: r.network,
		Results: make([]CreateAccountResult, 0, plan.count),
	}

	l, closeLedger, err := r.open(ctx, plan.credentials)
	if err != nil {
		return result, err
	}
	defer closeLedger()

	for index := 0; index < plan.count; index++ {
		if ctx.Err() != nil {
			break
		}

		item, itemErr := s.createAccount(ctx, l, plan)
		if interrupted(ctx, itemErr) {
			break
		}
		r.itemDone(index+1, item.Status, itemErr)

		result.Results = append(result.Results, item)
		r.publish(ctx, index+1, AccountCreatedEvent{
			AccountAddress: item.AccountAddress,
			PublicKey:      item.PublicKey,
			Status:         item.Status,
			TransactionID:  item.TransactionID,
			Error:          item.Error,
		})
	}

	result.BroadcastFailures = r.failures
	return result, r.finish(ctx, len(result.Results))
}

func (s *Service) createAccount(ctx context.Context, l ledger.Ledger, plan createPlan) (CreateAccountResult, error) {
	privateKey, err := generateKey(plan.keyType)
	if err != nil {
		err = fmt.Errorf("failed to generate %s key: %w", plan.keyType, err)
		return CreateAccountResult{Status: StatusFailed, Error: err.Error()}, err
	}
	item := CreateAccountResult{PublicKey: privateKey.PublicKey().String()}

	receipt, err := l.CreateAccount(ctx, ledger.AccountCreateParams{
		PublicKey:                     privateKey.PublicKey(),
		InitialBalance:                plan.initialBalance,
		MaxAutomaticTokenAssociations: plan.maxAutoAssociation,
		AccountMemo:                   plan.accountMemo,
	})
	if err != nil {
		item.Status, item.Error = itemStatus(err)
		item.TransactionID = ledger.TransactionIDFromError(err)
		return item, err
	}

	item.AccountAddress = receipt.AccountID
	item.Status = receipt.Status
	item.TransactionID = receipt.TransactionID

	if plan.recipientPublicKey == "" {
		item.PrivateKey = privateKey.String()
		return item, nil
	}

	envelope, err := keyseal.Seal(plan.recipientPublicKey, []byte(privateKey.String()), receipt.AccountID)
	if err != nil {
		err = fmt.Errorf("account %s created but its key could not be sealed: %w", receipt.AccountID, err)
		item.Error = err.Error()
		return item, err
	}
	item.SealedPrivateKey = &envelope
	return item, nil
}

func generateKey(keyType string) (hedera.PrivateKey, error) {
	if keyType == KeyTypeECDSA {
		return hedera.PrivateKeyGenerateEcdsa()
	}
	return hedera.PrivateKeyGenerateEd25519()
}
