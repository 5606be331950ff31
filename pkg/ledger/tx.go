package ledger

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// BuildTransferTx builds a two-legged HBAR transfer from the operator to params.To.
func BuildTransferTx(operator hedera.AccountID, params TransferParams) (*hedera.TransferTransaction, error) {
	if params.Amount.AsTinybar() <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if params.To.String() == operator.String() {
		return nil, fmt.Errorf("cannot transfer to the operator account %s", operator.String())
	}

	transaction := hedera.NewTransferTransaction().
		AddHbarTransfer(operator, hedera.HbarFromTinybar(-params.Amount.AsTinybar())).
		AddHbarTransfer(params.To, params.Amount)

	if memo := strings.TrimSpace(params.TransactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	return transaction, nil
}

// BuildAssociateTx builds an unfrozen token association for one account.
func BuildAssociateTx(params AssociateParams) (*hedera.TokenAssociateTransaction, error) {
	if len(params.TokenIDs) == 0 {
		return nil, fmt.Errorf("at least one token ID is required")
	}

	return hedera.NewTokenAssociateTransaction().
		SetAccountID(params.AccountID).
		SetTokenIDs(params.TokenIDs...), nil
}

// BuildAccountCreateTx builds an account creation keyed to params.PublicKey.
func BuildAccountCreateTx(params AccountCreateParams) (*hedera.AccountCreateTransaction, error) {
	if params.PublicKey.String() == "" {
		return nil, fmt.Errorf("public key is required")
	}
	if params.InitialBalance.AsTinybar() < 0 {
		return nil, fmt.Errorf("initial balance cannot be negative")
	}

	transaction := hedera.NewAccountCreateTransaction().
		SetKey(params.PublicKey).
		SetInitialBalance(params.InitialBalance)

	if params.MaxAutomaticTokenAssociations != nil {
		transaction.SetMaxAutomaticTokenAssociations(*params.MaxAutomaticTokenAssociations)
	}
	if memo := strings.TrimSpace(params.AccountMemo); memo != "" {
		transaction.SetAccountMemo(memo)
	}
	if memo := strings.TrimSpace(params.TransactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	return transaction, nil
}
