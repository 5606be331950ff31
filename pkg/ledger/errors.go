package ledger

import (
	"errors"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const statusSuccess = "SUCCESS"

// StatusError carries the ledger status name of a failed precheck or receipt.
type StatusError struct {
	Status        string
	TransactionID string
	Err           error
}

func (e *StatusError) Error() string {
	if e.TransactionID == "" {
		return fmt.Sprintf("ledger status %s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("ledger status %s for transaction %s: %v", e.Status, e.TransactionID, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusFromError extracts the ledger status name from err, if it carries one.
func StatusFromError(err error) (string, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status, true
	}
	return "", false
}

// TransactionIDFromError extracts the transaction ID from err, if known.
func TransactionIDFromError(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.TransactionID
	}
	return ""
}

// classifyError maps SDK precheck and receipt failures onto StatusError and
// wraps everything else with the failing step.
func classifyError(step string, err error) error {
	if err == nil {
		return nil
	}

	var precheck hedera.ErrHederaPreCheckStatus
	if errors.As(err, &precheck) {
		return &StatusError{
			Status:        precheck.Status.String(),
			TransactionID: transactionIDString(precheck.TxID),
			Err:           fmt.Errorf("%s: %w", step, err),
		}
	}

	var receipt hedera.ErrHederaReceiptStatus
	if errors.As(err, &receipt) {
		return &StatusError{
			Status:        receipt.Status.String(),
			TransactionID: transactionIDString(receipt.TxID),
			Err:           fmt.Errorf("%s: %w", step, err),
		}
	}

	return fmt.Errorf("%s: %w", step, err)
}

func transactionIDString(id hedera.TransactionID) string {
	if id.AccountID == nil || id.ValidStart == nil {
		return ""
	}
	return id.String()
}
