package batch

import (
	"context"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
)

// MultipleTransfer sends request.Amount HBAR from the operator to every
// receiver in order, one transaction per receiver.
func (s *Service) MultipleTransfer(ctx context.Context, request TransferRequest) (TransferBatchResult, error) {
	plan, err := s.validateTransfer(request)
	if err != nil {
		return TransferBatchResult{}, err
	}

	r := s.newRun(broadcast.KindTransfer, plan.credentials.Network, len(plan.receivers))
	result := TransferBatchResult{
		BatchID: r.id,
		Network: r.network,
		Results: make([]TransferResult, 0, len(plan.receivers)),
	}

	l, closeLedger, err := r.open(ctx, plan.credentials)
	if err != nil {
		return result, err
	}
	defer closeLedger()

	for index, receiver := range plan.receivers {
		if ctx.Err() != nil {
			break
		}

		receipt, transferErr := l.TransferHbar(ctx, ledger.TransferParams{
			To:              receiver,
			Amount:          plan.amount,
			TransactionMemo: plan.memo,
		})
		if interrupted(ctx, transferErr) {
			break
		}

		item := TransferResult{
			ReceivedAddress: receiver.String(),
			Status:          receipt.Status,
			TransactionID:   receipt.TransactionID,
		}
		if transferErr != nil {
			item.Status, item.Error = itemStatus(transferErr)
			item.TransactionID = ledger.TransactionIDFromError(transferErr)
		}
		r.itemDone(index+1, item.Status, transferErr)

		result.Results = append(result.Results, item)
		r.publish(ctx, index+1, item)
	}

	result.BroadcastFailures = r.failures
	return result, r.finish(ctx, len(result.Results))
}
