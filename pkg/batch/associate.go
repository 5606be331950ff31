package batch

import (
	"context"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
)

// MultipleAssociate associates every token with every account, one
// transaction per pair, iterating accounts in the outer loop.
func (s *Service) MultipleAssociate(ctx context.Context, request AssociateRequest) (AssociateBatchResult, error) {
	plan, err := s.validateAssociate(request)
	if err != nil {
		return AssociateBatchResult{}, err
	}

	total := len(plan.accounts) * len(plan.tokens)
	r := s.newRun(broadcast.KindAssociate, plan.credentials.Network, total)
	result := AssociateBatchResult{
		BatchID: r.id,
		Network: r.network,
		Results: make([]AssociateResult, 0, total),
	}

	l, closeLedger, err := r.open(ctx, plan.credentials)
	if err != nil {
		return result, err
	}
	defer closeLedger()

	sequence := 0
accounts:
	for _, accountID := range plan.accounts {
		var accountKey *hedera.PrivateKey
		if key, ok := plan.accountKeys[accountID.String()]; ok {
			accountKey = &key
		}

		for _, tokenID := range plan.tokens {
			if ctx.Err() != nil {
				break accounts
			}

			receipt, associateErr := l.AssociateToken(ctx, ledger.AssociateParams{
				AccountID:  accountID,
				TokenIDs:   []hedera.TokenID{tokenID},
				AccountKey: accountKey,
			})
			if interrupted(ctx, associateErr) {
				break accounts
			}

			sequence++
			item := AssociateResult{
				ReceivedAddress: accountID.String(),
				TokenID:         tokenID.String(),
				Status:          receipt.Status,
				TransactionID:   receipt.TransactionID,
			}
			if associateErr != nil {
				item.Status, item.Error = itemStatus(associateErr)
				item.TransactionID = ledger.TransactionIDFromError(associateErr)
			}
			r.itemDone(sequence, item.Status, associateErr)

			result.Results = append(result.Results, item)
			r.publish(ctx, sequence, item)
		}
	}

	result.BroadcastFailures = r.failures
	return result, r.finish(ctx, len(result.Results))
}
