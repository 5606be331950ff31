package batch

import (
	"context"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/ledger"
)

// CheckBalance reads the HBAR balance of every account, or its balance of
// request.TokenID when set. Queries run concurrently up to
// Config.BalanceConcurrency; results keep input order.
func (s *Service) CheckBalance(ctx context.Context, request BalanceRequest) (BalanceBatchResult, error) {
	plan, err := s.validateBalance(request)
	if err != nil {
		return BalanceBatchResult{}, err
	}

	r := s.newRun(broadcast.KindBalance, plan.credentials.Network, len(plan.accounts))
	result := BalanceBatchResult{
		BatchID: r.id,
		Network: r.network,
	}

	l, closeLedger, err := r.open(ctx, plan.credentials)
	if err != nil {
		return result, err
	}
	defer closeLedger()

	items := make([]BalanceResult, len(plan.accounts))
	done := make([]bool, len(plan.accounts))
	errs := make([]error, len(plan.accounts))

	group := new(errgroup.Group)
	group.SetLimit(s.config.BalanceConcurrency)
	for index, accountID := range plan.accounts {
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			balance, queryErr := queryBalance(ctx, l, accountID, plan.tokenID)
			if interrupted(ctx, queryErr) {
				return nil
			}

			item := BalanceResult{AccountAddress: accountID.String(), Balance: balance}
			if plan.tokenID != nil {
				item.TokenID = plan.tokenID.String()
			}
			if queryErr != nil {
				item.Balance = 0
				item.Error = queryErr.Error()
			}
			items[index] = item
			errs[index] = queryErr
			done[index] = true
			return nil
		})
	}
	_ = group.Wait()

	// Only the unbroken prefix is reported so results stay in input order.
	completed := 0
	for completed < len(done) && done[completed] {
		completed++
	}
	result.Results = items[:completed]

	for index, item := range result.Results {
		status := "OK"
		if errs[index] != nil {
			status = StatusFailed
		}
		r.itemDone(index+1, status, errs[index])
		r.publish(ctx, index+1, item)
	}

	result.BroadcastFailures = r.failures
	return result, r.finish(ctx, completed)
}

func queryBalance(ctx context.Context, l ledger.Ledger, accountID hedera.AccountID, tokenID *hedera.TokenID) (int64, error) {
	if tokenID == nil {
		return l.HbarBalance(ctx, accountID)
	}
	return l.TokenBalance(ctx, accountID, *tokenID)
}
