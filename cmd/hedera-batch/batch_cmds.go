package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/hedera-batch-go/internal/app"
	"github.com/hashgraph-online/hedera-batch-go/pkg/batch"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/inmemory"
)

// runBatch builds the service without the websocket hub, runs fn and prints
// its result. With printEvents the broadcast events follow on stderr.
func runBatch(cmd *cobra.Command, options *globalOptions, printEvents bool, fn func(context.Context, *batch.Service) (any, error)) error {
	cfg, logger, err := options.load()
	if err != nil {
		return err
	}
	cfg.Hub.Enabled = false

	extra := map[string]broadcast.Publisher{}
	recorder := inmemory.New()
	if printEvents {
		extra["print"] = recorder
	}

	application, err := app.New(cfg, logger, extra)
	if err != nil {
		return err
	}
	defer application.Close()

	result, runErr := fn(cmd.Context(), application.Service)
	if batch.IsValidationError(runErr) {
		return runErr
	}
	if runErr == nil || broadcast.IsContextError(runErr) {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	}
	if printEvents {
		for _, event := range recorder.Events() {
			if err := writeJSON(cmd.ErrOrStderr(), event); err != nil {
				return err
			}
		}
	}
	return runErr
}

func parseAmount(flag string, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--%s: %q is not a decimal amount", flag, raw)
	}
	return amount, nil
}

func newTransferCmd(options *globalOptions) *cobra.Command {
	var (
		receivers   []string
		amount      string
		memo        string
		printEvents bool
	)

	cmd := &cobra.Command{
		Use:     "transfer",
		Short:   "Send the same HBAR amount to many accounts",
		Example: "  hedera-batch transfer --amount 1.5 --to 0.0.1001,0.0.1002 --memo payroll",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			return runBatch(cmd, options, printEvents, func(ctx context.Context, service *batch.Service) (any, error) {
				return service.MultipleTransfer(ctx, batch.TransferRequest{
					Amount:            parsed,
					ReceivedAddresses: receivers,
					Memo:              memo,
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&receivers, "to", nil, "receiver account IDs")
	cmd.Flags().StringVar(&amount, "amount", "", "HBAR amount per receiver, e.g. 0.5")
	cmd.Flags().StringVar(&memo, "memo", "", "transaction memo")
	cmd.Flags().BoolVar(&printEvents, "print-events", false, "print broadcast events to stderr")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newAssociateCmd(options *globalOptions) *cobra.Command {
	var (
		accounts    []string
		tokens      []string
		accountKeys map[string]string
		printEvents bool
	)

	cmd := &cobra.Command{
		Use:     "associate",
		Short:   "Associate tokens with many accounts",
		Example: "  hedera-batch associate --accounts 0.0.1001,0.0.1002 --tokens 0.0.5005 --account-key 0.0.1001=302e0201...",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, options, printEvents, func(ctx context.Context, service *batch.Service) (any, error) {
				return service.MultipleAssociate(ctx, batch.AssociateRequest{
					Tokens:              tokens,
					AssociatedAddresses: accounts,
					AccountKeys:         accountKeys,
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&accounts, "accounts", nil, "account IDs to associate")
	cmd.Flags().StringSliceVar(&tokens, "tokens", nil, "token IDs to associate")
	cmd.Flags().StringToStringVar(&accountKeys, "account-key", nil, "account=privateKey pairs that co-sign their association")
	cmd.Flags().BoolVar(&printEvents, "print-events", false, "print broadcast events to stderr")
	_ = cmd.MarkFlagRequired("accounts")
	_ = cmd.MarkFlagRequired("tokens")
	return cmd
}

func newCreateAccountsCmd(options *globalOptions) *cobra.Command {
	var (
		count              int
		initialBalance     string
		keyType            string
		maxAutoAssociation int32
		accountMemo        string
		recipientPublicKey string
		printEvents        bool
	)

	cmd := &cobra.Command{
		Use:   "create-accounts",
		Short: "Create many accounts with freshly generated keys",
		Long: `Create accounts with freshly generated keys. Private keys are printed with
the result and never broadcast. Pass --recipient-public-key (see "keys
generate") to receive them sealed instead of in the clear.`,
		Example: `  hedera-batch create-accounts --count 5 --initial-balance 1 --recipient-public-key 02ab...`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			balance, err := parseAmount("initial-balance", initialBalance)
			if err != nil {
				return err
			}
			request := batch.CreateAccountsRequest{
				NumberOfAccounts:   count,
				InitialBalance:     balance,
				KeyType:            keyType,
				AccountMemo:        accountMemo,
				RecipientPublicKey: recipientPublicKey,
			}
			if cmd.Flags().Changed("max-auto-associations") {
				request.MaxAutomaticTokenAssociations = &maxAutoAssociation
			}
			return runBatch(cmd, options, printEvents, func(ctx context.Context, service *batch.Service) (any, error) {
				return service.MultipleCreateAccount(ctx, request)
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "number of accounts to create")
	cmd.Flags().StringVar(&initialBalance, "initial-balance", "0", "initial HBAR balance per account")
	cmd.Flags().StringVar(&keyType, "key-type", batch.KeyTypeED25519, "key type: ed25519 or ecdsa")
	cmd.Flags().Int32Var(&maxAutoAssociation, "max-auto-associations", 0, "maximum automatic token associations, -1 for unlimited")
	cmd.Flags().StringVar(&accountMemo, "memo", "", "account memo")
	cmd.Flags().StringVar(&recipientPublicKey, "recipient-public-key", "", "hex secp256k1 key to seal private keys for")
	cmd.Flags().BoolVar(&printEvents, "print-events", false, "print broadcast events to stderr")
	return cmd
}

func newBalanceCmd(options *globalOptions) *cobra.Command {
	var (
		accounts    []string
		tokenID     string
		printEvents bool
	)

	cmd := &cobra.Command{
		Use:     "balance",
		Short:   "Check HBAR or token balances of many accounts",
		Example: "  hedera-batch balance --accounts 0.0.1001,0.0.1002 --token 0.0.5005",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, options, printEvents, func(ctx context.Context, service *batch.Service) (any, error) {
				return service.CheckBalance(ctx, batch.BalanceRequest{
					AccountAddresses: accounts,
					TokenID:          tokenID,
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&accounts, "accounts", nil, "account IDs to check")
	cmd.Flags().StringVar(&tokenID, "token", "", "token ID; HBAR when omitted")
	cmd.Flags().BoolVar(&printEvents, "print-events", false, "print broadcast events to stderr")
	_ = cmd.MarkFlagRequired("accounts")
	return cmd
}
