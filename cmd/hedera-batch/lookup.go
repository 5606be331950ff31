package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/hedera-batch-go/internal/config"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/hcs"
	"github.com/hashgraph-online/hedera-batch-go/pkg/mirror"
)

func newMirrorClient(cfg config.Config) (*mirror.Client, error) {
	return mirror.NewClient(mirror.Config{
		Network: cfg.Network,
		BaseURL: cfg.MirrorBaseURL,
		APIKey:  cfg.MirrorAPIKey,
	})
}

func newTxCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <transaction-id>",
		Short: "Look up a transaction record on the mirror node",
		Long: `Look up a transaction record on the mirror node. The ID may be in SDK form
(0.0.2@1700000000.000000001), as printed in batch results, or in mirror node
form (0.0.2-1700000000-000000001).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := options.load()
			if err != nil {
				return err
			}
			client, err := newMirrorClient(cfg)
			if err != nil {
				return err
			}

			transaction, err := client.GetTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if transaction == nil {
				return fmt.Errorf("transaction %s not found on %s", args[0], cfg.Network)
			}
			return writeJSON(cmd.OutOrStdout(), transaction)
		},
	}
}

func newAccountCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "account <account-id>",
		Short: "Show an account's mirror node record, including balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := options.load()
			if err != nil {
				return err
			}
			client, err := newMirrorClient(cfg)
			if err != nil {
				return err
			}

			account, err := client.GetAccount(cmd.Context(), args[0])
			if mirror.IsNotFound(err) {
				return fmt.Errorf("account %s not found on %s", args[0], cfg.Network)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), account)
		},
	}
}

func newEventsCmd(options *globalOptions) *cobra.Command {
	var (
		topicID string
		after   int64
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Replay batch events published to an HCS topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := options.load()
			if err != nil {
				return err
			}
			if topicID == "" {
				topicID = cfg.HCS.TopicID
			}
			if topicID == "" {
				return fmt.Errorf("--topic is required when BROADCAST_HCS_TOPIC_ID is unset")
			}

			client, err := newMirrorClient(cfg)
			if err != nil {
				return err
			}
			if err := hcs.VerifyTopic(cmd.Context(), client, topicID); err != nil {
				return err
			}

			replayed, err := hcs.Replay(cmd.Context(), client, topicID, after, limit)
			if err != nil {
				return err
			}
			for _, entry := range replayed {
				if err := writeJSON(cmd.OutOrStdout(), entry); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topicID, "topic", "", "HCS topic ID (env BROADCAST_HCS_TOPIC_ID)")
	cmd.Flags().Int64Var(&after, "after", 0, "only events after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of messages to read")
	return cmd
}
