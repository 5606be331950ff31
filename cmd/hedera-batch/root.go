package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/hedera-batch-go/internal/config"
	"github.com/hashgraph-online/hedera-batch-go/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalOptions struct {
	network   string
	account   string
	key       string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	options := &globalOptions{}

	root := &cobra.Command{
		Use:   "hedera-batch",
		Short: "Batch HBAR transfers, token associations, account creation and balance checks",
		Long: `hedera-batch runs batches of Hedera operations for one operator account and
broadcasts every per-item result to the configured publishers (websocket hub,
NATS, RabbitMQ, Kafka, Socket.IO, HCS topic).

Configuration comes from the environment (and a .env file); the global flags
below override it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	flags := root.PersistentFlags()
	flags.StringVar(&options.network, "network", "", "network: mainnet, testnet or previewnet (env HEDERA_NETWORK)")
	flags.StringVar(&options.account, "account", "", "operator account ID (env HEDERA_ACCOUNT_ID)")
	flags.StringVar(&options.key, "key", "", "operator private key (env HEDERA_PRIVATE_KEY)")
	flags.StringVar(&options.logLevel, "log-level", "", "log level (env LOG_LEVEL)")
	flags.StringVar(&options.logFormat, "log-format", "", "log format: json or console (env LOG_FORMAT)")

	root.AddCommand(
		newServeCmd(options),
		newTransferCmd(options),
		newAssociateCmd(options),
		newCreateAccountsCmd(options),
		newBalanceCmd(options),
		newTxCmd(options),
		newAccountCmd(options),
		newEventsCmd(options),
		newKeysCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads the environment and applies flag overrides.
func (o *globalOptions) load() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	if o.network != "" {
		cfg.Network = o.network
	}
	if o.account != "" {
		cfg.Operator.AccountID = o.account
	}
	if o.key != "" {
		cfg.Operator.PrivateKey = o.key
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), version+"\n")
			return err
		},
	}
}
