package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/hedera-batch-go/pkg/keyseal"
	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage recipient keys for sealed account keys",
	}
	cmd.AddCommand(newKeysGenerateCmd(), newKeysOpenCmd())
	return cmd
}

func newKeysGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a secp256k1 recipient key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pair, err := keyseal.GenerateKeyPair()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), pair)
		},
	}
}

func newKeysOpenCmd() *cobra.Command {
	var (
		privateKey string
		file       string
	)

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt a sealedPrivateKey envelope",
		Long: `Decrypt a sealedPrivateKey envelope from a create-accounts result. The
envelope JSON is read from --file, or from stdin when --file is "-" or unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if privateKey == "" {
				privateKey = shared.EnvString("KEYSEAL_PRIVATE_KEY", "")
			}
			if privateKey == "" {
				return fmt.Errorf("--private-key or KEYSEAL_PRIVATE_KEY is required")
			}

			var input io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				handle, err := os.Open(file)
				if err != nil {
					return err
				}
				defer handle.Close()
				input = handle
			}

			var envelope keyseal.Envelope
			if err := json.NewDecoder(input).Decode(&envelope); err != nil {
				return fmt.Errorf("failed to read envelope: %w", err)
			}
			plaintext, err := keyseal.Open(privateKey, envelope)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(plaintext))
			return err
		},
	}

	cmd.Flags().StringVar(&privateKey, "private-key", "", "recipient private key in hex (env KEYSEAL_PRIVATE_KEY)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "envelope JSON file")
	return cmd
}
