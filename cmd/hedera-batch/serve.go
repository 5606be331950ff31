package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/hedera-batch-go/internal/api"
	"github.com/hashgraph-online/hedera-batch-go/internal/app"
)

func newServeCmd(options *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the batch API and the websocket event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := options.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			application, err := app.New(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer application.Close()

			server := api.NewServer(api.Options{
				Service:    application.Service,
				Hub:        application.Hub,
				Publishers: application.Fanout.Names(),
				Logger:     logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() { errs <- server.Start(cfg.HTTPAddr) }()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env BATCH_HTTP_ADDR)")
	return cmd
}
