// Package api serves the batch operations over HTTP with echo.
//
//	POST /api/v1/transfers     MultipleTransfer
//	POST /api/v1/associations  MultipleAssociate
//	POST /api/v1/accounts      MultipleCreateAccount
//	POST /api/v1/balances      CheckBalance
//	GET  /ws?topics=a,b.*      websocket stream of broadcast events; kind names such as
//	                           transfer also work as filters
//	GET  /healthz              liveness and publisher summary
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hashgraph-online/hedera-batch-go/pkg/batch"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/hub"
)

// BatchService is the subset of *batch.Service the handlers call.
type BatchService interface {
	MultipleTransfer(ctx context.Context, request batch.TransferRequest) (batch.TransferBatchResult, error)
	MultipleAssociate(ctx context.Context, request batch.AssociateRequest) (batch.AssociateBatchResult, error)
	MultipleCreateAccount(ctx context.Context, request batch.CreateAccountsRequest) (batch.CreateAccountsBatchResult, error)
	CheckBalance(ctx context.Context, request batch.BalanceRequest) (batch.BalanceBatchResult, error)
}

type Options struct {
	Service BatchService
	// Hub backs /ws. The route is not registered when nil.
	Hub *hub.Hub
	// Publishers lists the active broadcast transports for /healthz.
	Publishers []string
	Logger     zerolog.Logger
}

type Server struct {
	Echo       *echo.Echo
	service    BatchService
	hub        *hub.Hub
	publishers []string
	logger     zerolog.Logger
}

func NewServer(options Options) *Server {
	s := &Server{
		Echo:       echo.New(),
		service:    options.Service,
		hub:        options.Hub,
		publishers: options.Publishers,
		logger:     options.Logger.With().Str("component", "api").Logger(),
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Info()
			if v.Error != nil {
				event = s.logger.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request handled")
			return nil
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/healthz", s.getHealth)

	v1 := s.Echo.Group("/api/v1")
	v1.POST("/transfers", s.postTransfers)
	v1.POST("/associations", s.postAssociations)
	v1.POST("/accounts", s.postAccounts)
	v1.POST("/balances", s.postBalances)

	if s.hub != nil {
		s.Echo.GET("/ws", echo.WrapHandler(http.HandlerFunc(s.hub.ServeWS)))
	}
}

// Start blocks serving addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("http server listening")
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Warn().Msg("shutting down http server")
	if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
