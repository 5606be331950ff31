package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hashgraph-online/hedera-batch-go/pkg/batch"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
)

const (
	CodeValidation  = "validation_failed"
	CodeBadRequest  = "bad_request"
	CodeInterrupted = "batch_interrupted"
	CodeInternal    = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply. Result carries the
// partial batch result when a batch was interrupted.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Result  any    `json:"result,omitempty"`
}

type HealthResponse struct {
	Status      string   `json:"status"`
	Publishers  []string `json:"publishers"`
	Subscribers int      `json:"subscribers"`
	Dropped     int64    `json:"dropped"`
}

func (s *Server) getHealth(c echo.Context) error {
	response := HealthResponse{Status: "ok", Publishers: s.publishers}
	if response.Publishers == nil {
		response.Publishers = []string{}
	}
	if s.hub != nil {
		response.Subscribers = s.hub.SubscriberCount()
		response.Dropped = s.hub.Dropped()
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) postTransfers(c echo.Context) error {
	var request batch.TransferRequest
	if err := c.Bind(&request); err != nil {
		return s.badRequest(c, err)
	}
	result, err := s.service.MultipleTransfer(c.Request().Context(), request)
	return s.reply(c, result, err)
}

func (s *Server) postAssociations(c echo.Context) error {
	var request batch.AssociateRequest
	if err := c.Bind(&request); err != nil {
		return s.badRequest(c, err)
	}
	result, err := s.service.MultipleAssociate(c.Request().Context(), request)
	return s.reply(c, result, err)
}

func (s *Server) postAccounts(c echo.Context) error {
	var request batch.CreateAccountsRequest
	if err := c.Bind(&request); err != nil {
		return s.badRequest(c, err)
	}
	result, err := s.service.MultipleCreateAccount(c.Request().Context(), request)
	return s.reply(c, result, err)
}

func (s *Server) postBalances(c echo.Context) error {
	var request batch.BalanceRequest
	if err := c.Bind(&request); err != nil {
		return s.badRequest(c, err)
	}
	result, err := s.service.CheckBalance(c.Request().Context(), request)
	return s.reply(c, result, err)
}

func (s *Server) badRequest(c echo.Context, err error) error {
	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if text, ok := httpErr.Message.(string); ok {
			message = text
		}
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Code: CodeBadRequest, Message: message})
}

// reply maps a batch outcome onto a status code. Validation problems are
// 400, an interrupted batch is 503 with its partial result, anything else is
// 500.
func (s *Server) reply(c echo.Context, result any, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, result)
	}

	var validationErr *batch.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    CodeValidation,
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})
	case broadcast.IsContextError(err):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    CodeInterrupted,
			Message: err.Error(),
			Result:  result,
		})
	default:
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("batch request failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    CodeInternal,
			Message: err.Error(),
		})
	}
}
