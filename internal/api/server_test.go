package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hashgraph-online/hedera-batch-go/pkg/batch"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast/hub"
)

type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) MultipleTransfer(ctx context.Context, request batch.TransferRequest) (batch.TransferBatchResult, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(batch.TransferBatchResult), args.Error(1)
}

func (m *MockBatchService) MultipleAssociate(ctx context.Context, request batch.AssociateRequest) (batch.AssociateBatchResult, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(batch.AssociateBatchResult), args.Error(1)
}

func (m *MockBatchService) MultipleCreateAccount(ctx context.Context, request batch.CreateAccountsRequest) (batch.CreateAccountsBatchResult, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(batch.CreateAccountsBatchResult), args.Error(1)
}

func (m *MockBatchService) CheckBalance(ctx context.Context, request batch.BalanceRequest) (batch.BalanceBatchResult, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(batch.BalanceBatchResult), args.Error(1)
}

func newTestServer(service BatchService, eventHub *hub.Hub) *Server {
	return NewServer(Options{
		Service:    service,
		Hub:        eventHub,
		Publishers: []string{"hub"},
		Logger:     zerolog.Nop(),
	})
}

func post(t *testing.T, server *Server, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Echo.ServeHTTP(rec, req)
	return rec
}

func TestPostTransfers(t *testing.T) {
	service := new(MockBatchService)
	server := newTestServer(service, nil)

	expected := batch.TransferBatchResult{
		BatchID: "b-1",
		Network: "testnet",
		Results: []batch.TransferResult{{ReceivedAddress: "0.0.5", Status: "SUCCESS", TransactionID: "0.0.2@1.0"}},
	}
	service.On("MultipleTransfer", mock.Anything, mock.MatchedBy(func(request batch.TransferRequest) bool {
		return request.AccountAddress == "0.0.2" &&
			request.Network == "testnet" &&
			request.Amount.Equal(decimal.RequireFromString("1.25")) &&
			len(request.ReceivedAddresses) == 1 &&
			request.ReceivedAddresses[0] == "0.0.5"
	})).Return(expected, nil)

	rec := post(t, server, "/api/v1/transfers",
		`{"accountAddress":"0.0.2","privateKey":"k","network":"testnet","amount":"1.25","receivedAddresses":["0.0.5"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response batch.TransferBatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, expected, response)
	service.AssertExpectations(t)
}

func TestPostTransfersAcceptsNumericAmount(t *testing.T) {
	service := new(MockBatchService)
	server := newTestServer(service, nil)

	service.On("MultipleTransfer", mock.Anything, mock.MatchedBy(func(request batch.TransferRequest) bool {
		return request.Amount.Equal(decimal.NewFromInt(2))
	})).Return(batch.TransferBatchResult{BatchID: "b"}, nil)

	rec := post(t, server, "/api/v1/transfers", `{"amount":2,"receivedAddresses":["0.0.5"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestValidationErrorIsBadRequest(t *testing.T) {
	service := new(MockBatchService)
	server := newTestServer(service, nil)

	service.On("MultipleAssociate", mock.Anything, mock.Anything).
		Return(batch.AssociateBatchResult{}, &batch.ValidationError{Field: "tokens", Message: "must not be empty"})

	rec := post(t, server, "/api/v1/associations", `{"associatedAddresses":["0.0.5"]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, CodeValidation, response.Code)
	assert.Equal(t, "tokens", response.Field)
	assert.Equal(t, "must not be empty", response.Message)
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	service := new(MockBatchService)
	server := newTestServer(service, nil)

	rec := post(t, server, "/api/v1/accounts", `{"numberOfAccounts":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, CodeBadRequest, response.Code)
	service.AssertNotCalled(t, "MultipleCreateAccount", mock.Anything, mock.Anything)
}

func TestInterruptedBatchReturnsPartialResult(t *testing.T) {
	service := new(MockBatchService)
	server := newTestServer(service, nil)

	partial := batch.BalanceBatchResult{
		BatchID: "b-2",
		Results: []batch.BalanceResult{{AccountAddress: "0.0.5", Balance: 10}},
	}
	service.On("CheckBalance", mock.Anything, mock.Anything).Return(partial, context.DeadlineExceeded)

	rec := post(t, server, "/api/v1/balances", `{"accountAddresses":["0.0.5","0.0.6"]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var response struct {
		Code   string                   `json:"code"`
		Result batch.BalanceBatchResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, CodeInterrupted, response.Code)
	assert.Equal(t, partial, response.Result)
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	service := new(MockBatchService)
	server := newTestServer(service, nil)

	service.On("MultipleCreateAccount", mock.Anything, mock.Anything).
		Return(batch.CreateAccountsBatchResult{}, assert.AnError)

	rec := post(t, server, "/api/v1/accounts", `{"numberOfAccounts":1}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, CodeInternal, response.Code)
}

func TestHealth(t *testing.T) {
	eventHub := hub.New(4, zerolog.Nop())
	defer eventHub.Close()
	server := newTestServer(new(MockBatchService), eventHub)

	subscription := eventHub.Subscribe("*")
	defer subscription.Close()
	for sequence := 1; sequence <= 5; sequence++ {
		require.NoError(t, eventHub.Publish(context.Background(), broadcast.Event{Topic: "hedera.batch.transfer", Sequence: sequence}))
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, []string{"hub"}, response.Publishers)
	assert.Equal(t, 1, response.Subscribers)
	assert.Equal(t, int64(1), response.Dropped)
}

func TestWebsocketRouteOnlyWithHub(t *testing.T) {
	server := newTestServer(new(MockBatchService), nil)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	server.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebsocketStreamsEvents(t *testing.T) {
	eventHub := hub.New(4, zerolog.Nop())
	defer eventHub.Close()
	server := newTestServer(new(MockBatchService), eventHub)

	httpServer := httptest.NewServer(server.Echo)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?topics=hedera.batch.transfer"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return eventHub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	skipped := broadcast.NewEvent("b", broadcast.KindBalance, "hedera.batch.balance", 1, 2, "testnet", nil)
	wanted := broadcast.NewEvent("b", broadcast.KindTransfer, "hedera.batch.transfer", 2, 2, "testnet", map[string]string{"status": "SUCCESS"})
	require.NoError(t, eventHub.Publish(context.Background(), skipped))
	require.NoError(t, eventHub.Publish(context.Background(), wanted))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received broadcast.Event
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, wanted.ID, received.ID)
	assert.Equal(t, broadcast.KindTransfer, received.Kind)
}
