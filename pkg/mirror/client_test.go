package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{Network: "testnet", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewClientDefaultBaseURLs(t *testing.T) {
	cases := map[string]string{
		"testnet":    "https://testnet.mirrornode.hedera.com",
		"mainnet":    "https://mainnet-public.mirrornode.hedera.com",
		"previewnet": "https://previewnet.mirrornode.hedera.com",
		"":           "https://testnet.mirrornode.hedera.com",
	}
	for network, expected := range cases {
		client, err := NewClient(Config{Network: network})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", network, err)
		}
		if client.BaseURL() != expected {
			t.Fatalf("expected %s for %q, got %s", expected, network, client.BaseURL())
		}
	}
}

func TestNewClientCustomBaseURL(t *testing.T) {
	client, err := NewClient(Config{
		Network: "testnet",
		BaseURL: " https://custom.example.com/ ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.baseURL != "https://custom.example.com" {
		t.Fatalf("unexpected baseURL: %s", client.baseURL)
	}
}

func TestNewClientRejectsBadInput(t *testing.T) {
	if _, err := NewClient(Config{Network: "badnet"}); err == nil {
		t.Fatal("expected error for unsupported network")
	}
	if _, err := NewClient(Config{Network: "testnet", BaseURL: "ftp://mirror.example.com"}); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
	if _, err := NewClient(Config{Network: "testnet", BaseURL: "https://"}); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func TestNewClientCopiesHeadersAndHTTPClient(t *testing.T) {
	customHTTP := &http.Client{}
	headers := map[string]string{"X-Custom": "test"}
	client, err := NewClient(Config{
		Network:    "testnet",
		HTTPClient: customHTTP,
		APIKey:     " my-api-key ",
		Headers:    headers,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	headers["X-Custom"] = "mutated"

	if client.httpClient != customHTTP {
		t.Fatal("expected custom http client to be used")
	}
	if client.apiKey != "my-api-key" {
		t.Fatalf("expected trimmed api key, got %q", client.apiKey)
	}
	if client.headers["X-Custom"] != "test" {
		t.Fatalf("expected headers to be copied, got %q", client.headers["X-Custom"])
	}
}

func TestRequestsCarryAuthAndHeaders(t *testing.T) {
	var gotAuth, gotCustom string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Custom")
		json.NewEncoder(w).Encode(AccountInfo{Account: "0.0.5"})
	})
	client.apiKey = "secret"
	client.headers = map[string]string{"X-Custom": "yes"}

	if _, err := client.GetAccount(context.Background(), "0.0.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotCustom != "yes" {
		t.Fatalf("unexpected custom header %q", gotCustom)
	}
}

func TestGetAccountEmpty(t *testing.T) {
	client, _ := NewClient(Config{Network: "testnet"})
	if _, err := client.GetAccount(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty account ID")
	}
}

func TestGetAccountSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/0.0.12345" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"account":"0.0.12345","memo":"account-memo","balance":{"balance":250000000,"timestamp":"1700000000.000000001","tokens":[{"token_id":"0.0.77","balance":9}]}}`))
	})

	info, err := client.GetAccount(context.Background(), "0.0.12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Memo != "account-memo" {
		t.Fatalf("unexpected memo: %s", info.Memo)
	}
	if info.Balance.Balance != 250000000 {
		t.Fatalf("unexpected balance: %d", info.Balance.Balance)
	}
	if len(info.Balance.Tokens) != 1 || info.Balance.Tokens[0].TokenID != "0.0.77" {
		t.Fatalf("unexpected token balances: %+v", info.Balance.Tokens)
	}
}

func TestGetAccountTokenBalanceFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/0.0.100/tokens" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("token.id") != "0.0.200" {
			t.Errorf("unexpected token filter: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"tokens":[{"token_id":"0.0.200","balance":4200,"decimals":2}],"links":{"next":null}}`))
	})

	balance, found, err := client.GetAccountTokenBalance(context.Background(), "0.0.100", "0.0.200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected token relationship to be found")
	}
	if balance != 4200 {
		t.Fatalf("expected 4200, got %d", balance)
	}
}

func TestGetAccountTokenBalanceNotAssociated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tokens":[],"links":{"next":null}}`))
	})

	balance, found, err := client.GetAccountTokenBalance(context.Background(), "0.0.100", "0.0.200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || balance != 0 {
		t.Fatalf("expected zero and not found, got %d %v", balance, found)
	}
}

func TestGetAccountTokenBalanceValidation(t *testing.T) {
	client, _ := NewClient(Config{Network: "testnet"})
	if _, _, err := client.GetAccountTokenBalance(context.Background(), "", "0.0.1"); err == nil {
		t.Fatal("expected error for empty account")
	}
	if _, _, err := client.GetAccountTokenBalance(context.Background(), "0.0.1", " "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestGetAccountTokenBalanceMissingAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"_status":{"messages":[{"message":"Not found"}]}}`))
	})

	_, _, err := client.GetAccountTokenBalance(context.Background(), "0.0.100", "0.0.200")
	if err == nil {
		t.Fatal("expected error for missing account")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetTopicInfoSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/topics/0.0.12345" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TopicInfo{TopicID: "0.0.12345", Memo: "batch-events"})
	})

	info, err := client.GetTopicInfo(context.Background(), "0.0.12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Memo != "batch-events" {
		t.Fatalf("unexpected memo: %s", info.Memo)
	}

	if _, err := client.GetTopicInfo(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty topic ID")
	}
}

func TestGetTopicMessagesPagination(t *testing.T) {
	callCount := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount == 1 {
			if r.URL.Query().Get("order") != "asc" {
				t.Errorf("expected order=asc, got %s", r.URL.RawQuery)
			}
			resp := topicMessagesResponse{
				Messages: []TopicMessage{{SequenceNumber: 1, Message: base64.StdEncoding.EncodeToString([]byte("a"))}},
			}
			resp.Links.Next = "/api/v1/topics/0.0.1/messages?page=2"
			json.NewEncoder(w).Encode(resp)
			return
		}
		json.NewEncoder(w).Encode(topicMessagesResponse{
			Messages: []TopicMessage{{SequenceNumber: 2, Message: base64.StdEncoding.EncodeToString([]byte("b"))}},
		})
	})

	messages, err := client.GetTopicMessages(context.Background(), "0.0.1", MessageQueryOptions{Order: "asc", Limit: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	data, err := DecodeMessageData(messages[1])
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if string(data) != "b" {
		t.Fatalf("expected 'b', got %q", string(data))
	}
}

func TestGetTopicMessagesEmptyTopic(t *testing.T) {
	client, _ := NewClient(Config{Network: "testnet"})
	if _, err := client.GetTopicMessages(context.Background(), "", MessageQueryOptions{}); err == nil {
		t.Fatal("expected error for empty topic ID")
	}
}

func TestDecodeMessageDataEmpty(t *testing.T) {
	if _, err := DecodeMessageData(TopicMessage{Message: "   "}); err == nil {
		t.Fatal("expected error for blank message")
	}
}

func TestGetTransactionSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transactionsResponse{
			Transactions: []Transaction{{
				TransactionID: "0.0.1-123-456",
				Result:        "SUCCESS",
				Transfers:     []Transfer{{Account: "0.0.2", Amount: 100}},
			}},
		})
	})

	tx, err := client.GetTransaction(context.Background(), "0.0.1-123-456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx == nil || tx.Result != "SUCCESS" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestGetTransactionAcceptsSDKForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transactions/0.0.2-1700000000-000000001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(transactionsResponse{
			Transactions: []Transaction{{TransactionID: "0.0.2-1700000000-000000001", Result: "SUCCESS"}},
		})
	})

	tx, err := client.GetTransaction(context.Background(), "0.0.2@1700000000.000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx == nil || tx.Result != "SUCCESS" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

func TestMirrorTransactionID(t *testing.T) {
	cases := map[string]string{
		"0.0.2@1700000000.000000001":           "0.0.2-1700000000-000000001",
		" 0.0.2@1700000000.000000001?nonce=1 ": "0.0.2-1700000000-000000001",
		"0.0.2-1700000000-000000001":           "0.0.2-1700000000-000000001",
		"0.0.2@garbage":                        "0.0.2@garbage",
		"":                                     "",
	}
	for input, expected := range cases {
		if got := MirrorTransactionID(input); got != expected {
			t.Fatalf("MirrorTransactionID(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tx, err := client.GetTransaction(context.Background(), "0.0.1-123-456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx != nil {
		t.Fatal("expected nil for not found")
	}

	if _, err := client.GetTransaction(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty transaction ID")
	}
}

func TestGetJSONServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal error"))
	})

	_, err := client.GetAccount(context.Background(), "0.0.1")
	if err == nil {
		t.Fatal("expected error for server error")
	}
	if IsNotFound(err) {
		t.Fatal("server error must not be reported as not found")
	}
	httpErr, ok := err.(*HTTPError)
	if !ok || httpErr.Body != "internal error" {
		t.Fatalf("expected HTTPError with body, got %v", err)
	}
}

func TestGetJSONInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	if _, err := client.GetAccount(context.Background(), "0.0.1"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestResolveURL(t *testing.T) {
	client, _ := NewClient(Config{Network: "testnet", BaseURL: "https://mirror.example.com"})
	if got := client.resolveURL("api/v1/x"); got != "https://mirror.example.com/api/v1/x" {
		t.Fatalf("unexpected relative resolution: %s", got)
	}
	if got := client.resolveURL("https://other.example.com/y"); got != "https://other.example.com/y" {
		t.Fatalf("absolute URL should pass through, got %s", got)
	}
}
