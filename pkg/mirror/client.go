package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
)

const (
	mainnetBaseURL    = "https://mainnet-public.mirrornode.hedera.com"
	testnetBaseURL    = "https://testnet.mirrornode.hedera.com"
	previewnetBaseURL = "https://previewnet.mirrornode.hedera.com"
)

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	headers    map[string]string
}

// HTTPError is returned when the mirror node answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("mirror node request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a mirror node 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

type MessageQueryOptions struct {
	SequenceNumber string
	Limit          int
	Order          string
}

// NewClient creates a mirror node client. BaseURL overrides the public
// endpoint derived from Network.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL(network)
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid mirror base URL: host is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := make(map[string]string, len(config.Headers))
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		baseURL:    strings.TrimRight(parsedBaseURL.String(), "/"),
		httpClient: httpClient,
		apiKey:     strings.TrimSpace(config.APIKey),
		headers:    headers,
	}, nil
}

// DefaultBaseURL returns the public mirror node for a normalized network name.
func DefaultBaseURL(network string) string {
	switch network {
	case shared.NetworkMainnet:
		return mainnetBaseURL
	case shared.NetworkPreviewnet:
		return previewnetBaseURL
	default:
		return testnetBaseURL
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAccount returns the account record including its HBAR balance snapshot.
func (c *Client) GetAccount(ctx context.Context, accountID string) (AccountInfo, error) {
	var accountInfo AccountInfo
	normalizedAccountID := strings.TrimSpace(accountID)
	if normalizedAccountID == "" {
		return accountInfo, fmt.Errorf("account ID is required")
	}

	path := "/api/v1/accounts/" + url.PathEscape(normalizedAccountID)
	if err := c.getJSON(ctx, path, &accountInfo); err != nil {
		return accountInfo, err
	}

	return accountInfo, nil
}

// GetAccountTokenBalance returns the account's balance of a single token. The
// boolean is false when the account holds no relationship with the token.
func (c *Client) GetAccountTokenBalance(ctx context.Context, accountID string, tokenID string) (int64, bool, error) {
	normalizedAccountID := strings.TrimSpace(accountID)
	if normalizedAccountID == "" {
		return 0, false, fmt.Errorf("account ID is required")
	}
	normalizedTokenID := strings.TrimSpace(tokenID)
	if normalizedTokenID == "" {
		return 0, false, fmt.Errorf("token ID is required")
	}

	values := url.Values{}
	values.Set("token.id", normalizedTokenID)
	path := fmt.Sprintf("/api/v1/accounts/%s/tokens?%s", url.PathEscape(normalizedAccountID), values.Encode())

	var response tokenRelationshipsResponse
	if err := c.getJSON(ctx, path, &response); err != nil {
		return 0, false, err
	}

	for _, relationship := range response.Tokens {
		if relationship.TokenID == normalizedTokenID {
			return relationship.Balance, true, nil
		}
	}
	return 0, false, nil
}

// GetTopicInfo returns the consensus topic record.
func (c *Client) GetTopicInfo(ctx context.Context, topicID string) (TopicInfo, error) {
	var topicInfo TopicInfo
	normalized := strings.TrimSpace(topicID)
	if normalized == "" {
		return topicInfo, fmt.Errorf("topic ID is required")
	}

	if err := c.getJSON(ctx, "/api/v1/topics/"+url.PathEscape(normalized), &topicInfo); err != nil {
		return topicInfo, err
	}
	return topicInfo, nil
}

// GetTopicMessages pages through a topic's messages until the mirror node
// stops returning a next link.
func (c *Client) GetTopicMessages(
	ctx context.Context,
	topicID string,
	options MessageQueryOptions,
) ([]TopicMessage, error) {
	normalized := strings.TrimSpace(topicID)
	if normalized == "" {
		return nil, fmt.Errorf("topic ID is required")
	}

	values := url.Values{}
	if options.SequenceNumber != "" {
		values.Set("sequencenumber", options.SequenceNumber)
	}
	if options.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", options.Limit))
	}
	if options.Order != "" {
		values.Set("order", options.Order)
	}

	next := fmt.Sprintf("/api/v1/topics/%s/messages", url.PathEscape(normalized))
	if encoded := values.Encode(); encoded != "" {
		next += "?" + encoded
	}

	result := make([]TopicMessage, 0)
	for next != "" {
		var page topicMessagesResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		result = append(result, page.Messages...)
		next = page.Links.Next
	}

	return result, nil
}

// DecodeMessageData returns the raw bytes of a base64 topic message.
func DecodeMessageData(message TopicMessage) ([]byte, error) {
	if strings.TrimSpace(message.Message) == "" {
		return nil, fmt.Errorf("message payload is empty")
	}
	return base64.StdEncoding.DecodeString(message.Message)
}

// MirrorTransactionID converts an SDK transaction ID such as
// 0.0.2@1700000000.000000001 into the mirror node form
// 0.0.2-1700000000-000000001. Other input is returned trimmed.
func MirrorTransactionID(transactionID string) string {
	trimmed := strings.TrimSpace(transactionID)
	account, validStart, found := strings.Cut(trimmed, "@")
	if !found {
		return trimmed
	}
	validStart, _, _ = strings.Cut(validStart, "?")
	seconds, nanos, found := strings.Cut(validStart, ".")
	if !found {
		return trimmed
	}
	return account + "-" + seconds + "-" + nanos
}

// GetTransaction returns the first transaction record for a transaction ID
// in either SDK or mirror node form, or nil when unknown.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	normalized := MirrorTransactionID(transactionID)
	if normalized == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	var response transactionsResponse
	if err := c.getJSON(ctx, "/api/v1/transactions/"+url.PathEscape(normalized), &response); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(response.Transactions) == 0 {
		return nil, nil
	}
	return &response.Transactions[0], nil
}

func (c *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolveURL(pathOrURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mirror node request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read mirror node response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &HTTPError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode mirror node response: %w", err)
	}
	return nil
}

func (c *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.baseURL + pathOrURL
}
