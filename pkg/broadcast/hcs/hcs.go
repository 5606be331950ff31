package hcs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	// maxPlainMessageSize is the size of one HCS chunk; larger events are
	// compressed when compression is enabled.
	maxPlainMessageSize = 1024
	dataURLPrefix       = "data:application/json;base64,"
	memoPrefix          = "hedera-batch"
)

// Submitter sends one message to a consensus topic and returns its sequence
// number.
type Submitter interface {
	Submit(ctx context.Context, topicID hedera.TopicID, message []byte, memo string) (int64, error)
}

type Publisher struct {
	submitter Submitter
	topicID   hedera.TopicID
	compress  bool
}

var _ broadcast.Publisher = (*Publisher)(nil)

func New(submitter Submitter, topicID hedera.TopicID, compress bool) *Publisher {
	return &Publisher{submitter: submitter, topicID: topicID, compress: compress}
}

func (p *Publisher) TopicID() hedera.TopicID {
	return p.topicID
}

func (p *Publisher) Publish(ctx context.Context, event broadcast.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.submitter == nil {
		return fmt.Errorf("hcs publish: %w", broadcast.ErrNotConfigured)
	}

	message, err := EncodeMessage(event, p.compress)
	if err != nil {
		return fmt.Errorf("hcs publish serialize: %w", err)
	}

	memo := fmt.Sprintf("%s:%s:%s", memoPrefix, event.Kind, event.BatchID)
	if _, err := p.submitter.Submit(ctx, p.topicID, message, memo); err != nil {
		if broadcast.IsContextError(err) {
			return err
		}
		return fmt.Errorf("hcs submit to %s: %w", p.topicID.String(), errors.Join(broadcast.ErrPublishFailed, err))
	}
	return nil
}

type wrappedContent struct {
	Content string `json:"c"`
}

// EncodeMessage renders an event as JSON. With compress set, events larger
// than one chunk are brotli-compressed and wrapped as {"c":"data:...;base64,..."}.
func EncodeMessage(event broadcast.Event, compress bool) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Join(broadcast.ErrSerializationFailed, err)
	}
	if !compress || len(body) <= maxPlainMessageSize {
		return body, nil
	}

	compressed, err := broadcast.Compress(body)
	if err != nil {
		return nil, errors.Join(broadcast.ErrSerializationFailed, err)
	}
	wrapped, err := json.Marshal(wrappedContent{
		Content: dataURLPrefix + base64.StdEncoding.EncodeToString(compressed),
	})
	if err != nil {
		return nil, errors.Join(broadcast.ErrSerializationFailed, err)
	}
	return wrapped, nil
}

// DecodeMessage reverses EncodeMessage for a raw topic message.
func DecodeMessage(message []byte) (broadcast.Event, error) {
	body := message

	var wrapped wrappedContent
	if err := json.Unmarshal(message, &wrapped); err == nil && strings.HasPrefix(wrapped.Content, "data:") {
		separator := strings.Index(wrapped.Content, ",")
		if separator < 0 {
			return broadcast.Event{}, fmt.Errorf("%w: malformed data URL", broadcast.ErrSerializationFailed)
		}
		compressed, err := base64.StdEncoding.DecodeString(wrapped.Content[separator+1:])
		if err != nil {
			return broadcast.Event{}, errors.Join(broadcast.ErrSerializationFailed, err)
		}
		body, err = broadcast.Decompress(compressed)
		if err != nil {
			return broadcast.Event{}, errors.Join(broadcast.ErrSerializationFailed, err)
		}
	}

	var event broadcast.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return broadcast.Event{}, errors.Join(broadcast.ErrSerializationFailed, err)
	}
	return event, nil
}

type sdkSubmitter struct {
	client *hedera.Client
}

func (s sdkSubmitter) Submit(ctx context.Context, topicID hedera.TopicID, message []byte, memo string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	transaction := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage(message)
	if strings.TrimSpace(memo) != "" {
		transaction.SetTransactionMemo(memo)
	}

	response, err := transaction.Execute(s.client)
	if err != nil {
		return 0, fmt.Errorf("failed to execute message submit transaction: %w", err)
	}
	receipt, err := response.GetReceipt(s.client)
	if err != nil {
		return 0, fmt.Errorf("failed to get message submit receipt: %w", err)
	}
	return int64(receipt.TopicSequenceNumber), nil
}

type Config struct {
	Network     string
	TopicID     string
	OperatorID  string
	OperatorKey string
	Compress    bool
}

// NewWithOperator builds a Publisher with its own SDK client paying for
// submissions. The cleanup closes that client.
func NewWithOperator(cfg Config) (*Publisher, func(), error) {
	if strings.TrimSpace(cfg.TopicID) == "" {
		return nil, nil, fmt.Errorf("%w: hcs topic ID required", broadcast.ErrNotConfigured)
	}
	topicID, err := hedera.TopicIDFromString(strings.TrimSpace(cfg.TopicID))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid hcs topic ID: %w", err)
	}
	operatorID, err := shared.ParseAccountID(cfg.OperatorID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: hcs operator: %w", broadcast.ErrNotConfigured, err)
	}
	operatorKey, err := shared.ParsePrivateKey(cfg.OperatorKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: hcs operator key: %w", broadcast.ErrNotConfigured, err)
	}

	client, err := shared.NewOperatorClient(cfg.Network, operatorID, operatorKey)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = client.Close() }
	return New(sdkSubmitter{client: client}, topicID, cfg.Compress), cleanup, nil
}
