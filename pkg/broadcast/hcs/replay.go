package hcs

import (
	"context"
	"fmt"

	"github.com/hashgraph-online/hedera-batch-go/pkg/broadcast"
	"github.com/hashgraph-online/hedera-batch-go/pkg/mirror"
)

// ReplayedEvent is an event read back from the topic with its consensus
// position.
type ReplayedEvent struct {
	SequenceNumber     int64           `json:"sequenceNumber"`
	ConsensusTimestamp string          `json:"consensusTimestamp"`
	Event              broadcast.Event `json:"event"`
}

// Replay reads events back from a topic through the mirror node, starting
// after sequence afterSequence. Messages that are not batch events are skipped.
func Replay(ctx context.Context, mirrorClient *mirror.Client, topicID string, afterSequence int64, limit int) ([]ReplayedEvent, error) {
	options := mirror.MessageQueryOptions{Order: "asc", Limit: limit}
	if afterSequence > 0 {
		options.SequenceNumber = fmt.Sprintf("gt:%d", afterSequence)
	}

	messages, err := mirrorClient.GetTopicMessages(ctx, topicID, options)
	if err != nil {
		return nil, err
	}

	replayed := make([]ReplayedEvent, 0, len(messages))
	for _, message := range messages {
		data, err := mirror.DecodeMessageData(message)
		if err != nil {
			continue
		}
		event, err := DecodeMessage(data)
		if err != nil || event.ID == "" {
			continue
		}
		replayed = append(replayed, ReplayedEvent{
			SequenceNumber:     message.SequenceNumber,
			ConsensusTimestamp: message.ConsensusTimestamp,
			Event:              event,
		})
	}
	return replayed, nil
}

// VerifyTopic fails when the topic is unknown to the mirror node or deleted.
func VerifyTopic(ctx context.Context, mirrorClient *mirror.Client, topicID string) error {
	info, err := mirrorClient.GetTopicInfo(ctx, topicID)
	if err != nil {
		return fmt.Errorf("failed to look up topic %s: %w", topicID, err)
	}
	if info.Deleted {
		return fmt.Errorf("topic %s is deleted", topicID)
	}
	return nil
}
