package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the consistency stream
const (
	EventCascadeCleanup = "cascade_cleanup"
	EventCommentLink    = "comment_link"
)

// Stream names
const (
	StreamConsistency = "stream:consistency"
)

// Consumer group name for consistency workers
const (
	ConsumerGroupConsistency = "consistency_workers"
)

// ConsistencyEvent announces an inconsistency record that a worker should try to repair.
type ConsistencyEvent struct {
	Type            string `json:"type"`
	Timestamp       int64  `json:"timestamp"`
	InconsistencyID int64  `json:"inconsistency_id"`
	Operation       string `json:"operation"`
	AccountID       int64  `json:"account_id"`

	// Portfolio id for cascade_portfolio, comment id for comment_link
	ResourceID int64 `json:"resource_id,omitempty"`
}

// NewCascadeCleanupEvent is published when a step of the account delete cascade failed.
func NewCascadeCleanupEvent(inconsistencyID int64, operation string, accountID, resourceID int64) ConsistencyEvent {
	return ConsistencyEvent{
		Type:            EventCascadeCleanup,
		Timestamp:       time.Now().Unix(),
		InconsistencyID: inconsistencyID,
		Operation:       operation,
		AccountID:       accountID,
		ResourceID:      resourceID,
	}
}

// NewCommentLinkEvent is published when a comment reference could not be added to
// or removed from its portfolio.
func NewCommentLinkEvent(inconsistencyID int64, operation string, authorID, commentID int64) ConsistencyEvent {
	return ConsistencyEvent{
		Type:            EventCommentLink,
		Timestamp:       time.Now().Unix(),
		InconsistencyID: inconsistencyID,
		Operation:       operation,
		AccountID:       authorID,
		ResourceID:      commentID,
	}
}

// ToMap converts the event to XADD field-value pairs. The full event is JSON in "data".
func (e ConsistencyEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseConsistencyEvent parses an event from Redis stream message values.
func ParseConsistencyEvent(values map[string]interface{}) (ConsistencyEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ConsistencyEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ConsistencyEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ConsistencyEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
