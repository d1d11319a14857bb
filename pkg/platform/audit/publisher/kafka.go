// Package publisher ships audit events to Kafka so the trail outlives this
// process. The store remains the local record; Kafka is the durable fan-out.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "attest/pkg/platform/audit"
)

// Topic is the audit trail topic.
const Topic = "attest.audit"

// Kafka publishes audit events and satisfies audit.Store so it can sit
// behind the same worker as the in-memory store.
type Kafka struct {
	client *kgo.Client
}

// NewKafka connects to the brokers and ensures the audit topic exists.
func NewKafka(ctx context.Context, brokers []string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 1, 1, nil, Topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", err)
	}
	// An existing topic is fine; anything else is not.
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", resp.Err)
	}

	return &Kafka{client: client}, nil
}

type wireEvent struct {
	Action       string `json:"action"`
	Timestamp    string `json:"timestamp"`
	AssignmentID string `json:"assignment_id"`
	PolicyID     string `json:"policy_id"`
	UserEmail    string `json:"user_email,omitempty"`
	ActorID      string `json:"actor_id,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// Append publishes one event, keyed by assignment ID so a record's history
// stays ordered within a partition.
func (k *Kafka) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(wireEvent{
		Action:       string(event.Action),
		Timestamp:    event.Timestamp.Format(time.RFC3339Nano),
		AssignmentID: event.AssignmentID.String(),
		PolicyID:     event.PolicyID.String(),
		UserEmail:    event.UserEmail,
		ActorID:      event.ActorID,
		RequestID:    event.RequestID,
		Detail:       event.Detail,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: Topic,
		Key:   []byte(event.AssignmentID.String()),
		Value: payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (k *Kafka) Close() {
	k.client.Close()
}
