// Package eventbridge publishes board domain events to an EventBridge bus
// so downstream consumers (thumbnail rendering, activity feeds) can react.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"tabula-backend/application/ports"
	"tabula-backend/domain/events"
)

const eventSource = "tabula.boards"

// Publisher implements ports.EventPublisher using EventBridge
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends the given domain events to the bus. Events are batched up
// to the PutEvents limit of 10 entries.
func (p *Publisher) Publish(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	entries := make([]types.PutEventsRequestEntry, 0, len(domainEvents))
	for _, event := range domainEvents {
		detail, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
		})
	}

	for start := 0; start < len(entries); start += 10 {
		end := start + 10
		if end > len(entries) {
			end = len(entries)
		}

		out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
			Entries: entries[start:end],
		})
		if err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}
		if out.FailedEntryCount > 0 {
			p.logger.Warn("Some events failed to publish",
				zap.Int32("failed", out.FailedEntryCount),
			)
		}
	}

	return nil
}

// NopPublisher discards events, for local development and tests
type NopPublisher struct{}

// Publish implements ports.EventPublisher
func (NopPublisher) Publish(ctx context.Context, domainEvents []events.DomainEvent) error {
	return nil
}
