package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	"loanbook/contexts/lending-core/loan-service/application"
	"loanbook/contexts/lending-core/loan-service/ports"
	"loanbook/internal/shared/events"
)

// OwnershipCacheConsumer drops the owner's cached owned-loan set whenever a
// loan-created event arrives on the bus. The API process invalidates its own
// cache handle inline; this consumer covers processes that only see the event.
type OwnershipCacheConsumer struct {
	Subscriber    ports.EventSubscriber
	Invalidator   ports.OwnershipInvalidator
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c OwnershipCacheConsumer) Start(ctx context.Context) error {
	return c.Subscriber.Subscribe(ctx, application.EventTypeLoanCreated, c.ConsumerGroup, c.handle)
}

func (c OwnershipCacheConsumer) handle(ctx context.Context, event events.Envelope) error {
	logger := resolveLogger(c.Logger)

	var payload struct {
		OwnerID string `json:"owner_id"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		logger.Error("loan event decode failed",
			"event", "loan_ownership_consumer_decode_failed",
			"module", "lending-core/loan-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if payload.OwnerID == "" {
		return nil
	}

	if err := c.Invalidator.Invalidate(ctx, payload.OwnerID); err != nil {
		logger.Warn("ownership cache invalidation failed",
			"event", "loan_ownership_cache_invalidate_failed",
			"module", "lending-core/loan-service",
			"layer", "worker",
			"owner_id", payload.OwnerID,
			"error", err.Error(),
		)
		return err
	}

	logger.Debug("ownership cache invalidated",
		"event", "loan_ownership_cache_invalidated",
		"module", "lending-core/loan-service",
		"layer", "worker",
		"owner_id", payload.OwnerID,
		"event_id", event.EventID,
	)
	return nil
}
