package ports

import (
	"context"
	"time"

	"loanbook/contexts/lending-core/loan-service/domain/entities"
	"loanbook/internal/shared/events"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints loan identifiers.
type IDGenerator interface {
	NewID() string
}

// LoanFilter narrows List results. Zero values mean no constraint.
type LoanFilter struct {
	Status  string
	OwnerID string
	Skip    int
	Limit   int
}

// Repository is the loan persistence port. CreateWithOutbox writes the loan
// row and its created-event outbox row in one transaction.
type Repository interface {
	CreateWithOutbox(ctx context.Context, loan entities.Loan, envelope events.Envelope) error
	GetByID(ctx context.Context, loanID string) (entities.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]entities.Loan, int64, error)
	Update(ctx context.Context, loan entities.Loan) error
	Delete(ctx context.Context, loanID string) error
}

// AccountDirectory answers whether an owner account exists. Implemented by
// the account repository.
type AccountDirectory interface {
	AccountExists(ctx context.Context, accountID string) (bool, error)
}

// PaymentCounter reports how many payments reference a loan. Implemented by
// the payment repository; guards delete-restrict.
type PaymentCounter interface {
	CountByLoan(ctx context.Context, loanID string) (int64, error)
}

// OwnershipInvalidator drops cached owned-loan sets after loan creation or
// deletion. Best effort: failures are logged, not returned.
type OwnershipInvalidator interface {
	Invalidate(ctx context.Context, accountID string) error
}

// OutboxMessage is a pending event row awaiting relay to the bus.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository feeds the worker relay.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher hands envelopes to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

// EventSubscriber registers a handler for a topic. The handler runs until ctx
// is cancelled.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, events.Envelope) error,
	) error
}
