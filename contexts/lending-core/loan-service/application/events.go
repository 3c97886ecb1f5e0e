package application

import (
	"encoding/json"
	"time"

	"loanbook/contexts/lending-core/loan-service/domain/entities"
	"loanbook/internal/shared/events"
)

// EventTypeLoanCreated is the topic and discriminator for new-loan events.
const EventTypeLoanCreated = "lending.loan.created.v1"

type loanCreatedPayload struct {
	LoanID         string    `json:"loan_id"`
	OwnerID        string    `json:"owner_id"`
	BorrowerName   string    `json:"borrower_name"`
	Amount         string    `json:"amount"`
	InterestRate   float64   `json:"interest_rate"`
	LoanTermMonths int       `json:"loan_term_months"`
	MonthlyPayment string    `json:"monthly_payment"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"start_date"`
}

func loanCreatedEnvelope(eventID string, loan entities.Loan, occurredAt time.Time) (events.Envelope, error) {
	payload, err := json.Marshal(loanCreatedPayload{
		LoanID:         loan.ID,
		OwnerID:        loan.OwnerID,
		BorrowerName:   loan.BorrowerName,
		Amount:         loan.Amount.String(),
		InterestRate:   loan.InterestRate,
		LoanTermMonths: loan.LoanTermMonths,
		MonthlyPayment: loan.MonthlyPayment.String(),
		Status:         loan.Status,
		StartDate:      loan.StartDate.UTC(),
	})
	if err != nil {
		return events.Envelope{}, err
	}
	return events.Envelope{
		EventID:        eventID,
		EventType:      EventTypeLoanCreated,
		SourceService:  "loan-service",
		OccurredAtUTC:  occurredAt.UTC(),
		EntityType:     "loan",
		EntityID:       loan.ID,
		PartitionKey:   loan.OwnerID,
		PayloadVersion: 1,
		Payload:        payload,
	}, nil
}
