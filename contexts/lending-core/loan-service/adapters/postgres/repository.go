package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	authzerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	"loanbook/contexts/lending-core/loan-service/domain/entities"
	domainerrors "loanbook/contexts/lending-core/loan-service/domain/errors"
	"loanbook/contexts/lending-core/loan-service/ports"
	"loanbook/internal/shared/events"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the loan and outbox tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&loanModel{}, &outboxModel{})
}

func (r *Repository) CreateWithOutbox(
	ctx context.Context,
	loan entities.Loan,
	envelope events.Envelope,
) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	loanRow := loanModelFromEntity(loan)
	outboxRow := outboxModel{
		OutboxID:  strings.TrimSpace(envelope.EventID),
		EventType: strings.TrimSpace(envelope.EventType),
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: envelope.OccurredAtUTC.UTC(),
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&loanRow).Error; err != nil {
			return err
		}
		return tx.Create(&outboxRow).Error
	})
}

func (r *Repository) GetByID(ctx context.Context, loanID string) (entities.Loan, error) {
	var row loanModel
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", strings.TrimSpace(loanID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Loan{}, domainerrors.ErrLoanNotFound
		}
		return entities.Loan{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.LoanFilter) ([]entities.Loan, int64, error) {
	tx := r.db.WithContext(ctx).Model(&loanModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if strings.TrimSpace(filter.OwnerID) != "" {
		tx = tx.Where("owner_id = ?", strings.TrimSpace(filter.OwnerID))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []loanModel
	if err := tx.Order("created_at DESC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	items := make([]entities.Loan, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, total, nil
}

func (r *Repository) Update(ctx context.Context, loan entities.Loan) error {
	row := loanModelFromEntity(loan)
	result := r.db.WithContext(ctx).
		Model(&loanModel{}).
		Where("loan_id = ?", row.LoanID).
		Updates(map[string]any{
			"borrower_name":    row.BorrowerName,
			"amount":           row.Amount,
			"interest_rate":    row.InterestRate,
			"loan_term_months": row.LoanTermMonths,
			"start_date":       row.StartDate,
			"status":           row.Status,
			"monthly_payment":  row.MonthlyPayment,
			"updated_at":       row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrLoanNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, loanID string) error {
	result := r.db.WithContext(ctx).
		Where("loan_id = ?", strings.TrimSpace(loanID)).
		Delete(&loanModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrLoanNotFound
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrLoanNotFound
	}
	return nil
}

// OwnerOfLoan satisfies the authorization service's LoanOwnership port, so a
// missing loan surfaces as that context's sentinel.
func (r *Repository) OwnerOfLoan(ctx context.Context, loanID string) (string, error) {
	var row loanModel
	err := r.db.WithContext(ctx).
		Select("owner_id").
		Where("loan_id = ?", strings.TrimSpace(loanID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", authzerrors.ErrLoanNotFound
		}
		return "", err
	}
	return row.OwnerID, nil
}

// LoanIDsOwnedBy satisfies the authorization service's LoanOwnership port.
func (r *Repository) LoanIDsOwnedBy(ctx context.Context, accountID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&loanModel{}).
		Where("owner_id = ?", strings.TrimSpace(accountID)).
		Order("loan_id ASC").
		Pluck("loan_id", &ids).
		Error; err != nil {
		return nil, err
	}
	return ids, nil
}

type loanModel struct {
	LoanID         string          `gorm:"column:loan_id;primaryKey"`
	BorrowerName   string          `gorm:"column:borrower_name"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(14,2)"`
	InterestRate   float64         `gorm:"column:interest_rate"`
	LoanTermMonths int             `gorm:"column:loan_term_months"`
	StartDate      time.Time       `gorm:"column:start_date"`
	Status         string          `gorm:"column:status;index"`
	MonthlyPayment decimal.Decimal `gorm:"column:monthly_payment;type:numeric(14,2)"`
	OwnerID        string          `gorm:"column:owner_id;index"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (loanModel) TableName() string {
	return "loans"
}

func loanModelFromEntity(item entities.Loan) loanModel {
	return loanModel{
		LoanID:         strings.TrimSpace(item.ID),
		BorrowerName:   strings.TrimSpace(item.BorrowerName),
		Amount:         item.Amount,
		InterestRate:   item.InterestRate,
		LoanTermMonths: item.LoanTermMonths,
		StartDate:      item.StartDate.UTC(),
		Status:         item.Status,
		MonthlyPayment: item.MonthlyPayment,
		OwnerID:        strings.TrimSpace(item.OwnerID),
		CreatedAt:      item.CreatedAt.UTC(),
		UpdatedAt:      item.UpdatedAt.UTC(),
	}
}

func (m loanModel) toEntity() entities.Loan {
	return entities.Loan{
		ID:             m.LoanID,
		BorrowerName:   m.BorrowerName,
		Amount:         m.Amount,
		InterestRate:   m.InterestRate,
		LoanTermMonths: m.LoanTermMonths,
		StartDate:      m.StartDate.UTC(),
		Status:         m.Status,
		MonthlyPayment: m.MonthlyPayment,
		OwnerID:        m.OwnerID,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "lending_outbox"
}
