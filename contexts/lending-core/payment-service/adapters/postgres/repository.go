package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	authzerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	"loanbook/contexts/lending-core/payment-service/domain/entities"
	domainerrors "loanbook/contexts/lending-core/payment-service/domain/errors"
	"loanbook/contexts/lending-core/payment-service/ports"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
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

// Migrate creates the payment table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&paymentModel{})
}

// Create inserts the payment inside a transaction that re-checks the loan row
// still exists, narrowing the window between the authorization lookup and the
// insert.
func (r *Repository) Create(ctx context.Context, payment entities.Payment) error {
	row := paymentModelFromEntity(payment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loanCount int64
		if err := tx.Table("loans").
			Where("loan_id = ?", row.LoanID).
			Count(&loanCount).
			Error; err != nil {
			return err
		}
		if loanCount == 0 {
			return authzerrors.ErrLoanNotFound
		}
		return tx.Create(&row).Error
	})
}

func (r *Repository) GetByID(ctx context.Context, paymentID string) (entities.Payment, error) {
	var row paymentModel
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", strings.TrimSpace(paymentID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Payment{}, domainerrors.ErrPaymentNotFound
		}
		return entities.Payment{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.PaymentFilter) ([]entities.Payment, int64, error) {
	tx := r.db.WithContext(ctx).Model(&paymentModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if strings.TrimSpace(filter.LoanID) != "" {
		tx = tx.Where("loan_id = ?", strings.TrimSpace(filter.LoanID))
	}
	if len(filter.LoanIDs) > 0 {
		tx = tx.Where("loan_id IN ?", filter.LoanIDs)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []paymentModel
	if err := tx.Order("created_at DESC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	items := make([]entities.Payment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, total, nil
}

func (r *Repository) Update(ctx context.Context, payment entities.Payment) error {
	row := paymentModelFromEntity(payment)
	result := r.db.WithContext(ctx).
		Model(&paymentModel{}).
		Where("payment_id = ?", row.PaymentID).
		Updates(map[string]any{
			"amount":     row.Amount,
			"date":       row.Date,
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPaymentNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, paymentID string) error {
	result := r.db.WithContext(ctx).
		Where("payment_id = ?", strings.TrimSpace(paymentID)).
		Delete(&paymentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPaymentNotFound
	}
	return nil
}

// CountByLoan satisfies the loan service's PaymentCounter port.
func (r *Repository) CountByLoan(ctx context.Context, loanID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&paymentModel{}).
		Where("loan_id = ?", strings.TrimSpace(loanID)).
		Count(&count).
		Error
	return count, err
}

type paymentModel struct {
	PaymentID string          `gorm:"column:payment_id;primaryKey"`
	LoanID    string          `gorm:"column:loan_id;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2)"`
	Date      time.Time       `gorm:"column:date"`
	Status    string          `gorm:"column:status;index"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string {
	return "payments"
}

func paymentModelFromEntity(item entities.Payment) paymentModel {
	return paymentModel{
		PaymentID: strings.TrimSpace(item.ID),
		LoanID:    strings.TrimSpace(item.LoanID),
		Amount:    item.Amount,
		Date:      item.Date.UTC(),
		Status:    item.Status,
		CreatedAt: item.CreatedAt.UTC(),
		UpdatedAt: item.UpdatedAt.UTC(),
	}
}

func (m paymentModel) toEntity() entities.Payment {
	return entities.Payment{
		ID:        m.PaymentID,
		LoanID:    m.LoanID,
		Amount:    m.Amount,
		Date:      m.Date.UTC(),
		Status:    m.Status,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
