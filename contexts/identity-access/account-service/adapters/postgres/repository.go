package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loanbook/contexts/identity-access/account-service/domain/entities"
	domainerrors "loanbook/contexts/identity-access/account-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
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
	return &Repository{db: db, logger: logger}
}

// Migrate creates or updates the accounts table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&accountModel{})
}

func (r *Repository) Create(ctx context.Context, account entities.Account) (entities.Account, error) {
	row := accountModelFromEntity(account)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Account{}, domainerrors.ErrEmailTaken
		}
		return entities.Account{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context, skip int, limit int) ([]entities.Account, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&accountModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []accountModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Offset(skip).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]entities.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toEntity())
	}
	return accounts, total, nil
}

func (r *Repository) Update(ctx context.Context, account entities.Account) (entities.Account, error) {
	row := accountModelFromEntity(account)
	result := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", account.ID).
		Updates(map[string]any{
			"name":       row.Name,
			"email":      row.Email,
			"phone":      row.Phone,
			"role":       row.Role,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return entities.Account{}, domainerrors.ErrEmailTaken
		}
		return entities.Account{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return account, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("account_id = ?", id).
		Delete(&accountModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}
	return nil
}

// AccountExists satisfies the lending-core account directory port.
func (r *Repository) AccountExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", id).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type accountModel struct {
	AccountID    string    `gorm:"column:account_id;primaryKey"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	Phone        *string   `gorm:"column:phone"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "accounts"
}

func (m accountModel) toEntity() entities.Account {
	return entities.Account{
		ID:           m.AccountID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func accountModelFromEntity(account entities.Account) accountModel {
	return accountModel{
		AccountID:    account.ID,
		Name:         account.Name,
		Email:        account.Email,
		Phone:        account.Phone,
		PasswordHash: account.PasswordHash,
		Role:         account.Role,
		CreatedAt:    account.CreatedAt.UTC(),
		UpdatedAt:    account.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
