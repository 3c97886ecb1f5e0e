package ports

import (
	"context"
	"time"

	"loanbook/contexts/identity-access/account-service/domain/entities"
	tokens "loanbook/contexts/identity-access/token-service"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts id generation for new accounts.
type IDGenerator interface {
	NewID() string
}

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues and verifies the two credential kinds. Satisfied by the
// token-service.
type TokenService interface {
	IssueAccess(subject string, email string, role string) (string, error)
	IssueRefresh(subject string) (string, error)
	VerifyAccess(raw string) (tokens.Claims, bool)
	VerifyRefresh(raw string) (tokens.Claims, bool)
}

// Repository is the account persistence boundary.
type Repository interface {
	// Create persists a new account; a duplicate email yields ErrEmailTaken.
	Create(ctx context.Context, account entities.Account) (entities.Account, error)
	GetByID(ctx context.Context, id string) (entities.Account, error)
	GetByEmail(ctx context.Context, email string) (entities.Account, error)
	List(ctx context.Context, skip int, limit int) ([]entities.Account, int64, error)
	Update(ctx context.Context, account entities.Account) (entities.Account, error)
	Delete(ctx context.Context, id string) error
}
