package application

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"loanbook/contexts/identity-access/account-service/domain/entities"
	domainerrors "loanbook/contexts/identity-access/account-service/domain/errors"
	"loanbook/contexts/identity-access/account-service/domain/services"
	"loanbook/contexts/identity-access/account-service/ports"
	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	authzservices "loanbook/contexts/identity-access/authorization-service/domain/services"
)

const minPasswordLength = 6

// Service implements registration, the login/refresh token flows and the
// account resource operations.
type Service struct {
	Repo        ports.Repository
	Tokens      ports.TokenService
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
	Role     string
}

// Register creates a new account with a freshly hashed password. A duplicate
// email surfaces as ErrEmailTaken.
func (s Service) Register(ctx context.Context, in RegisterInput) (entities.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entities.Account{}, domainerrors.ErrInvalidName
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return entities.Account{}, err
	}
	if len(in.Password) < minPasswordLength {
		return entities.Account{}, domainerrors.ErrInvalidPassword
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = authzentities.RoleUser
	}
	if !authzentities.IsValidRole(role) {
		return entities.Account{}, domainerrors.ErrInvalidRole
	}

	passwordHash, err := services.HashPassword(in.Password)
	if err != nil {
		return entities.Account{}, err
	}

	now := s.now()
	account, err := s.Repo.Create(ctx, entities.Account{
		ID:           s.IDGenerator.NewID(),
		Name:         name,
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return entities.Account{}, err
	}

	resolveLogger(s.Logger).Info("account registered",
		"event", "account_registered",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", account.ID,
		"role", account.Role,
	)
	return account, nil
}

// Login verifies credentials and mints a token pair. An unknown email and a
// wrong password collapse into the same ErrInvalidCredentials so accounts
// cannot be enumerated.
func (s Service) Login(ctx context.Context, email string, password string) (ports.TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return ports.TokenPair{}, domainerrors.ErrInvalidCredentials
	}

	account, err := s.Repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return ports.TokenPair{}, domainerrors.ErrInvalidCredentials
		}
		return ports.TokenPair{}, err
	}
	if !services.CheckPassword(password, account.PasswordHash) {
		resolveLogger(s.Logger).Warn("login rejected",
			"event", "account_login_rejected",
			"module", "identity-access/account-service",
			"layer", "application",
			"account_id", account.ID,
		)
		return ports.TokenPair{}, domainerrors.ErrInvalidCredentials
	}
	return s.issuePair(account)
}

// Refresh exchanges a valid refresh token for a new pair. The account is
// re-read so the new access token carries current email and role claims.
func (s Service) Refresh(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	claims, ok := s.Tokens.VerifyRefresh(refreshToken)
	if !ok {
		return ports.TokenPair{}, domainerrors.ErrUnauthenticated
	}
	account, err := s.Repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return ports.TokenPair{}, domainerrors.ErrUnauthenticated
		}
		return ports.TokenPair{}, err
	}
	return s.issuePair(account)
}

// Authenticate resolves a bearer access token to its account. Every failure
// mode collapses into ErrUnauthenticated.
func (s Service) Authenticate(ctx context.Context, accessToken string) (entities.Account, error) {
	claims, ok := s.Tokens.VerifyAccess(accessToken)
	if !ok {
		return entities.Account{}, domainerrors.ErrUnauthenticated
	}
	account, err := s.Repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return entities.Account{}, domainerrors.ErrUnauthenticated
		}
		return entities.Account{}, err
	}
	return account, nil
}

// List returns a page of accounts; admin only.
func (s Service) List(
	ctx context.Context,
	principal authzentities.Principal,
	skip int,
	limit int,
) ([]entities.Account, int64, error) {
	if !principal.IsAdmin() {
		return nil, 0, domainerrors.ErrForbidden
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return s.Repo.List(ctx, skip, limit)
}

// Get returns one account. Non-admins may only read themselves; the ownership
// rule runs on the requested id before the fetch so existence of other
// accounts is not leaked to them.
func (s Service) Get(
	ctx context.Context,
	principal authzentities.Principal,
	id string,
) (entities.Account, error) {
	if decision := authzservices.Authorize(principal, id); !decision.Allowed {
		return entities.Account{}, domainerrors.ErrForbidden
	}
	return s.Repo.GetByID(ctx, id)
}

// Update merge-patches an account. Only supplied fields change; setting the
// role field requires admin even on the principal's own account.
func (s Service) Update(
	ctx context.Context,
	principal authzentities.Principal,
	id string,
	patch entities.AccountPatch,
) (entities.Account, error) {
	if decision := authzservices.Authorize(principal, id); !decision.Allowed {
		return entities.Account{}, domainerrors.ErrForbidden
	}
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return entities.Account{}, err
	}

	if patch.Role != nil && !authzservices.CanSetRole(principal) {
		return entities.Account{}, domainerrors.ErrRoleChangeDenied
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return entities.Account{}, domainerrors.ErrInvalidName
	}
	if patch.Email != nil {
		normalized, err := normalizeEmail(*patch.Email)
		if err != nil {
			return entities.Account{}, err
		}
		patch.Email = &normalized
	}
	if patch.Role != nil && !authzentities.IsValidRole(*patch.Role) {
		return entities.Account{}, domainerrors.ErrInvalidRole
	}

	updated := services.MergeAccount(existing, patch)
	updated.UpdatedAt = s.now()
	return s.Repo.Update(ctx, updated)
}

// Delete removes an account; admin only.
func (s Service) Delete(ctx context.Context, principal authzentities.Principal, id string) error {
	if !principal.IsAdmin() {
		return domainerrors.ErrForbidden
	}
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	resolveLogger(s.Logger).Info("account deleted",
		"event", "account_deleted",
		"module", "identity-access/account-service",
		"layer", "application",
		"account_id", id,
		"deleted_by", principal.ID,
	)
	return nil
}

func (s Service) issuePair(account entities.Account) (ports.TokenPair, error) {
	accessToken, err := s.Tokens.IssueAccess(account.ID, account.Email, account.Role)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refreshToken, err := s.Tokens.IssueRefresh(account.ID)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domainerrors.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domainerrors.ErrInvalidEmail
	}
	return email, nil
}
