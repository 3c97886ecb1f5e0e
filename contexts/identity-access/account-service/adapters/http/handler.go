package httpadapter

import (
	"context"
	"log/slog"

	"loanbook/contexts/identity-access/account-service/application"
	"loanbook/contexts/identity-access/account-service/domain/entities"
	httptransport "loanbook/contexts/identity-access/account-service/transport/http"
	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterHandler(
	ctx context.Context,
	req httptransport.RegisterRequest,
) (httptransport.AccountResponse, error) {
	account, err := h.Service.Register(ctx, application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return accountResponse(account), nil
}

func (h Handler) LoginHandler(
	ctx context.Context,
	req httptransport.LoginRequest,
) (httptransport.TokenResponse, error) {
	pair, err := h.Service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httptransport.TokenResponse{}, err
	}
	return tokenResponse(pair.AccessToken, pair.RefreshToken), nil
}

func (h Handler) RefreshHandler(
	ctx context.Context,
	req httptransport.RefreshRequest,
) (httptransport.TokenResponse, error) {
	pair, err := h.Service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return httptransport.TokenResponse{}, err
	}
	return tokenResponse(pair.AccessToken, pair.RefreshToken), nil
}

func (h Handler) ListHandler(
	ctx context.Context,
	principal authzentities.Principal,
	skip int,
	limit int,
) (httptransport.AccountListResponse, error) {
	accounts, total, err := h.Service.List(ctx, principal, skip, limit)
	if err != nil {
		return httptransport.AccountListResponse{}, err
	}
	items := make([]httptransport.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, accountResponse(account))
	}
	return httptransport.AccountListResponse{Accounts: items, Total: total}, nil
}

func (h Handler) GetHandler(
	ctx context.Context,
	principal authzentities.Principal,
	accountID string,
) (httptransport.AccountResponse, error) {
	account, err := h.Service.Get(ctx, principal, accountID)
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return accountResponse(account), nil
}

func (h Handler) UpdateHandler(
	ctx context.Context,
	principal authzentities.Principal,
	accountID string,
	req httptransport.UpdateAccountRequest,
) (httptransport.AccountResponse, error) {
	account, err := h.Service.Update(ctx, principal, accountID, entities.AccountPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return accountResponse(account), nil
}

func (h Handler) DeleteHandler(
	ctx context.Context,
	principal authzentities.Principal,
	accountID string,
) error {
	return h.Service.Delete(ctx, principal, accountID)
}

func accountResponse(account entities.Account) httptransport.AccountResponse {
	return httptransport.AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Phone:     account.Phone,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

func tokenResponse(accessToken string, refreshToken string) httptransport.TokenResponse {
	return httptransport.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}
}
