package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	accounterrors "loanbook/contexts/identity-access/account-service/domain/errors"
	accounthttp "loanbook/contexts/identity-access/account-service/transport/http"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.accounts.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.accounts.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.accounts.Handler.RefreshHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelf(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	resp, err := s.accounts.Handler.GetHandler(r.Context(), principal, principal.ID)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	skip, limit, err := queryPage(r)
	if err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_pagination", err.Error())
		return
	}

	resp, err := s.accounts.Handler.ListHandler(r.Context(), principal, skip, limit)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	resp, err := s.accounts.Handler.GetHandler(r.Context(), principal, r.PathValue("account_id"))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req accounthttp.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.accounts.Handler.UpdateHandler(r.Context(), principal, r.PathValue("account_id"), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := s.accounts.Handler.DeleteHandler(r.Context(), principal, r.PathValue("account_id")); err != nil {
		writeAccountDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeAccountDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounterrors.ErrInvalidName),
		errors.Is(err, accounterrors.ErrInvalidEmail),
		errors.Is(err, accounterrors.ErrInvalidPassword),
		errors.Is(err, accounterrors.ErrInvalidRole):
		writeAccountError(w, http.StatusBadRequest, "invalid_account_input", err.Error())
	case errors.Is(err, accounterrors.ErrEmailTaken):
		writeAccountError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidCredentials):
		writeAccountError(w, http.StatusUnauthorized, "invalid_credentials", "incorrect email or password")
	case errors.Is(err, accounterrors.ErrUnauthenticated):
		writeUnauthorized(w)
	case errors.Is(err, accounterrors.ErrRoleChangeDenied):
		writeAccountError(w, http.StatusForbidden, "role_change_denied", err.Error())
	case errors.Is(err, accounterrors.ErrForbidden):
		writeAccountError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, accounterrors.ErrAccountNotFound):
		writeAccountError(w, http.StatusNotFound, "account_not_found", err.Error())
	default:
		writeAccountError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAccountError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accounthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
