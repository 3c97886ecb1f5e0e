package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authzerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "loanbook/contexts/identity-access/authorization-service/transport/http"
)

func (s *Server) handleAuthzCheck(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req authzhttp.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.authorization.Handler.CheckHandler(r.Context(), principal, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrInvalidPrincipal):
		writeUnauthorized(w)
	case errors.Is(err, authzerrors.ErrUnknownResourceType):
		writeAuthzError(w, http.StatusBadRequest, "unknown_resource_type", err.Error())
	case errors.Is(err, authzerrors.ErrLoanNotFound):
		writeAuthzError(w, http.StatusNotFound, "loan_not_found", err.Error())
	default:
		writeAuthzError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
