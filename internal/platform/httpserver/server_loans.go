package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	loanerrors "loanbook/contexts/lending-core/loan-service/domain/errors"
	loanports "loanbook/contexts/lending-core/loan-service/ports"
	loanhttp "loanbook/contexts/lending-core/loan-service/transport/http"
)

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req loanhttp.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLoanError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	// A borrower creating a loan for themselves may omit ownerId.
	if req.OwnerID == "" {
		req.OwnerID = principal.ID
	}

	resp, err := s.loans.Handler.CreateHandler(r.Context(), principal, req)
	if err != nil {
		writeLoanDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	skip, limit, err := queryPage(r)
	if err != nil {
		writeLoanError(w, http.StatusBadRequest, "invalid_pagination", err.Error())
		return
	}
	query := r.URL.Query()
	filter := loanports.LoanFilter{
		Status:  query.Get("status"),
		OwnerID: query.Get("owner_id"),
		Skip:    skip,
		Limit:   limit,
	}

	resp, err := s.loans.Handler.ListHandler(r.Context(), principal, filter)
	if err != nil {
		writeLoanDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	resp, err := s.loans.Handler.GetHandler(r.Context(), principal, r.PathValue("loan_id"))
	if err != nil {
		writeLoanDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req loanhttp.UpdateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLoanError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.loans.Handler.UpdateHandler(r.Context(), principal, r.PathValue("loan_id"), req)
	if err != nil {
		writeLoanDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := s.loans.Handler.DeleteHandler(r.Context(), principal, r.PathValue("loan_id")); err != nil {
		writeLoanDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeLoanDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loanerrors.ErrInvalidBorrowerName),
		errors.Is(err, loanerrors.ErrInvalidAmount),
		errors.Is(err, loanerrors.ErrInvalidInterestRate),
		errors.Is(err, loanerrors.ErrInvalidLoanTerm),
		errors.Is(err, loanerrors.ErrInvalidMonthlyPayment),
		errors.Is(err, loanerrors.ErrInvalidLoanStatus):
		writeLoanError(w, http.StatusBadRequest, "invalid_loan_input", err.Error())
	case errors.Is(err, loanerrors.ErrOwnerAccountNotFound):
		writeLoanError(w, http.StatusNotFound, "owner_not_found", err.Error())
	case errors.Is(err, loanerrors.ErrLoanNotFound):
		writeLoanError(w, http.StatusNotFound, "loan_not_found", err.Error())
	case errors.Is(err, loanerrors.ErrLoanHasPayments):
		writeLoanError(w, http.StatusConflict, "loan_has_payments", err.Error())
	case errors.Is(err, loanerrors.ErrForbidden):
		writeLoanError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeLoanError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLoanError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, loanhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
