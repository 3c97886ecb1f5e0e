package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authzerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	paymenterrors "loanbook/contexts/lending-core/payment-service/domain/errors"
	paymentports "loanbook/contexts/lending-core/payment-service/ports"
	paymenthttp "loanbook/contexts/lending-core/payment-service/transport/http"
)

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req paymenthttp.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.payments.Handler.CreateHandler(r.Context(), principal, req)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	skip, limit, err := queryPage(r)
	if err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_pagination", err.Error())
		return
	}
	query := r.URL.Query()
	filter := paymentports.PaymentFilter{
		Status: query.Get("status"),
		LoanID: query.Get("loan_id"),
		Skip:   skip,
		Limit:  limit,
	}

	resp, err := s.payments.Handler.ListHandler(r.Context(), principal, filter)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListLoanPayments(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	skip, limit, err := queryPage(r)
	if err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_pagination", err.Error())
		return
	}

	resp, err := s.payments.Handler.ListByLoanHandler(
		r.Context(),
		principal,
		r.PathValue("loan_id"),
		skip,
		limit,
	)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	resp, err := s.payments.Handler.GetHandler(r.Context(), principal, r.PathValue("payment_id"))
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req paymenthttp.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.payments.Handler.UpdateHandler(r.Context(), principal, r.PathValue("payment_id"), req)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	principal, err := s.authenticate(r)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := s.payments.Handler.DeleteHandler(r.Context(), principal, r.PathValue("payment_id")); err != nil {
		writePaymentDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writePaymentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymenterrors.ErrInvalidPaymentAmount),
		errors.Is(err, paymenterrors.ErrInvalidPaymentStatus):
		writePaymentError(w, http.StatusBadRequest, "invalid_payment_input", err.Error())
	case errors.Is(err, authzerrors.ErrLoanNotFound):
		writePaymentError(w, http.StatusNotFound, "loan_not_found", err.Error())
	case errors.Is(err, paymenterrors.ErrPaymentNotFound):
		writePaymentError(w, http.StatusNotFound, "payment_not_found", err.Error())
	case errors.Is(err, paymenterrors.ErrForbidden):
		writePaymentError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writePaymentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePaymentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, paymenthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
