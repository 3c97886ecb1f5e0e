package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	account "loanbook/contexts/identity-access/account-service"
	accounterrors "loanbook/contexts/identity-access/account-service/domain/errors"
	accounthttp "loanbook/contexts/identity-access/account-service/transport/http"
	authorization "loanbook/contexts/identity-access/authorization-service"
	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	loan "loanbook/contexts/lending-core/loan-service"
	payment "loanbook/contexts/lending-core/payment-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "loanbook/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	accounts      account.Module
	loans         loan.Module
	payments      payment.Module
	authorization authorization.Module
}

func New(
	accounts account.Module,
	loans loan.Module,
	payments payment.Module,
	authorizationModule authorization.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		accounts:      accounts,
		loans:         loans,
		payments:      payments,
		authorization: authorizationModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /auth/me", s.handleSelf)

	s.mux.HandleFunc("GET /users", s.handleListAccounts)
	s.mux.HandleFunc("GET /users/{account_id}", s.handleGetAccount)
	s.mux.HandleFunc("PATCH /users/{account_id}", s.handleUpdateAccount)
	s.mux.HandleFunc("DELETE /users/{account_id}", s.handleDeleteAccount)

	s.mux.HandleFunc("POST /loans", s.handleCreateLoan)
	s.mux.HandleFunc("GET /loans", s.handleListLoans)
	s.mux.HandleFunc("GET /loans/{loan_id}", s.handleGetLoan)
	s.mux.HandleFunc("PATCH /loans/{loan_id}", s.handleUpdateLoan)
	s.mux.HandleFunc("DELETE /loans/{loan_id}", s.handleDeleteLoan)
	s.mux.HandleFunc("GET /loans/{loan_id}/payments", s.handleListLoanPayments)

	s.mux.HandleFunc("POST /payments", s.handleCreatePayment)
	s.mux.HandleFunc("GET /payments", s.handleListPayments)
	s.mux.HandleFunc("GET /payments/{payment_id}", s.handleGetPayment)
	s.mux.HandleFunc("PATCH /payments/{payment_id}", s.handleUpdatePayment)
	s.mux.HandleFunc("DELETE /payments/{payment_id}", s.handleDeletePayment)

	s.mux.HandleFunc("POST /authz/check", s.handleAuthzCheck)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// authenticate resolves the bearer token to a principal. Every failure mode
// is a uniform 401; the response never says why the token was rejected.
func (s *Server) authenticate(r *http.Request) (authzentities.Principal, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(strings.TrimSpace(scheme), "bearer") {
		return authzentities.Principal{}, accounterrors.ErrUnauthenticated
	}

	resolved, err := s.accounts.Service.Authenticate(r.Context(), strings.TrimSpace(token))
	if err != nil {
		return authzentities.Principal{}, err
	}
	return authzentities.Principal{
		ID:    resolved.ID,
		Email: resolved.Email,
		Role:  resolved.Role,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, accounthttp.ErrorResponse{
		Code:    "unauthorized",
		Message: "authentication required",
	})
}

func queryPage(r *http.Request) (skip int, limit int, err error) {
	query := r.URL.Query()
	if raw := query.Get("skip"); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("skip must be an integer")
		}
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("limit must be an integer")
		}
	}
	return skip, limit, nil
}
