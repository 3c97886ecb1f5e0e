package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	account "loanbook/contexts/identity-access/account-service"
	accounthttp "loanbook/contexts/identity-access/account-service/transport/http"
	authorization "loanbook/contexts/identity-access/authorization-service"
	authzmemory "loanbook/contexts/identity-access/authorization-service/adapters/memory"
	loan "loanbook/contexts/lending-core/loan-service"
	loanmemory "loanbook/contexts/lending-core/loan-service/adapters/memory"
	loanhttp "loanbook/contexts/lending-core/loan-service/transport/http"
	payment "loanbook/contexts/lending-core/payment-service"
	paymentmemory "loanbook/contexts/lending-core/payment-service/adapters/memory"
	paymenthttp "loanbook/contexts/lending-core/payment-service/transport/http"
)

// newTestServer composes all four modules over in-memory adapters, wired the
// same way bootstrap wires them: the loan store serves ownership lookups and
// the authorization cache doubles as the loan service's invalidator.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := account.NewInMemoryModule(logger)

	loanStore := loanmemory.NewStore()
	ownershipCache := authzmemory.NewStore()
	authz := authorization.NewModule(authorization.Dependencies{
		Loans:    loanStore,
		Cache:    ownershipCache,
		Clock:    loanStore,
		CacheTTL: 5 * time.Minute,
		Logger:   logger,
	})

	paymentStore := paymentmemory.NewStore()
	loans := loan.NewModule(loan.Dependencies{
		Repository:  loanStore,
		Accounts:    accounts.Store,
		Payments:    paymentStore,
		Invalidator: ownershipCache,
		Clock:       loanStore,
		IDGenerator: loanStore,
		Logger:      logger,
	})
	payments := payment.NewModule(payment.Dependencies{
		Repository:  paymentStore,
		Authorizer:  authz.AuthorizePayment,
		Scope:       authz.OwnedLoanScope,
		Clock:       paymentStore,
		IDGenerator: paymentStore,
		Logger:      logger,
	})

	return New(accounts, loans, payments, authz, logger, "")
}

func doRequest(
	t *testing.T,
	srv *Server,
	method string,
	target string,
	token string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

// signUp registers an account and logs it in, returning the account id and a
// bearer access token.
func signUp(t *testing.T, srv *Server, name string, email string, role string) (string, string) {
	t.Helper()

	rec := doRequest(t, srv, http.MethodPost, "/auth/register", "", accounthttp.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body %s", email, rec.Code, rec.Body.String())
	}
	var created accounthttp.AccountResponse
	decodeBody(t, rec, &created)

	rec = doRequest(t, srv, http.MethodPost, "/auth/login", "", accounthttp.LoginRequest{
		Email:    email,
		Password: "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body %s", email, rec.Code, rec.Body.String())
	}
	var pair accounthttp.TokenResponse
	decodeBody(t, rec, &pair)
	return created.ID, pair.AccessToken
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Fatalf("status field = %q, want %q", body["status"], "healthy")
	}
}

func TestLoanLifecycleAcrossAccounts(t *testing.T) {
	srv := newTestServer(t)

	aliceID, aliceToken := signUp(t, srv, "Alice", "alice@example.com", "")
	_, bobToken := signUp(t, srv, "Bob", "bob@example.com", "")
	_, adminToken := signUp(t, srv, "Carol", "carol@example.com", "admin")

	// Alice creates a loan for herself; ownerId defaults to the principal.
	rec := doRequest(t, srv, http.MethodPost, "/loans", aliceToken, loanhttp.CreateLoanRequest{
		BorrowerName: "Alice",
		Amount:       10000,
		InterestRate: 5,
		LoanTerm:     24,
		StartDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var aliceLoan loanhttp.LoanResponse
	decodeBody(t, rec, &aliceLoan)
	if aliceLoan.OwnerID != aliceID {
		t.Fatalf("OwnerID = %q, want %q", aliceLoan.OwnerID, aliceID)
	}
	if aliceLoan.Status != "pending" {
		t.Fatalf("Status = %q, want %q", aliceLoan.Status, "pending")
	}
	if aliceLoan.MonthlyPayment != 438.71 {
		t.Fatalf("MonthlyPayment = %v, want 438.71", aliceLoan.MonthlyPayment)
	}

	// Bob cannot read it, Alice and the admin can.
	rec = doRequest(t, srv, http.MethodGet, "/loans/"+aliceLoan.ID, bobToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bob get loan: status = %d, want 403", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/loans/"+aliceLoan.ID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("alice get loan: status = %d", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/loans/"+aliceLoan.ID, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin get loan: status = %d", rec.Code)
	}

	// A loan id that does not exist is 404 for everyone.
	rec = doRequest(t, srv, http.MethodGet, "/loans/loan_missing", bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing loan: status = %d, want 404", rec.Code)
	}

	// Listing is scoped: Bob sees nothing, the admin sees everything.
	rec = doRequest(t, srv, http.MethodGet, "/loans", bobToken, nil)
	var bobLoans loanhttp.LoanListResponse
	decodeBody(t, rec, &bobLoans)
	if bobLoans.Total != 0 || len(bobLoans.Loans) != 0 {
		t.Fatalf("bob loan list: total = %d, len = %d, want empty", bobLoans.Total, len(bobLoans.Loans))
	}
	rec = doRequest(t, srv, http.MethodGet, "/loans", adminToken, nil)
	var adminLoans loanhttp.LoanListResponse
	decodeBody(t, rec, &adminLoans)
	if adminLoans.Total != 1 {
		t.Fatalf("admin loan list: total = %d, want 1", adminLoans.Total)
	}

	// Alice pays against her loan.
	rec = doRequest(t, srv, http.MethodPost, "/payments", aliceToken, paymenthttp.CreatePaymentRequest{
		LoanID: aliceLoan.ID,
		Amount: 438.71,
		Date:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var alicePayment paymenthttp.PaymentResponse
	decodeBody(t, rec, &alicePayment)
	if alicePayment.Status != "pending" {
		t.Fatalf("payment status = %q, want %q", alicePayment.Status, "pending")
	}

	// Bob cannot pay against Alice's loan, and a missing loan stays 404.
	rec = doRequest(t, srv, http.MethodPost, "/payments", bobToken, paymenthttp.CreatePaymentRequest{
		LoanID: aliceLoan.ID,
		Amount: 100,
		Date:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bob create payment: status = %d, want 403", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPost, "/payments", bobToken, paymenthttp.CreatePaymentRequest{
		LoanID: "loan_missing",
		Amount: 100,
		Date:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("payment on missing loan: status = %d, want 404", rec.Code)
	}

	// Payment listings scope to owned loans.
	rec = doRequest(t, srv, http.MethodGet, "/payments", aliceToken, nil)
	var alicePayments paymenthttp.PaymentListResponse
	decodeBody(t, rec, &alicePayments)
	if alicePayments.Total != 1 {
		t.Fatalf("alice payment list: total = %d, want 1", alicePayments.Total)
	}
	rec = doRequest(t, srv, http.MethodGet, "/payments", bobToken, nil)
	var bobPayments paymenthttp.PaymentListResponse
	decodeBody(t, rec, &bobPayments)
	if bobPayments.Total != 0 || len(bobPayments.Payments) != 0 {
		t.Fatalf("bob payment list: total = %d, want 0", bobPayments.Total)
	}
	rec = doRequest(t, srv, http.MethodGet, "/loans/"+aliceLoan.ID+"/payments", bobToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bob list loan payments: status = %d, want 403", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/loans/"+aliceLoan.ID+"/payments", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("alice list loan payments: status = %d", rec.Code)
	}

	// A loan with payments refuses deletion until the payment is gone.
	rec = doRequest(t, srv, http.MethodDelete, "/loans/"+aliceLoan.ID, aliceToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete loan with payments: status = %d, want 409", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, "/payments/"+alicePayment.ID, aliceToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete payment: status = %d, want 204", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodDelete, "/loans/"+aliceLoan.ID, aliceToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete loan: status = %d, want 204", rec.Code)
	}
}

func TestLoanUpdateMergePatch(t *testing.T) {
	srv := newTestServer(t)

	_, aliceToken := signUp(t, srv, "Alice", "alice@example.com", "")

	rec := doRequest(t, srv, http.MethodPost, "/loans", aliceToken, loanhttp.CreateLoanRequest{
		BorrowerName: "Alice",
		Amount:       5000,
		InterestRate: 4,
		LoanTerm:     12,
		StartDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created loanhttp.LoanResponse
	decodeBody(t, rec, &created)

	status := "active"
	rec = doRequest(t, srv, http.MethodPatch, "/loans/"+created.ID, aliceToken, loanhttp.UpdateLoanRequest{
		Status: &status,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch loan: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated loanhttp.LoanResponse
	decodeBody(t, rec, &updated)
	if updated.Status != "active" {
		t.Fatalf("Status = %q, want %q", updated.Status, "active")
	}
	if updated.Amount != created.Amount || updated.BorrowerName != created.BorrowerName {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	bogus := "closed"
	rec = doRequest(t, srv, http.MethodPatch, "/loans/"+created.ID, aliceToken, loanhttp.UpdateLoanRequest{
		Status: &bogus,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("patch with invalid status: status = %d, want 400", rec.Code)
	}
}

func TestRefreshRotation(t *testing.T) {
	srv := newTestServer(t)

	_, _ = signUp(t, srv, "Alice", "alice@example.com", "")

	rec := doRequest(t, srv, http.MethodPost, "/auth/login", "", accounthttp.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	var pair accounthttp.TokenResponse
	decodeBody(t, rec, &pair)

	rec = doRequest(t, srv, http.MethodPost, "/auth/refresh", "", accounthttp.RefreshRequest{
		RefreshToken: pair.RefreshToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var rotated accounthttp.TokenResponse
	decodeBody(t, rec, &rotated)
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatalf("rotated pair incomplete: %+v", rotated)
	}

	// The new access token authenticates.
	rec = doRequest(t, srv, http.MethodGet, "/auth/me", rotated.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with rotated token: status = %d", rec.Code)
	}
	var me accounthttp.AccountResponse
	decodeBody(t, rec, &me)
	if me.Email != "alice@example.com" {
		t.Fatalf("me email = %q", me.Email)
	}
}
