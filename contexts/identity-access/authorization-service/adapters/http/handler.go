package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"loanbook/contexts/identity-access/authorization-service/application/queries"
	"loanbook/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	"loanbook/contexts/identity-access/authorization-service/domain/services"
	httptransport "loanbook/contexts/identity-access/authorization-service/transport/http"
)

// Handler exposes the decision engine as an internal check endpoint, mirroring
// the guards the resource services apply in-process.
type Handler struct {
	AuthorizePayment queries.AuthorizePaymentUseCase
	Logger           *slog.Logger
}

// CheckHandler evaluates one resource access for the calling principal.
// Account and loan checks need only the supplied owner id; payment checks
// resolve the owner transitively from the payment's loan.
func (h Handler) CheckHandler(
	ctx context.Context,
	principal entities.Principal,
	request httptransport.CheckRequest,
) (httptransport.CheckResponse, error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var decision entities.Decision
	switch strings.ToLower(strings.TrimSpace(request.ResourceType)) {
	case "payment":
		var err error
		decision, err = h.AuthorizePayment.Execute(ctx, principal, request.ResourceID)
		if err != nil {
			return httptransport.CheckResponse{}, err
		}
	case "account", "loan":
		decision = services.Authorize(principal, request.OwnerID)
	default:
		return httptransport.CheckResponse{}, domainerrors.ErrUnknownResourceType
	}

	logger.Debug("authz check evaluated",
		"event", "authz_http_check_evaluated",
		"module", "identity-access/authorization-service",
		"layer", "transport",
		"principal_id", principal.ID,
		"resource_type", request.ResourceType,
		"resource_id", request.ResourceID,
		"allowed", decision.Allowed,
		"reason", decision.Reason,
	)
	return httptransport.CheckResponse{
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
	}, nil
}
