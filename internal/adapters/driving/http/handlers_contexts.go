package http

import (
	"net/http"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// ContextListResponse is the context switcher payload
// @Description Contexts the caller can act as, plus the active one
type ContextListResponse struct {
	Contexts []domain.Context   `json:"contexts"`
	Active   domain.ContextView `json:"active"`
}

// handleListContexts godoc
// @Summary      List contexts
// @Description  Reloads balances and lists the contexts of the session in switcher order
// @Tags         Contexts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ContextListResponse
// @Router       /contexts [get]
func (s *Server) handleListContexts(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	contexts, err := s.contextService.List(r.Context(), authCtx)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list contexts")
		return
	}
	active, err := s.contextService.Active(r.Context(), authCtx)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get active context")
		return
	}

	writeJSON(w, http.StatusOK, ContextListResponse{Contexts: contexts, Active: *active})
}

// handleGetActiveContext godoc
// @Summary      Active context
// @Tags         Contexts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ContextView
// @Router       /contexts/active [get]
func (s *Server) handleGetActiveContext(w http.ResponseWriter, r *http.Request) {
	view, err := s.contextService.Active(r.Context(), GetAuthContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get active context")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleSetActiveContext godoc
// @Summary      Switch context
// @Description  Switches the session's active context. Unknown ids leave it unchanged.
// @Tags         Contexts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.SetActiveContextRequest  true  "Context"
// @Success      200      {object}  domain.ContextView
// @Failure      404      {object}  ErrorResponse  "Unknown context"
// @Router       /contexts/active [put]
func (s *Server) handleSetActiveContext(w http.ResponseWriter, r *http.Request) {
	var req driving.SetActiveContextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := s.contextService.SetActive(r.Context(), GetAuthContext(r.Context()), req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to switch context")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Billing endpoints

// handlePricing godoc
// @Summary      Pricing
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  domain.Pricing
// @Router       /billing/pricing [get]
func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.billingService.Pricing())
}

// handlePurchaseCredits godoc
// @Summary      Buy credits
// @Description  Individual owners and organization admins only
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Context ID"
// @Param        request  body      driving.PurchaseRequest  true  "Credits"
// @Success      201      {object}  driving.PurchaseResult
// @Failure      400      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse  "Helpers and members cannot purchase"
// @Failure      404      {object}  ErrorResponse  "Unknown context"
// @Router       /contexts/{id}/credits [post]
func (s *Server) handlePurchaseCredits(w http.ResponseWriter, r *http.Request) {
	var req driving.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.billingService.Purchase(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err, "purchase failed")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleListInvoices godoc
// @Summary      Invoices
// @Tags         Billing
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Context ID"
// @Success      200  {array}   domain.Invoice
// @Failure      404  {object}  ErrorResponse  "Unknown context"
// @Router       /contexts/{id}/invoices [get]
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.billingService.Invoices(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list invoices")
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}
