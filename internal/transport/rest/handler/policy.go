package handler

import (
	"encoding/json"
	"net/http"

	"garagehub/internal/model"
	"garagehub/internal/service"
	"garagehub/internal/transport/rest/middleware"
)

// PolicyHandler handles tenant tyre policy endpoints
type PolicyHandler struct {
	policySvc *service.PolicyService
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policySvc *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{policySvc: policySvc}
}

// Get handles GET /v1/policy/tyres
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	policy, err := h.policySvc.Get(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if policy == nil {
		writeError(w, http.StatusNotFound, "no tyre policy configured")
		return
	}

	writeJSON(w, http.StatusOK, policy)
}

// Update handles PUT /v1/policy/tyres
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var policy model.TenantTyrePolicy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.policySvc.Update(r.Context(), tenantID, &policy); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, policy)
}
