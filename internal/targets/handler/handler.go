package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit_portal_backend/internal/targets/service"
	"recruit_portal_backend/internal/targets/transport"
	"recruit_portal_backend/platform/httpkit"
	"recruit_portal_backend/platform/validator"
)

// Handler handles HTTP requests for monthly targets.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new monthly targets handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Get returns one month's target, or the latest one.
// GET /api/v1/targets?year_month=2026-01
func (h *Handler) Get(c *gin.Context) {
	var req transport.GetTargetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	target, err := h.svc.ForMonth(c.Request.Context(), req.YearMonth)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TargetEnvelope{Data: target})
}

// Upsert creates or replaces a month's target (admin only).
// PUT /api/v1/admin/targets
func (h *Handler) Upsert(c *gin.Context) {
	identity, ok := httpkit.RequireIdentity(c)
	if !ok {
		return
	}

	var req transport.UpsertTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	target, err := h.svc.Upsert(c.Request.Context(), identity.UserID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TargetEnvelope{Data: &target})
}
