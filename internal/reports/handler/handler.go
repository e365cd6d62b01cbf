package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit_portal_backend/internal/reports/service"
	"recruit_portal_backend/internal/reports/transport"
	"recruit_portal_backend/platform/httpkit"
	"recruit_portal_backend/platform/validator"
)

// Handler handles HTTP requests for funnel reports.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new reports handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Funnel returns the monthly funnel per consultant.
// GET /api/v1/reports/funnel?month=2026_01&consultant=...
func (h *Handler) Funnel(c *gin.Context) {
	req, ok := h.bindFunnelQuery(c)
	if !ok {
		return
	}

	resp, err := h.svc.Funnel(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// FunnelCSV downloads the monthly funnel as CSV.
// GET /api/v1/reports/funnel.csv?month=2026_01
func (h *Handler) FunnelCSV(c *gin.Context) {
	req, ok := h.bindFunnelQuery(c)
	if !ok {
		return
	}

	resp, err := h.svc.Funnel(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	writeFunnelCSV(c, resp)
}

// InterviewStatus returns interview-stage candidates per consultant.
// GET /api/v1/reports/interview-status?month=2026_01
func (h *Handler) InterviewStatus(c *gin.Context) {
	var req transport.MonthQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	resp, err := h.svc.InterviewCases(c.Request.Context(), req.Month)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Months lists the months with staged data.
// GET /api/v1/reports/months
func (h *Handler) Months(c *gin.Context) {
	resp, err := h.svc.Months(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) bindFunnelQuery(c *gin.Context) (transport.FunnelQuery, bool) {
	var req transport.FunnelQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return req, false
	}
	return req, true
}
