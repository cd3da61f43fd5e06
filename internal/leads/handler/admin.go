package handler

import (
	"context"
	"net/http"

	"lieux_backend/internal/leads/service"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResyncEnqueuer queues a background CRM re-export for a lead.
type ResyncEnqueuer interface {
	EnqueueLeadResync(ctx context.Context, leadID uuid.UUID) error
}

// AdminHandler serves the JWT-protected lead management endpoints.
type AdminHandler struct {
	svc      *service.Service
	enqueuer ResyncEnqueuer
}

// NewAdminHandler creates the admin leads handler.
func NewAdminHandler(svc *service.Service, enqueuer ResyncEnqueuer) *AdminHandler {
	return &AdminHandler{svc: svc, enqueuer: enqueuer}
}

// List handles GET /admin/leads.
func (h *AdminHandler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", nil)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Get handles GET /admin/leads/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpdateStatus handles PATCH /admin/leads/:id/status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Delete handles DELETE /admin/leads/:id.
func (h *AdminHandler) Delete(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deleted"})
}

// Resync handles POST /admin/leads/:id/resync. The export runs on the task
// queue; the endpoint only confirms enqueueing.
func (h *AdminHandler) Resync(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	// Verify the lead exists before queueing work for it.
	if _, err := h.svc.Get(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	if err := h.enqueuer.EnqueueLeadResync(c.Request.Context(), id); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to enqueue resync", nil)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "queued"})
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return uuid.Nil, false
	}
	return id, true
}
