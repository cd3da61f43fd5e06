// Package handler exposes the venues module over HTTP.
package handler

import (
	"net/http"

	"lieux_backend/internal/venues/service"
	"lieux_backend/internal/venues/transport"
	"lieux_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves public catalog and admin venue endpoints.
type Handler struct {
	svc *service.Service
}

// New creates the venues handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPublished handles GET /venues.
func (h *Handler) ListPublished(c *gin.Context) {
	var req transport.ListVenuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", nil)
		return
	}

	resp, err := h.svc.ListPublished(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// GetBySlug handles GET /venues/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	resp, err := h.svc.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// ListAll handles GET /admin/venues.
func (h *Handler) ListAll(c *gin.Context) {
	resp, err := h.svc.ListAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Get handles GET /admin/venues/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseVenueID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Create handles POST /admin/venues.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

// Update handles PATCH /admin/venues/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseVenueID(c)
	if !ok {
		return
	}

	var req transport.UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Delete handles DELETE /admin/venues/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseVenueID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deleted"})
}

// RequestImageUpload handles POST /admin/venues/:id/images/upload-url.
func (h *Handler) RequestImageUpload(c *gin.Context) {
	id, ok := parseVenueID(c)
	if !ok {
		return
	}

	var req transport.RequestImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := h.svc.RequestImageUpload(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// ConfirmImage handles POST /admin/venues/:id/images.
func (h *Handler) ConfirmImage(c *gin.Context) {
	id, ok := parseVenueID(c)
	if !ok {
		return
	}

	var req transport.ConfirmImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := h.svc.ConfirmImage(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

// DeleteImage handles DELETE /admin/venues/:id/images/:imageId.
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := parseVenueID(c)
	if !ok {
		return
	}
	imageID, err := uuid.Parse(c.Param("imageId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid image id", nil)
		return
	}

	if err := h.svc.DeleteImage(c.Request.Context(), id, imageID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deleted"})
}

func parseVenueID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid venue id", nil)
		return uuid.Nil, false
	}
	return id, true
}
