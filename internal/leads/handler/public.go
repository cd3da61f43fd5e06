// Package handler exposes the leads module over HTTP.
package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"lieux_backend/internal/leads/service"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/platform/apperr"
	"lieux_backend/platform/httpkit"
	"lieux_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// maxSubmissionBytes bounds the contact-form body. The largest legitimate
// submission is a few KB of free text.
const maxSubmissionBytes = 64 << 10

// PublicHandler serves the unauthenticated contact endpoint.
type PublicHandler struct {
	svc *service.Service
	log *logger.Logger
}

// NewPublicHandler creates the public contact handler.
func NewPublicHandler(svc *service.Service, log *logger.Logger) *PublicHandler {
	return &PublicHandler{svc: svc, log: log}
}

// Submit handles POST /contact/submit.
func (h *PublicHandler) Submit(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmissionBytes))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "request body too large", nil)
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), c.ClientIP(), body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	httpkit.OK(c, resp)
}

// writeError maps intake errors onto the public response contract. Quota
// denials carry Retry-After and X-RateLimit-* headers so well-behaved clients
// can back off.
func (h *PublicHandler) writeError(c *gin.Context, err error) {
	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		h.log.HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusInternalServerError, err, c.ClientIP())
		httpkit.Error(c, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	switch domainErr.Kind {
	case apperr.KindRateLimited:
		retryAfter := 1
		limit := 0
		if details, ok := domainErr.Details.(transport.RateLimitDetails); ok {
			retryAfter = details.RetryAfterSeconds
			limit = details.Limit
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", "0")
		httpkit.JSON(c, http.StatusTooManyRequests, gin.H{
			"error":      "rate_limited",
			"message":    domainErr.Message,
			"retryAfter": retryAfter,
		})
	case apperr.KindDuplicate:
		httpkit.JSON(c, http.StatusTooManyRequests, gin.H{
			"error":   "duplicate_submission",
			"message": domainErr.Message,
		})
	case apperr.KindValidation:
		httpkit.JSON(c, http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": domainErr.Message,
			"details": domainErr.Details,
		})
	case apperr.KindBadRequest:
		httpkit.JSON(c, http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": domainErr.Message,
		})
	default:
		h.log.HTTPError(c.Request.Method, c.Request.URL.Path, http.StatusInternalServerError, err, c.ClientIP())
		httpkit.JSON(c, http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"details": domainErr.Message,
		})
	}
}
