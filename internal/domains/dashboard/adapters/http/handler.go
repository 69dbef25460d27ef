// Package http exposes the dashboard stats endpoint.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/backoffice/internal/domains/dashboard/application"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

// Handler wires HTTP transport with the dashboard service.
type Handler struct {
	service   *application.Service
	responder *sharederrors.Responder
}

func NewHandler(service *application.Service, responder *sharederrors.Responder) *Handler {
	return &Handler{service: service, responder: responder}
}

// Stats returns the caller's aggregated dashboard numbers.
// GET /api/dashboard
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
