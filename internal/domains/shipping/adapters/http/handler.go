// Package http exposes the shipment tracking endpoints.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	"github.com/sellerdesk/backoffice/internal/domains/shipping/application"
	"github.com/sellerdesk/backoffice/internal/domains/shipping/domain"
	"github.com/sellerdesk/backoffice/internal/domains/shipping/ports"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

// Handler wires HTTP transport with the shipping service.
type Handler struct {
	service   *application.Service
	responder *sharederrors.Responder
}

func NewHandler(service *application.Service, responder *sharederrors.Responder) *Handler {
	responder.AddMapper(ErrorMapper)
	return &Handler{service: service, responder: responder}
}

// ErrorMapper converts shipping context errors into problem details.
func ErrorMapper(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrOwnership):
		return sharederrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.NewNotFoundProblem("shipping record", ""), true
	case errors.Is(err, sellerports.ErrUnauthenticated):
		return sharederrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return sharederrors.ProblemDetail{}, false
}

type createShippingRequest struct {
	OrderID               string     `json:"orderId" binding:"required"`
	TrackingNumber        string     `json:"trackingNumber"`
	Carrier               string     `json:"carrier"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate"`
}

type addEventRequest struct {
	Status      string `json:"status" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type eventResponse struct {
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type shippingResponse struct {
	ID                    string          `json:"id"`
	OrderID               string          `json:"orderId"`
	TrackingNumber        string          `json:"trackingNumber"`
	Carrier               string          `json:"carrier"`
	Status                string          `json:"status"`
	SellerID              string          `json:"sellerId"`
	CurrentLocation       string          `json:"currentLocation"`
	Events                []eventResponse `json:"events"`
	CreatedAt             time.Time       `json:"createdAt"`
	EstimatedDeliveryDate *time.Time      `json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time      `json:"actualDeliveryDate,omitempty"`
}

// ListShipping returns a page of shipments.
// Get /api/shipping
func (h *Handler) ListShipping(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	shipments, err := h.service.ListShipping(c.Request.Context(), page, size)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	out := make([]shippingResponse, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, toResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

// GetShipping returns one shipment by id.
// Get /api/shipping/:id
func (h *Handler) GetShipping(c *gin.Context) {
	shipping, err := h.service.GetShipping(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(shipping))
}

// GetByTrackingNumber returns one shipment the way a customer looks it up.
// Get /api/shipping/tracking/:trackingNumber
func (h *Handler) GetByTrackingNumber(c *gin.Context) {
	shipping, err := h.service.GetByTrackingNumber(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(shipping))
}

// GetByOrderID returns the shipment delivering an order.
// Get /api/shipping/order/:orderId
func (h *Handler) GetByOrderID(c *gin.Context) {
	shipping, err := h.service.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(shipping))
}

// CreateShipping starts tracking an order's delivery.
// Post /api/shipping
func (h *Handler) CreateShipping(c *gin.Context) {
	var req createShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	shipping, err := h.service.CreateShipping(c.Request.Context(), application.CreateShippingInput{
		OrderID:               req.OrderID,
		TrackingNumber:        req.TrackingNumber,
		Carrier:               req.Carrier,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(shipping))
}

// AddEvent appends a carrier progress report to a shipment.
// Post /api/shipping/:id/events
func (h *Handler) AddEvent(c *gin.Context) {
	var req addEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	shipping, err := h.service.AddEvent(c.Request.Context(), c.Param("id"), application.AddEventInput{
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(shipping))
}

// DeleteShipping removes a shipment.
// Delete /api/shipping/:id
func (h *Handler) DeleteShipping(c *gin.Context) {
	if err := h.service.DeleteShipping(c.Request.Context(), c.Param("id")); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toResponse(s *domain.Shipping) shippingResponse {
	events := make([]eventResponse, 0, len(s.Events))
	for _, event := range s.Events {
		events = append(events, eventResponse{
			Status:      string(event.Status),
			Location:    event.Location,
			Description: event.Description,
			Timestamp:   event.Timestamp,
		})
	}
	return shippingResponse{
		ID:                    s.ID,
		OrderID:               s.OrderID,
		TrackingNumber:        s.TrackingNumber,
		Carrier:               s.Carrier,
		Status:                string(s.Status),
		SellerID:              s.SellerID,
		CurrentLocation:       s.CurrentLocation,
		Events:                events,
		CreatedAt:             s.CreatedAt,
		EstimatedDeliveryDate: s.EstimatedDeliveryDate,
		ActualDeliveryDate:    s.ActualDeliveryDate,
	}
}
