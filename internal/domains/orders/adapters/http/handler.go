// Package http exposes the order endpoints of the orders context.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/backoffice/internal/domains/orders/application"
	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

// Handler wires HTTP transport with the orders service. Creation goes
// through the workflow orchestrator; reads and status updates hit the
// service directly.
type Handler struct {
	service      *application.Service
	orchestrator ports.WorkflowOrchestrator
	identity     sellerports.Identity
	responder    *sharederrors.Responder
}

func NewHandler(service *application.Service, orchestrator ports.WorkflowOrchestrator, identity sellerports.Identity, responder *sharederrors.Responder) *Handler {
	responder.AddMapper(ErrorMapper)
	return &Handler{service: service, orchestrator: orchestrator, identity: identity, responder: responder}
}

// ErrorMapper converts orders context errors into problem details.
func ErrorMapper(err error) (sharederrors.ProblemDetail, bool) {
	var notFound *ports.ProductNotFoundError
	if errors.As(err, &notFound) {
		return sharederrors.NewNotFoundProblem("product", notFound.ProductID), true
	}
	var stock *ports.InsufficientStockError
	if errors.As(err, &stock) {
		return sharederrors.NewInsufficientStockProblem(stock.ProductID, stock.ProductName, stock.Available, stock.Requested), true
	}
	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		return sharederrors.ErrConflict.WithDetail(transition.Error()), true
	}
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrOwnership), errors.Is(err, ports.ErrOwnershipViolation):
		return sharederrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.NewNotFoundProblem("order", ""), true
	case errors.Is(err, ports.ErrTransient):
		return sharederrors.ErrUnavailable.WithDetail("order creation failed on a transient storage error, retry the request"), true
	case errors.Is(err, sellerports.ErrUnauthenticated):
		return sharederrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return sharederrors.ProblemDetail{}, false
}

type orderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	CustomerID      string             `json:"customerId"`
	CustomerName    string             `json:"customerName" binding:"required"`
	CustomerEmail   string             `json:"customerEmail" binding:"omitempty,email"`
	CustomerPhone   string             `json:"customerPhone"`
	ShippingAddress string             `json:"shippingAddress"`
	Items           []orderItemRequest `json:"items" binding:"required,min=1"`
}

type orderItemResponse struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	SellerID        string              `json:"sellerId"`
	CustomerID      string              `json:"customerId"`
	CustomerName    string              `json:"customerName"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerPhone   string              `json:"customerPhone"`
	Items           []orderItemResponse `json:"items"`
	TotalAmount     float64             `json:"totalAmount"`
	Status          string              `json:"status"`
	ShippingAddress string              `json:"shippingAddress"`
	TrackingNumber  string              `json:"trackingNumber,omitempty"`
	OrderDate       time.Time           `json:"orderDate"`
	ShippedDate     *time.Time          `json:"shippedDate,omitempty"`
	DeliveredDate   *time.Time          `json:"deliveredDate,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ListOrders returns a page of orders.
// Get /api/orders
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	orders, err := h.service.ListOrders(c.Request.Context(), page, size)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o))
	}
	c.JSON(http.StatusOK, out)
}

// GetOrder returns one order by id.
// Get /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(order))
}

// CreateOrder runs the order creation workflow: stock is validated and
// decremented and the order persisted in one transaction.
// Post /api/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	sellerID, err := h.identity.ResolveSellerID(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}

	items := make([]ports.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ports.CreateOrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := h.orchestrator.CreateOrder(c.Request.Context(), sellerID, ports.CreateOrderInput{
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	}, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(order))
}

type updateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

// UpdateStatus moves an order along its lifecycle.
// Put /api/orders/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.TrackingNumber)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(order))
}

func toResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		SellerID:        o.SellerID,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		TrackingNumber:  o.TrackingNumber,
		OrderDate:       o.OrderDate,
		ShippedDate:     o.ShippedDate,
		DeliveredDate:   o.DeliveredDate,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
