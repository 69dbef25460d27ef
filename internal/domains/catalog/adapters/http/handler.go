// Package http exposes the product endpoints of the catalog context.
package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/backoffice/internal/domains/catalog/application"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler wires HTTP transport with the catalog service.
type Handler struct {
	service   *application.Service
	responder *sharederrors.Responder
}

func NewHandler(service *application.Service, responder *sharederrors.Responder) *Handler {
	responder.AddMapper(ErrorMapper)
	return &Handler{service: service, responder: responder}
}

// ErrorMapper converts catalog context errors into problem details.
func ErrorMapper(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrOwnership):
		return sharederrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.NewNotFoundProblem("product", ""), true
	case errors.Is(err, sellerports.ErrUnauthenticated):
		return sharederrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return sharederrors.ProblemDetail{}, false
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	Category    string  `json:"category"`
	SKU         string  `json:"sku"`
	ImageURL    string  `json:"imageUrl"`
}

type productUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	SKU         *string  `json:"sku"`
	ImageURL    *string  `json:"imageUrl"`
	IsActive    *bool    `json:"isActive"`
}

type productResponse struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	SKU         string    `json:"sku"`
	ImageURL    string    `json:"imageUrl"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListProducts returns a page of products.
// Get /api/products
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	products, err := h.service.ListProducts(c.Request.Context(), page, size)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// GetProduct returns one product by id.
// Get /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(product))
}

// CreateProduct stores a new product owned by the calling seller.
// Post /api/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	product, err := h.service.CreateProduct(c.Request.Context(), application.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(product))
}

// UpdateProduct applies a partial update to a product.
// Put /api/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	product, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), domain.Update{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
		Active:      req.IsActive,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(product))
}

// DeleteProduct removes a product.
// Delete /api/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportProducts ingests an uploaded spreadsheet, one product per row.
// Post /api/products/import
func (h *Handler) ImportProducts(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.responder.BadRequest(c, "multipart field \"file\" is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	defer src.Close()

	result, err := h.service.ImportProducts(c.Request.Context(), src)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"successCount": result.SuccessCount,
		"failureCount": result.FailureCount,
		"errors":       result.Errors,
		"message":      fmt.Sprintf("%d products imported, %d rows failed", result.SuccessCount, result.FailureCount),
	})
}

// ExportProducts streams the caller's catalog as a spreadsheet download.
// Get /api/products/export
func (h *Handler) ExportProducts(c *gin.Context) {
	payload, err := h.service.ExportProducts(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	sendWorkbook(c, "products.xlsx", payload)
}

// Template streams an empty import spreadsheet with the expected headers.
// Get /api/products/template
func (h *Handler) Template(c *gin.Context) {
	payload, err := h.service.Template()
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	sendWorkbook(c, "product-import-template.xlsx", payload)
}

func sendWorkbook(c *gin.Context, filename string, payload []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.DataFromReader(http.StatusOK, int64(len(payload)), xlsxContentType, bytes.NewReader(payload), nil)
}

func toResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		IsActive:    p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
