// Package http exposes the auth endpoints of the sellers context.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/application"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/domain"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

// Handler wires HTTP transport with the sellers service and token issuer.
type Handler struct {
	service   *application.Service
	tokens    *application.TokenIssuer
	responder *sharederrors.Responder
}

func NewHandler(service *application.Service, tokens *application.TokenIssuer, responder *sharederrors.Responder) *Handler {
	responder.AddMapper(ErrorMapper)
	return &Handler{service: service, tokens: tokens, responder: responder}
}

// ErrorMapper converts seller context errors into problem details.
func ErrorMapper(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrEmailTaken):
		return sharederrors.ErrConflict.WithDetail("seller email already registered"), true
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.NewNotFoundProblem("seller", ""), true
	case errors.Is(err, ports.ErrUnauthenticated), errors.Is(err, application.ErrInvalidToken):
		return sharederrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return sharederrors.ProblemDetail{}, false
}

type registerRequest struct {
	CompanyName string `json:"companyName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	TaxNumber   string `json:"taxNumber"`
}

type sellerResponse struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	TaxNumber   string    `json:"taxNumber"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type registerResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Seller    sellerResponse `json:"seller"`
}

// Register enrolls a seller and returns a signed bearer token.
// Post /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	seller, err := h.service.Register(c.Request.Context(), application.RegisterInput{
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		TaxNumber:   req.TaxNumber,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	token, expiresAt, err := h.tokens.Issue(seller.ID)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registerResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Seller:    toResponse(seller),
	})
}

type verifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyToken checks a bearer token and reports its subject and expiry.
// Post /api/auth/verify-token
func (h *Handler) VerifyToken(c *gin.Context) {
	var req verifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	sellerID, expiresAt, err := h.tokens.Verify(req.Token)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sellerId": sellerID, "expiresAt": expiresAt})
}

func toResponse(seller *domain.Seller) sellerResponse {
	return sellerResponse{
		ID:          seller.ID,
		CompanyName: seller.CompanyName,
		Email:       seller.Email,
		Phone:       seller.Phone,
		Address:     seller.Address,
		TaxNumber:   seller.TaxNumber,
		IsActive:    seller.Active,
		CreatedAt:   seller.CreatedAt,
	}
}
