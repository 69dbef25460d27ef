package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/application"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

// RequireAuth verifies the bearer token and stores the seller id on the
// request context for downstream identity resolution.
func RequireAuth(tokens *application.TokenIssuer, responder *sharederrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.Header("WWW-Authenticate", `Bearer error="invalid_request"`)
			responder.Respond(c, sharederrors.ErrUnauthorized.WithDetail("missing bearer token"))
			c.Abort()
			return
		}
		sellerID, _, err := tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			responder.Respond(c, sharederrors.ErrUnauthorized.WithDetail("invalid bearer token"))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ports.ContextWithSellerID(c.Request.Context(), sellerID))
		c.Next()
	}
}
