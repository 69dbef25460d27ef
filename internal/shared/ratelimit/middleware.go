package ratelimit

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gin-gonic/gin"

	sharederrors "github.com/sellerdesk/backoffice/internal/shared/errors"
)

// Middleware throttles requests per client IP before they reach handlers.
// When the limiter itself fails the request passes through; throttling is
// protection, not a dependency.
func Middleware(limiter Limiter, responder *sharederrors.Responder, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limiter unavailable, letting request through", "error", err)
			c.Next()
			return
		}
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			responder.Respond(c, sharederrors.ErrRateLimited.WithDetail(
				fmt.Sprintf("rate limit exceeded, retry in %s", (time.Duration(seconds)*time.Second).String()),
			))
			c.Abort()
			return
		}
		c.Next()
	}
}
