package ports

import (
	"context"
	"errors"
)

// ErrUnauthenticated signals that no seller identity could be resolved for
// the request.
var ErrUnauthenticated = errors.New("seller identity not resolved")

// Identity resolves which seller is acting on a request and whether
// per-seller ownership checks apply. Implementations are chosen once at
// startup: a static shared seller, or the subject of a verified token.
type Identity interface {
	ResolveSellerID(ctx context.Context) (string, error)
	EnforceOwnership() bool
}

type sellerIDKey struct{}

// ContextWithSellerID stores an authenticated seller id on the context.
// The auth middleware is the only writer.
func ContextWithSellerID(ctx context.Context, sellerID string) context.Context {
	return context.WithValue(ctx, sellerIDKey{}, sellerID)
}

// SellerIDFromContext returns the authenticated seller id, if any.
func SellerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sellerIDKey{}).(string)
	return id, ok && id != ""
}
