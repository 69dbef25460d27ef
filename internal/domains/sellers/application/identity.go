package application

import (
	"context"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

var (
	_ ports.Identity = (*SharedSellerIdentity)(nil)
	_ ports.Identity = (*TokenIdentity)(nil)
)

// SharedSellerIdentity attributes every request to one statically configured
// seller and disables per-tenant ownership checks.
type SharedSellerIdentity struct {
	sellerID string
}

// NewSharedSellerIdentity builds the shared-seller strategy.
func NewSharedSellerIdentity(sellerID string) *SharedSellerIdentity {
	return &SharedSellerIdentity{sellerID: sellerID}
}

func (s *SharedSellerIdentity) ResolveSellerID(ctx context.Context) (string, error) {
	if s.sellerID == "" {
		return "", ports.ErrUnauthenticated
	}
	return s.sellerID, nil
}

func (s *SharedSellerIdentity) EnforceOwnership() bool { return false }

// TokenIdentity resolves the seller from the authenticated subject placed on
// the context by the auth middleware, and enforces per-seller ownership.
type TokenIdentity struct{}

// NewTokenIdentity builds the per-seller strategy.
func NewTokenIdentity() *TokenIdentity { return &TokenIdentity{} }

func (t *TokenIdentity) ResolveSellerID(ctx context.Context) (string, error) {
	id, ok := ports.SellerIDFromContext(ctx)
	if !ok {
		return "", ports.ErrUnauthenticated
	}
	return id, nil
}

func (t *TokenIdentity) EnforceOwnership() bool { return true }
