package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sellersmemory "github.com/sellerdesk/backoffice/internal/domains/sellers/adapters/memory"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/domain"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

func TestRegister_Success(t *testing.T) {
	svc := NewService(sellersmemory.NewRepository())

	seller, err := svc.Register(context.Background(), RegisterInput{
		CompanyName: "Acme GmbH",
		Email:       "owner@acme.test",
		TaxNumber:   "DE123456789",
	})

	require.NoError(t, err)
	require.NotEmpty(t, seller.ID)
	require.True(t, seller.Active)
	require.False(t, seller.CreatedAt.IsZero())
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	svc := NewService(sellersmemory.NewRepository())

	_, err := svc.Register(context.Background(), RegisterInput{CompanyName: "Acme", Email: "owner@acme.test"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{CompanyName: "Other", Email: "OWNER@acme.test"})
	require.ErrorIs(t, err, ports.ErrEmailTaken)
}

func TestRegister_Invalid(t *testing.T) {
	svc := NewService(sellersmemory.NewRepository())

	_, err := svc.Register(context.Background(), RegisterInput{Email: "owner@acme.test"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyCompanyName)

	_, err = svc.Register(context.Background(), RegisterInput{CompanyName: "Acme", Email: "not-an-email"})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "sellerdesk", "sellerdesk-api", time.Hour)

	token, expiresAt, err := issuer.Issue("seller-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	sellerID, verifiedExpiry, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "seller-42", sellerID)
	require.WithinDuration(t, expiresAt, verifiedExpiry, time.Second)
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", "sellerdesk", "sellerdesk-api", time.Hour)
	past := time.Now().Add(-3 * time.Hour)
	issuer.WithClock(func() time.Time { return past })

	token, _, err := issuer.Issue("seller-42")
	require.NoError(t, err)

	issuer.WithClock(time.Now)
	_, _, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenIssuer("secret", "sellerdesk", "sellerdesk-api", time.Hour)
	other := NewTokenIssuer("other-secret", "sellerdesk", "sellerdesk-api", time.Hour)

	token, _, err := other.Issue("seller-42")
	require.NoError(t, err)

	_, _, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSharedSellerIdentity(t *testing.T) {
	identity := NewSharedSellerIdentity("seller-1")

	sellerID, err := identity.ResolveSellerID(context.Background())
	require.NoError(t, err)
	require.Equal(t, "seller-1", sellerID)
	require.False(t, identity.EnforceOwnership())
}

func TestTokenIdentity(t *testing.T) {
	identity := NewTokenIdentity()
	require.True(t, identity.EnforceOwnership())

	_, err := identity.ResolveSellerID(context.Background())
	require.ErrorIs(t, err, ports.ErrUnauthenticated)

	ctx := ports.ContextWithSellerID(context.Background(), "seller-7")
	sellerID, err := identity.ResolveSellerID(ctx)
	require.NoError(t, err)
	require.Equal(t, "seller-7", sellerID)
}
