package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/pkg/config"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

type contextKey struct{}

var principalKey contextKey

// WithPrincipal returns a context carrying an authenticated principal
func WithPrincipal(ctx context.Context, principal *entities.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// ContextProvider resolves the principal attached to the request
// context, falling back to a statically configured identity. This
// makes the acting user an explicit dependency instead of ambient
// session state.
type ContextProvider struct {
	fallback *entities.Principal
}

// NewContextProvider creates an identity provider. The fallback may be
// nil, in which case requests without a principal are unauthenticated.
func NewContextProvider(cfg *config.IdentityConfig) *ContextProvider {
	var fallback *entities.Principal
	if cfg != nil && cfg.Email != "" {
		fallback = &entities.Principal{
			UID:   uuid.New().String(),
			Email: cfg.Email,
			Name:  cfg.Name,
		}
	}
	return &ContextProvider{fallback: fallback}
}

// CurrentPrincipal returns the authenticated principal or an
// unauthenticated error when none is available
func (p *ContextProvider) CurrentPrincipal(ctx context.Context) (*entities.Principal, error) {
	if principal, ok := ctx.Value(principalKey).(*entities.Principal); ok && principal != nil && principal.Email != "" {
		return principal, nil
	}
	if p.fallback != nil {
		return p.fallback, nil
	}
	return nil, apperrors.NewUnauthenticatedError("no authenticated user found")
}

var _ providers.IdentityProvider = (*ContextProvider)(nil)
