package providers

import (
	"context"

	"github.com/medreportai/companion/internal/domain/entities"
)

// IdentityProvider resolves the current authenticated principal.
// Implementations must already hold a resolved identity; resolution is
// synchronous and fails with an unauthenticated error when none exists.
type IdentityProvider interface {
	CurrentPrincipal(ctx context.Context) (*entities.Principal, error)
}
