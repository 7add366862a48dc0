package auth

import (
	"context"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

// Provider resolves a bearer token to the acting user. The core is
// user-scoped but identity-agnostic; this is the only identity surface.
type Provider interface {
	ValidateTokenLocal(token string) (*internal.User, error)
	ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error)
}
