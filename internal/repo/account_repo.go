package repo

import (
	"context"

	"github.com/Daryna22/contacts-service/internal/auth/model"
)

type AccountRepo interface {
	Create(ctx context.Context, a model.Account) (model.Account, error)

	GetByEmail(ctx context.Context, email string) (model.Account, error)

	// UpdateRefreshToken overwrites the stored refresh token; the previous
	// one stops matching and is thereby revoked.
	UpdateRefreshToken(ctx context.Context, id uint, token string) error

	ConfirmEmail(ctx context.Context, email string) error

	UpdateAvatar(ctx context.Context, email, url string) (model.Account, error)
}

// AccountLoader fetches an account from the identity store. Loaders are
// idempotent and side-effect-free, so running one twice under a
// concurrent cache miss is harmless.
type AccountLoader func(ctx context.Context, email string) (model.Account, error)

type IdentityCache interface {
	GetOrLoad(ctx context.Context, email string, load AccountLoader) (model.Account, error)

	Invalidate(ctx context.Context, email string) error
}
