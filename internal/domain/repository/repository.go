// Package repository declares the storage interfaces consumed by the service
// layer. Postgres implementations live in the postgres subpackage, Redis
// implementations in the redis subpackage.
package repository

import (
	"context"
	"time"

	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
)

// UserRepository is the authoritative store of user records.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error

	// SetRefreshToken unconditionally stores token as the user's current
	// refresh token, superseding whatever was there.
	SetRefreshToken(ctx context.Context, email, token string) error
	// ReplaceRefreshToken stores newToken only if oldToken is still the
	// current one. Returns ErrInvalidRefreshToken when the compare fails,
	// which means a concurrent rotation won.
	ReplaceRefreshToken(ctx context.Context, email, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, email string) error

	SetActive(ctx context.Context, email string, active bool) error
	SetRole(ctx context.Context, email string, role models.Role) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, email, username, avatar string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// IdentityCache shortcuts repeated identity lookups. Get returns
// errors.ErrCacheMiss when the subject has no entry. Entries are not
// authoritative; the UserRepository is.
type IdentityCache interface {
	Get(ctx context.Context, subject string) (*models.Identity, error)
	Set(ctx context.Context, identity *models.Identity) error
	Invalidate(ctx context.Context, subject string) error
}

// RevocationStore tracks tokens that must be rejected before their natural
// expiry. Entries self-prune: ttl is the token's remaining lifetime.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
