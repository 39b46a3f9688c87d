package repository

import (
	"context"
	"errors"

	"github.com/playtube/playtube-api/internal/domain/entity"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by Create when the username or email is taken.
var ErrDuplicate = errors.New("duplicate username or email")

// UserRepository defines the persistence operations of the account core.
// Password hashing never happens here; callers pass ready-made hashes to
// Create and UpdatePassword, so no code path can re-hash a stored value.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByUsernameOrEmail matches either field case-insensitively; empty
	// arguments are ignored.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	UpdateAccount(ctx context.Context, id, fullName, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url string) (*entity.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*entity.User, error)

	// SetRefreshToken overwrites the stored refresh token unconditionally
	// (login); ClearRefreshToken removes it (logout).
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	// RotateRefreshToken replaces old with new only if old is still the
	// stored value. Returns false when the compare fails, so concurrent
	// rotations of one stale token have exactly one winner.
	RotateRefreshToken(ctx context.Context, id, old, new string) (bool, error)

	// ChannelProfile joins the user row against the subscriptions relation.
	// viewerID may be empty for anonymous viewers.
	ChannelProfile(ctx context.Context, username, viewerID string) (*entity.ChannelProfile, error)
}

// SubscriptionRepository writes subscription edges. The account core never
// calls it; it exists for seeding and for the features that own the relation.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscriberID, channelID string) error
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
}
