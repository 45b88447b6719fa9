package session

import (
	"context"
	"errors"
	"time"

	"github.com/ST1000-S/iTechies/internal/domain"
)

// ErrNotFound is returned when a token does not resolve to a live
// session (unknown, expired, or destroyed).
var ErrNotFound = errors.New("session not found")

// Session associates an opaque client-held token with an authenticated
// identity and role.
type Session struct {
	Token  string      `json:"-"`
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Store is the contract with the session backend: opaque token to
// {userId, role} with a fixed TTL, refreshed on activity.
type Store interface {
	Create(ctx context.Context, userID string, role domain.Role) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Touch(ctx context.Context, token string) error
	Destroy(ctx context.Context, token string) error
}

// TTLOrDefault guards against zero TTL configurations.
func TTLOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 24 * time.Hour
	}
	return ttl
}
