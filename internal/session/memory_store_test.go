package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ST1000-S/iTechies/internal/domain"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "user-1", domain.RoleProvider)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, domain.RoleProvider, got.Role)

	require.NoError(t, store.Destroy(ctx, sess.Token))
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// destroy is idempotent
	assert.NoError(t, store.Destroy(ctx, sess.Token))
}

func TestMemoryStore_ExpiryAndTouch(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	sess, err := store.Create(ctx, "user-1", domain.RoleCustomer)
	require.NoError(t, err)

	// activity 30 minutes in refreshes the TTL
	now = now.Add(30 * time.Minute)
	require.NoError(t, store.Touch(ctx, sess.Token))

	// still inside the refreshed window
	now = now.Add(45 * time.Minute)
	_, err = store.Get(ctx, sess.Token)
	require.NoError(t, err)

	// past the refreshed deadline the session is gone
	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Touch(ctx, sess.Token), ErrNotFound)
}

func TestMemoryStore_UnknownToken(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Touch(context.Background(), "nope"), ErrNotFound)
}
