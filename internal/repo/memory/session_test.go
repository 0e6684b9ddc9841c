package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionRepo(t *testing.T) *SessionRepository {
	t.Helper()
	repo := NewSessionRepository(time.Hour)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSessionRepository_RefreshToken(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreRefreshToken(ctx, "tok", 5, time.Hour))
	userID, found, err := repo.ConsumeRefreshToken(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint(5), userID)

	_, found, _ = repo.ConsumeRefreshToken(ctx, "tok")
	assert.False(t, found)

	require.NoError(t, repo.StoreRefreshToken(ctx, "expired", 5, -time.Second))
	_, found, _ = repo.ConsumeRefreshToken(ctx, "expired")
	assert.False(t, found)

	require.NoError(t, repo.StoreRefreshToken(ctx, "del", 5, time.Hour))
	require.NoError(t, repo.DeleteRefreshToken(ctx, "del"))
	_, found, _ = repo.ConsumeRefreshToken(ctx, "del")
	assert.False(t, found)
}

func TestSessionRepository_Revocation(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.RevokeToken(ctx, "jti", time.Hour))
	revoked, err := repo.IsTokenRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, repo.RevokeToken(ctx, "noop", 0))
	revoked, _ = repo.IsTokenRevoked(ctx, "noop")
	assert.False(t, revoked)
}

func TestSessionRepository_Purge(t *testing.T) {
	repo := newTestSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.StoreRefreshToken(ctx, "a", 1, time.Millisecond))
	require.NoError(t, repo.RevokeToken(ctx, "b", time.Millisecond))
	require.NoError(t, repo.StoreRefreshToken(ctx, "c", 1, time.Hour))

	repo.purge(time.Now().Add(time.Second))

	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	assert.Len(t, repo.refreshTokens, 1)
	assert.Empty(t, repo.revokedTokens)
}
