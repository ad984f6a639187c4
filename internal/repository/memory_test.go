package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
)

func TestRevokeValidToken_SingleWinner(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRefreshTokenRepository()
	ctx := context.Background()

	_, err := repo.CreateToken(ctx, &model.RefreshToken{
		UserID:    bson.NewObjectID(),
		TokenHash: "hash-1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	now := time.Now()

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RevokeValidToken(ctx, "hash-1", now)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrNotFound)
		}
	}
	require.Equal(t, 1, wins)
}

func TestRevokeValidToken_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRefreshTokenRepository()
	ctx := context.Background()
	now := time.Now()

	_, err := repo.CreateToken(ctx, &model.RefreshToken{
		UserID:    bson.NewObjectID(),
		TokenHash: "boundary",
		ExpiresAt: now,
	})
	require.NoError(t, err)

	// expires_at equal to the probe instant means expired.
	_, err = repo.RevokeValidToken(ctx, "boundary", now)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.RevokeValidToken(ctx, "boundary", now.Add(-time.Nanosecond))
	require.NoError(t, err)
}

func TestDeleteStaleTokens(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRefreshTokenRepository()
	ctx := context.Background()
	now := time.Now()
	userID := bson.NewObjectID()

	_, err := repo.CreateToken(ctx, &model.RefreshToken{
		UserID: userID, TokenHash: "live", ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.CreateToken(ctx, &model.RefreshToken{
		UserID: userID, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.CreateToken(ctx, &model.RefreshToken{
		UserID: userID, TokenHash: "revoked", ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.RevokeValidToken(ctx, "revoked", now)
	require.NoError(t, err)

	deleted, err := repo.DeleteStaleTokens(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
	require.Equal(t, 1, repo.Count())

	// The surviving token still rotates.
	_, err = repo.RevokeValidToken(ctx, "live", now)
	require.NoError(t, err)
}

func TestConsumeValidToken_PicksNewestAndConsumesOnce(t *testing.T) {
	t.Parallel()

	repo := NewMemoryPasswordResetTokenRepository()
	ctx := context.Background()
	userID := bson.NewObjectID()
	now := time.Now()

	older, err := repo.CreateToken(ctx, &model.PasswordResetToken{
		UserID:    userID,
		CodeHash:  "same-code",
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	// Force distinct creation times.
	time.Sleep(5 * time.Millisecond)

	newer, err := repo.CreateToken(ctx, &model.PasswordResetToken{
		UserID:    userID,
		CodeHash:  "same-code",
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	consumed, err := repo.ConsumeValidToken(ctx, userID, "same-code", now)
	require.NoError(t, err)
	require.Equal(t, newer.ID, consumed.ID)

	// The older duplicate is still redeemable once.
	consumed, err = repo.ConsumeValidToken(ctx, userID, "same-code", now)
	require.NoError(t, err)
	require.Equal(t, older.ID, consumed.ID)

	_, err = repo.ConsumeValidToken(ctx, userID, "same-code", now)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeValidToken_ScopedToUser(t *testing.T) {
	t.Parallel()

	repo := NewMemoryPasswordResetTokenRepository()
	ctx := context.Background()
	owner := bson.NewObjectID()
	now := time.Now()

	_, err := repo.CreateToken(ctx, &model.PasswordResetToken{
		UserID:    owner,
		CodeHash:  "code-hash",
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = repo.ConsumeValidToken(ctx, bson.NewObjectID(), "code-hash", now)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.ConsumeValidToken(ctx, owner, "code-hash", now)
	require.NoError(t, err)
}

func TestDeleteExpiredTokens(t *testing.T) {
	t.Parallel()

	repo := NewMemoryPasswordResetTokenRepository()
	ctx := context.Background()
	userID := bson.NewObjectID()
	now := time.Now()

	_, err := repo.CreateToken(ctx, &model.PasswordResetToken{
		UserID: userID, CodeHash: "a", ExpiresAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)
	_, err = repo.CreateToken(ctx, &model.PasswordResetToken{
		UserID: userID, CodeHash: "b", ExpiresAt: now,
	})
	require.NoError(t, err)
	_, err = repo.CreateToken(ctx, &model.PasswordResetToken{
		UserID: userID, CodeHash: "c", ExpiresAt: now.Add(time.Minute),
	})
	require.NoError(t, err)

	deleted, err := repo.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
	require.Equal(t, 1, repo.Count())
}
