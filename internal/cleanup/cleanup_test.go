package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/repository"
)

func TestSweep_RemovesDeadTokens(t *testing.T) {
	t.Parallel()

	refreshRepo := repository.NewMemoryRefreshTokenRepository()
	resetRepo := repository.NewMemoryPasswordResetTokenRepository()
	ctx := context.Background()
	userID := bson.NewObjectID()
	now := time.Now()

	_, err := refreshRepo.CreateToken(ctx, &model.RefreshToken{
		UserID: userID, TokenHash: "live", ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = refreshRepo.CreateToken(ctx, &model.RefreshToken{
		UserID: userID, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = resetRepo.CreateToken(ctx, &model.PasswordResetToken{
		UserID: userID, CodeHash: "live", ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = resetRepo.CreateToken(ctx, &model.PasswordResetToken{
		UserID: userID, CodeHash: "expired", ExpiresAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	cleaner := NewCleaner(refreshRepo, resetRepo, time.Hour, 0, zerolog.Nop())
	cleaner.Sweep(ctx)

	require.Equal(t, 1, refreshRepo.Count())
	require.Equal(t, 1, resetRepo.Count())
}

func TestRun_SweepsAfterInitialDelayAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	refreshRepo := repository.NewMemoryRefreshTokenRepository()
	resetRepo := repository.NewMemoryPasswordResetTokenRepository()
	ctx, cancel := context.WithCancel(context.Background())
	userID := bson.NewObjectID()

	_, err := refreshRepo.CreateToken(context.Background(), &model.RefreshToken{
		UserID: userID, TokenHash: "expired", ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	cleaner := NewCleaner(refreshRepo, resetRepo, time.Hour, 10*time.Millisecond, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		cleaner.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return refreshRepo.Count() == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRun_CancelDuringInitialDelay(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner(
		repository.NewMemoryRefreshTokenRepository(),
		repository.NewMemoryPasswordResetTokenRepository(),
		time.Hour,
		time.Hour,
		zerolog.Nop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleaner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop during initial delay")
	}
}
