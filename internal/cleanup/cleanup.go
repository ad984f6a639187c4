// Package cleanup removes expired authentication tokens in the background.
package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/repository"
)

// Cleaner periodically deletes expired password reset tokens and stale
// refresh tokens. Sweeps are best-effort; storage failures are logged and the
// next tick retries.
type Cleaner struct {
	refreshRepo  repository.RefreshTokenRepository
	resetRepo    repository.PasswordResetTokenRepository
	interval     time.Duration
	initialDelay time.Duration
	logger       zerolog.Logger
}

// NewCleaner creates a new instance of Cleaner.
func NewCleaner(
	refreshRepo repository.RefreshTokenRepository,
	resetRepo repository.PasswordResetTokenRepository,
	interval time.Duration,
	initialDelay time.Duration,
	logger zerolog.Logger,
) *Cleaner {
	return &Cleaner{
		refreshRepo:  refreshRepo,
		resetRepo:    resetRepo,
		interval:     interval,
		initialDelay: initialDelay,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once after the initial delay
// and then on every interval tick.
func (c *Cleaner) Run(ctx context.Context) {
	delay := time.NewTimer(c.initialDelay)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return
	case <-delay.C:
	}

	c.Sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep deletes everything that can no longer be redeemed: expired reset
// tokens and refresh tokens that are expired or revoked.
func (c *Cleaner) Sweep(ctx context.Context) {
	now := time.Now()

	resetDeleted, err := c.resetRepo.DeleteExpiredTokens(ctx, now)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to delete expired password reset tokens")
	}

	refreshDeleted, err := c.refreshRepo.DeleteStaleTokens(ctx, now)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to delete stale refresh tokens")
	}

	if resetDeleted > 0 || refreshDeleted > 0 {
		c.logger.Info().
			Int64("reset_tokens", resetDeleted).
			Int64("refresh_tokens", refreshDeleted).
			Msg("cleaned up expired auth tokens")
	}
}
