package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/config"
	"github.com/stockplan/stockplan-api/internal/mailer"
	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/repository"
	"github.com/stockplan/stockplan-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password reset code
// operations.
type PasswordResetUsecase interface {
	// RequestReset issues a reset code for the given email. The returned ack
	// is identical whether or not the account exists.
	RequestReset(ctx context.Context, email string) (*ResetAck, error)

	// ResendResetCode issues a fresh code for the given email. Earlier codes
	// stay valid until they expire or one of them is used.
	ResendResetCode(ctx context.Context, email string) (*ResetAck, error)

	// ResetPassword redeems a code and replaces the user's password.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// ResetAck is the response to a reset request. ResetCode is only populated
// when the debug echo flag is enabled.
type ResetAck struct {
	Message   string
	ResetCode string
}

const (
	resetCodeTTL = 15 * time.Minute

	resetAckMessage = "If the account exists, a reset code has been sent."
)

var ErrInvalidResetCode = errors.New("invalid or expired reset code")

type passwordResetUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.PasswordResetTokenRepository
	mailer    mailer.Mailer
	cfg       *config.Config
	logger    zerolog.Logger
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	mailer mailer.Mailer,
	cfg *config.Config,
	logger zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		cfg:       cfg,
		logger:    logger,
	}
}

func (u *passwordResetUsecase) RequestReset(ctx context.Context, email string) (*ResetAck, error) {
	return u.issueResetCode(ctx, email)
}

func (u *passwordResetUsecase) ResendResetCode(ctx context.Context, email string) (*ResetAck, error) {
	return u.issueResetCode(ctx, email)
}

func (u *passwordResetUsecase) issueResetCode(ctx context.Context, email string) (*ResetAck, error) {
	ack := &ResetAck{Message: resetAckMessage}

	normalized, err := normalizeEmail(email)
	if err != nil {
		// To prevent email enumeration, a malformed address gets the same ack
		// as an unknown one.
		return ack, nil
	}

	user, err := u.userRepo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ack, nil
		}

		return nil, err
	}

	code, err := security.GenerateResetCode()
	if err != nil {
		return nil, err
	}

	if _, err := u.tokenRepo.CreateToken(ctx, &model.PasswordResetToken{
		UserID:    user.ID,
		CodeHash:  security.HashToken(code),
		ExpiresAt: time.Now().Add(resetCodeTTL),
	}); err != nil {
		return nil, err
	}

	if err := u.mailer.Send(mailer.Message{
		To:      user.Email,
		Subject: "Your StockPlan reset code",
		Body:    fmt.Sprintf("Use this code to reset your password: %s", code),
	}); err != nil {
		// The code is already stored, so a delivery failure should not leak
		// account existence either.
		u.logger.Error().Err(err).Msg("failed to send password reset email")
	}

	if u.cfg.ResetReturnCode {
		ack.ResetCode = code
	}

	return ack, nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return ErrInvalidEmail
	}

	user, err := u.userRepo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetCode
		}

		return err
	}

	now := time.Now()

	// ConsumeValidToken marks the code used atomically, so two concurrent
	// redemptions of the same code succeed at most once.
	if _, err := u.tokenRepo.ConsumeValidToken(ctx, user.ID, security.HashToken(code), now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetCode
		}

		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return u.userRepo.UpdatePasswordHash(ctx, user.ID.Hex(), passwordHash, now)
}
