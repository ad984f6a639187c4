package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockplan/stockplan-api/internal/auth"
	"github.com/stockplan/stockplan-api/internal/config"
	"github.com/stockplan/stockplan-api/internal/repository"
)

type authFixture struct {
	authUC      AuthUsecase
	userRepo    *repository.MemoryUserRepository
	refreshRepo *repository.MemoryRefreshTokenRepository
	jwtAuth     auth.JWTAuthenticator
	cfg         *config.Config
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTIssuer:       "stockplan-api",
		JWTAudience:     "stockplan-api",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}

	userRepo := repository.NewMemoryUserRepository()
	refreshRepo := repository.NewMemoryRefreshTokenRepository()
	jwtAuth := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	return &authFixture{
		authUC:      NewAuthUsecase(userRepo, refreshRepo, jwtAuth, cfg),
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		jwtAuth:     jwtAuth,
		cfg:         cfg,
	}
}

func TestRegister_IssuesSessionBundle(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	bundle, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	require.NotEmpty(t, bundle.Token)
	require.NotEmpty(t, bundle.UserID)
	require.NotEmpty(t, bundle.RefreshToken)
	require.Equal(t, int64(3600), bundle.ExpiresIn)
	require.Equal(t, int64(86400), bundle.RefreshExpiresIn)

	claims, err := f.jwtAuth.ValidateSessionToken(bundle.Token)
	require.NoError(t, err)
	require.Equal(t, bundle.UserID, claims.UserID)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	bundle, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "  Alice@Example.COM  ",
		Password: "password1",
	})
	require.NoError(t, err)

	user, err := f.authUC.CurrentUser(context.Background(), bundle.UserID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)

	_, err = f.authUC.Login(context.Background(), CredentialsParams{
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
}

func TestRegister_DuplicateEmailAcrossCasing(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "bob@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	_, err = f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "BOB@example.com",
		Password: "password2",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "not-an-email",
		Password: "password1",
	})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "   ",
		Password: "password1",
	})
	require.ErrorIs(t, err, ErrInvalidEmail)

	// 7 characters is one short of the minimum.
	_, err = f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "carol@example.com",
		Password: "1234567",
	})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "carol@example.com",
		Password: "12345678",
	})
	require.NoError(t, err)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "dave@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	_, unknownErr := f.authUC.Login(context.Background(), CredentialsParams{
		Email:    "nobody@example.com",
		Password: "password1",
	})
	_, wrongPassErr := f.authUC.Login(context.Background(), CredentialsParams{
		Email:    "dave@example.com",
		Password: "wrong-password",
	})

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
}

func TestLogin_RejectsInvalidInput(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "erin@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	// Malformed emails and short passwords fail validation before any
	// credential check, exactly as on register.
	_, err = f.authUC.Login(context.Background(), CredentialsParams{
		Email:    "garbage",
		Password: "password1",
	})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.authUC.Login(context.Background(), CredentialsParams{
		Email:    "erin@example.com",
		Password: "1234567",
	})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = f.authUC.Login(context.Background(), CredentialsParams{
		Email:    "erin@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	bundle, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "erin@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	rotated, err := f.authUC.Refresh(context.Background(), bundle.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, bundle.UserID, rotated.UserID)
	require.NotEqual(t, bundle.RefreshToken, rotated.RefreshToken)

	// The consumed token is revoked and cannot mint another session.
	_, err = f.authUC.Refresh(context.Background(), bundle.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The replacement still works.
	_, err = f.authUC.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_UnknownToken(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.authUC.Refresh(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_DeletedUser(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	bundle, err := f.authUC.Register(context.Background(), CredentialsParams{
		Email:    "frank@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	f.userRepo.DeleteUser(bundle.UserID)

	_, err = f.authUC.Refresh(context.Background(), bundle.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestCurrentUser_NotFound(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.authUC.CurrentUser(context.Background(), "6137b0b3f3e8a5d9f0a1b2c3")
	require.ErrorIs(t, err, ErrUserNotFound)
}
