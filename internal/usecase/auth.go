package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/auth"
	"github.com/stockplan/stockplan-api/internal/config"
	"github.com/stockplan/stockplan-api/internal/model"
	"github.com/stockplan/stockplan-api/internal/repository"
	"github.com/stockplan/stockplan-api/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params CredentialsParams) (*SessionBundle, error)
	Login(ctx context.Context, params CredentialsParams) (*SessionBundle, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*SessionBundle, error)
}

// CredentialsParams defines the email and password pair used for both
// registration and login.
type CredentialsParams struct {
	Email    string
	Password string
}

// SessionBundle carries a freshly issued access token together with its
// paired refresh token. ExpiresIn values are in seconds.
type SessionBundle struct {
	Token            string
	UserID           string
	ExpiresIn        int64
	RefreshToken     string
	RefreshExpiresIn int64
}

const minPasswordLength = 8

var (
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

type authUsecase struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	jwtAuth     auth.JWTAuthenticator
	cfg         *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		jwtAuth:     jwtAuth,
		cfg:         cfg,
	}
}

func (u *authUsecase) Register(ctx context.Context, params CredentialsParams) (*SessionBundle, error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}

	if len(params.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}

		return nil, err
	}

	return u.createSession(ctx, user.ID.Hex())
}

func (u *authUsecase) Login(ctx context.Context, params CredentialsParams) (*SessionBundle, error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	if len(params.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	return u.createSession(ctx, user.ID.Hex())
}

func (u *authUsecase) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*SessionBundle, error) {
	now := time.Now()

	// RevokeValidToken is a conditional update, so a refresh token that is
	// presented twice concurrently mints exactly one new session.
	stored, err := u.refreshRepo.RevokeValidToken(ctx, security.HashToken(refreshToken), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}

		return nil, err
	}

	if _, err := u.userRepo.GetUser(ctx, stored.UserID.Hex()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}

		return nil, err
	}

	return u.createSession(ctx, stored.UserID.Hex())
}

func (u *authUsecase) createSession(ctx context.Context, userID string) (*SessionBundle, error) {
	now := time.Now()

	accessToken, err := u.jwtAuth.GenerateSessionToken(userID, u.cfg.AccessTokenTTL, now)
	if err != nil {
		return nil, err
	}

	refreshToken, err := security.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	if _, err := u.refreshRepo.CreateToken(ctx, &model.RefreshToken{
		UserID:    objectID,
		TokenHash: security.HashToken(refreshToken),
		ExpiresAt: now.Add(u.cfg.RefreshTokenTTL),
	}); err != nil {
		return nil, err
	}

	return &SessionBundle{
		Token:            accessToken,
		UserID:           userID,
		ExpiresIn:        int64(u.cfg.AccessTokenTTL.Seconds()),
		RefreshToken:     refreshToken,
		RefreshExpiresIn: int64(u.cfg.RefreshTokenTTL.Seconds()),
	}, nil
}

// normalizeEmail trims surrounding whitespace and lowercases the address so
// that lookups and the unique index agree on a canonical form.
func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || !strings.Contains(normalized, "@") {
		return "", ErrInvalidEmail
	}

	return normalized, nil
}
