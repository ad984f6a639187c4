package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockplan/stockplan-api/internal/usecase"
)

// AuthHandler serves registration, login, token refresh, and the password
// reset flow.
type AuthHandler struct {
	authUC  usecase.AuthUsecase
	resetUC usecase.PasswordResetUsecase
	logger  zerolog.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(
	authUC usecase.AuthUsecase,
	resetUC usecase.PasswordResetUsecase,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUC:  authUC,
		resetUC: resetUC,
		logger:  logger,
	}
}

// Mount registers the public auth routes on r. Protected routes are mounted
// separately by the router so they share the auth middleware.
func (h *AuthHandler) Mount(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/resend-reset", h.resendReset)
	r.Post("/reset-password", h.resetPassword)
	r.Post("/refresh", h.refresh)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	bundle, err := h.authUC.Register(r.Context(), usecase.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "invalid_email", err.Error())
		case errors.Is(err, usecase.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, "password_too_short", err.Error())
		case errors.Is(err, usecase.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email_taken", err.Error())
		default:
			writeInternalError(w, h.logger, err, "failed to register user")
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponseFrom(bundle))
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	bundle, err := h.authUC.Login(r.Context(), usecase.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "invalid_email", err.Error())
		case errors.Is(err, usecase.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, "password_too_short", err.Error())
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		default:
			writeInternalError(w, h.logger, err, "failed to log in user")
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponseFrom(bundle))
}

// Me serves the authenticated user's profile. It is mounted behind the auth
// middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	user, err := h.authUC.CurrentUser(r.Context(), userID.Hex())
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		writeInternalError(w, h.logger, err, "failed to load current user")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: user.ID.Hex(), Email: user.Email})
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ack, err := h.resetUC.RequestReset(r.Context(), req.Email)
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to request password reset")
		return
	}

	writeJSON(w, http.StatusOK, forgotResponseFrom(ack))
}

func (h *AuthHandler) resendReset(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ack, err := h.resetUC.ResendResetCode(r.Context(), req.Email)
	if err != nil {
		writeInternalError(w, h.logger, err, "failed to resend reset code")
		return
	}

	writeJSON(w, http.StatusOK, forgotResponseFrom(ack))
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.resetUC.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "invalid_email", err.Error())
		case errors.Is(err, usecase.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, "password_too_short", err.Error())
		case errors.Is(err, usecase.ErrInvalidResetCode):
			writeError(w, http.StatusUnauthorized, "invalid_reset_code", err.Error())
		default:
			writeInternalError(w, h.logger, err, "failed to reset password")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	bundle, err := h.authUC.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token", err.Error())
			return
		}
		writeInternalError(w, h.logger, err, "failed to refresh session")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponseFrom(bundle))
}

func sessionResponseFrom(bundle *usecase.SessionBundle) sessionResponse {
	return sessionResponse{
		Token:            bundle.Token,
		UserID:           bundle.UserID,
		ExpiresIn:        bundle.ExpiresIn,
		RefreshToken:     bundle.RefreshToken,
		RefreshExpiresIn: bundle.RefreshExpiresIn,
	}
}

func forgotResponseFrom(ack *usecase.ResetAck) forgotPasswordResponse {
	resp := forgotPasswordResponse{Message: ack.Message}
	if ack.ResetCode != "" {
		resp.ResetCode = &ack.ResetCode
	}
	return resp
}
