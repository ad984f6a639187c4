package handler

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth validates the bearer token and stores the authenticated user's
// id in the request context.
func RequireAuth(jwtAuth auth.JWTAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := jwtAuth.ValidateSessionToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			userID, err := bson.ObjectIDFromHex(claims.UserID)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFrom returns the authenticated user's id stored by RequireAuth.
func userIDFrom(ctx context.Context) bson.ObjectID {
	userID, _ := ctx.Value(userIDKey).(bson.ObjectID)
	return userID
}
