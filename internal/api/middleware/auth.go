package middleware

import (
	"context"
	"net/http"

	"miniblog/internal/app/service"
	"miniblog/internal/common"
	"miniblog/internal/common/security"
	"miniblog/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserCtxKey  contextKey = "user"
	TokenCtxKey contextKey = "token"
)

// Authenticator verifies the bearer token found by jwtauth.Verifier and
// resolves its account id to a live account. Every failure, from a missing
// header to a deleted account, yields the same generic 401.
func Authenticator(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
				return
			}

			user, err := authService.Authenticate(r.Context(), userID)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			ctx = context.WithValue(ctx, TokenCtxKey, jwtauth.TokenFromHeader(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the account attached by Authenticator.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok
}

// GetTokenFromContext returns the raw bearer token attached by Authenticator.
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenCtxKey).(string)
	return token, ok
}
