package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies the HS256 bearer tokens used as sessions.
// Tokens carry only the account id plus issued/expiry timestamps; validity is
// purely cryptographic, nothing is stored server-side.
type TokenManager struct {
	auth   *jwtauth.JWTAuth
	expiry time.Duration
}

func NewTokenManager(secret []byte, expiry time.Duration) *TokenManager {
	return &TokenManager{
		auth:   jwtauth.New("HS256", secret, nil),
		expiry: expiry,
	}
}

// JWTAuth exposes the underlying verifier for the router middleware.
func (m *TokenManager) JWTAuth() *jwtauth.JWTAuth {
	return m.auth
}

func (m *TokenManager) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(m.expiry).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := m.auth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
