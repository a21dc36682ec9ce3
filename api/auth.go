package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
)

type callerKey struct{}

// Authenticator issues and verifies HS256 caller tokens. The subject claim is
// the caller's hex address.
type Authenticator struct {
	secret []byte
	admin  common.Address
}

// NewAuthenticator creates an authenticator. A zero admin address disables admin routes.
func NewAuthenticator(secret string, admin common.Address) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		admin:  admin,
	}
}

// IssueToken signs a token identifying address, valid for ttl
func (a *Authenticator) IssueToken(address common.Address, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   address.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses a token and returns the caller address it identifies
func (a *Authenticator) Verify(tokenStr string) (common.Address, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return common.Address{}, fmt.Errorf("token parse error: %w", err)
	}
	if !token.Valid {
		return common.Address{}, errors.New("invalid token")
	}

	if !common.IsHexAddress(claims.Subject) {
		return common.Address{}, errors.New("token subject is not an address")
	}

	return common.HexToAddress(claims.Subject), nil
}

// RequireCaller rejects requests without a valid bearer token
func (a *Authenticator) RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "Unauthenticated", "bearer token required")
			return
		}

		caller, err := a.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthenticated", err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	})
}

// RequireAdmin rejects callers other than the configured admin. Must run after RequireCaller.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok || a.admin == (common.Address{}) || caller != a.admin {
			respondError(w, http.StatusForbidden, "NotAuthorized", "admin identity required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerFromContext returns the authenticated caller
func CallerFromContext(ctx context.Context) (common.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(common.Address)
	return caller, ok
}
