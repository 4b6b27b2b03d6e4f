package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dinehub/restaurant-api/internal/domain"
)

type ctxKey struct{}

type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Middleware parses the bearer token when present and stashes the verified
// identity in the request context. Missing or bad tokens do not fail here;
// RequireRole decides per route.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw != "" && raw != r.Header.Get("Authorization") {
				if id, err := Verify(raw, secret); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Verify(raw, secret string) (domain.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return domain.Identity{
		ID:    claims.Subject,
		Role:  domain.Role(claims.Role),
		Email: claims.Email,
	}, nil
}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(domain.Identity)
	return id, ok
}

// Sign issues a token for the given identity. The real platform issues
// tokens from its auth service; this is for tooling and tests.
func Sign(id domain.Identity, secret string) (string, error) {
	claims := Claims{
		Role:  string(id.Role),
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: id.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
