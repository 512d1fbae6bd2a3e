package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or shadow the identity stored under it.
type contextKey string

const identityKey contextKey = "identity"

// errNoToken means the request carried no bearer token at all.
var errNoToken = errors.New("auth: token missing")

// TokenValidator is the part of TokenService the middleware needs.
type TokenValidator interface {
	Validate(token string) (Identity, error)
}

// unauthorizedBody matches handler.ErrorResponse so clients see one error shape.
type unauthorizedBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RequireAuth enforces a valid bearer token on the routes it wraps.
//
// It reads "Authorization: Bearer <jwt>", validates it and stores the
// caller's Identity in the request context. A missing or invalid token ends
// the request with 401 and a JSON error body.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				msg := "token invalid"
				if errors.Is(err, errNoToken) {
					msg = "token missing"
				}
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, unauthorizedBody{Error: "unauthorized", Message: msg})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated caller from the context.
//
// Usage in handlers:
//
//	id, ok := auth.IdentityFromContext(r.Context())
//	if !ok {
//	    // anonymous user
//	}
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// BearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
// The scheme name is matched case-insensitively.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func extractIdentity(r *http.Request, tokens TokenValidator) (Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return Identity{}, errNoToken
	}
	return tokens.Validate(token)
}
