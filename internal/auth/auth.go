// Package auth resolves who is calling. Dispatch asks a Resolver for the
// AuthContext of each request and never looks at credentials itself.
package auth

import (
	"context"
	"net/http"
	"strings"

	"tracker/internal/domain"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMissingToken = "AUTH_TOKEN_MISSING"
	textCodeInvalidToken = "AUTH_TOKEN_INVALID"
	textCodeBadLogin     = "AUTH_BAD_CREDENTIALS"
)

// Resolver produces the AuthContext of a request. A request without
// credentials resolves to an anonymous context, not an error; credentials
// that are present but invalid are an error.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (domain.AuthContext, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, r *http.Request) (domain.AuthContext, error)

func (f ResolverFunc) Resolve(ctx context.Context, r *http.Request) (domain.AuthContext, error) {
	return f(ctx, r)
}

// AnonymousResolver treats every request as unauthenticated.
var AnonymousResolver Resolver = ResolverFunc(func(context.Context, *http.Request) (domain.AuthContext, error) {
	return domain.Anonymous(), nil
})

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false, nil
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", true, authError("auth: malformed authorization header", textCodeMissingToken, nil)
	}
	return token, true, nil
}

func authError(message, textCode string, cause error) error {
	if cause != nil {
		return goerrors.Wrap(cause, goerrors.CategoryAuth, message).
			WithCode(http.StatusUnauthorized).
			WithTextCode(textCode)
	}
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(textCode)
}

// ErrBadCredentials is returned when an email and password do not match.
var ErrBadCredentials = authError("invalid email or password", textCodeBadLogin, nil)
