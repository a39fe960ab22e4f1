package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tracker/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "tracker"

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 access tokens for a principal.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token and the moment it expires.
func (i *Issuer) Issue(p domain.Principal) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: p.Email.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   strconv.FormatInt(p.UserID.Int64(), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// JWTResolver reads a bearer token signed by an Issuer with the same secret.
type JWTResolver struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuerName),
			jwt.WithExpirationRequired(),
		),
	}
}

func (r *JWTResolver) Resolve(_ context.Context, req *http.Request) (domain.AuthContext, error) {
	raw, present, err := bearerToken(req)
	if err != nil {
		return domain.Anonymous(), err
	}
	if !present {
		return domain.Anonymous(), nil
	}
	p, err := r.principal(raw)
	if err != nil {
		return domain.Anonymous(), err
	}
	return domain.Authenticated(p), nil
}

func (r *JWTResolver) principal(raw string) (domain.Principal, error) {
	var c claims
	_, err := r.parser.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return r.secret, nil })
	if err != nil {
		msg := "auth: invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "auth: token expired"
		}
		return domain.Principal{}, authError(msg, textCodeInvalidToken, err)
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return domain.Principal{}, authError("auth: invalid token subject", textCodeInvalidToken, err)
	}
	userID, err := domain.NewPositiveInteger(id)
	if err != nil {
		return domain.Principal{}, authError("auth: invalid token subject", textCodeInvalidToken, err)
	}
	email, err := domain.NewEmailString(c.Email)
	if err != nil {
		return domain.Principal{}, authError("auth: invalid token email", textCodeInvalidToken, err)
	}
	return domain.Principal{UserID: userID, Email: email}, nil
}
