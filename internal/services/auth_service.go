package services

import (
	"context"
	"strconv"

	"tracker/internal/auth"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/repositories"
	"tracker/internal/utils"

	"github.com/hashicorp/go-hclog"
)

// AuthService signs users up and in.
type AuthService struct {
	Users  repositories.UserRepository
	Issuer *auth.Issuer
	Logger hclog.Logger
}

// Register creates the account and logs it in. An email can only be
// registered once.
func (s AuthService) Register(ctx context.Context, requestID string, reg models.Registration) (models.AuthToken, error) {
	existing, err := s.Users.FindByEmail(ctx, reg.Email)
	if err != nil {
		return models.AuthToken{}, err
	}
	if existing.IsSome() {
		return models.AuthToken{}, domain.Conflict("email already registered")
	}
	hash, err := auth.HashPassword(reg.Password.String())
	if err != nil {
		return models.AuthToken{}, domain.Internal("hash password", err)
	}
	id, err := s.Users.Create(ctx, models.NewUser{Email: reg.Email, Name: reg.Name, PasswordHash: hash})
	if err != nil {
		return models.AuthToken{}, err
	}
	user, err := s.Profile(ctx, id)
	if err != nil {
		return models.AuthToken{}, err
	}
	utils.LogEvent(s.Logger, requestID, "auth", "register", "user_id="+strconv.FormatInt(id, 10))
	return s.token(user)
}

// Login exchanges credentials for a token. Unknown emails and wrong
// passwords fail the same way.
func (s AuthService) Login(ctx context.Context, requestID string, cred models.Credentials) (models.AuthToken, error) {
	found, err := s.Users.FindByEmail(ctx, cred.Email)
	if err != nil {
		return models.AuthToken{}, err
	}
	rec, ok := found.Get()
	if !ok {
		return models.AuthToken{}, auth.ErrBadCredentials
	}
	if err := auth.CheckPassword(rec.PasswordHash, cred.Password.String()); err != nil {
		return models.AuthToken{}, err
	}
	utils.LogEvent(s.Logger, requestID, "auth", "login", "user_id="+strconv.FormatInt(rec.ID.Int64(), 10))
	return s.token(rec.User)
}

func (s AuthService) Profile(ctx context.Context, userID int64) (models.User, error) {
	found, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	user, ok := found.Get()
	if !ok {
		return models.User{}, domain.NotFound("user")
	}
	return user, nil
}

func (s AuthService) token(u models.User) (models.AuthToken, error) {
	raw, exp, err := s.Issuer.Issue(domain.Principal{UserID: u.ID, Email: u.Email})
	if err != nil {
		return models.AuthToken{}, domain.Internal("issue token", err)
	}
	return models.AuthToken{AccessToken: raw, ExpiresAt: exp, User: u}, nil
}
