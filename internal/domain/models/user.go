package models

import (
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"
)

// User is an account as served to clients. The password hash never leaves
// UserRecord.
type User struct {
	ID        domain.PositiveInteger
	Email     domain.EmailString
	Name      domain.NonEmptyString
	CreatedAt time.Time
}

// UserRecord is the stored users row.
type UserRecord struct {
	User
	PasswordHash string
}

// NewUser is a users row to insert; PasswordHash is already hashed.
type NewUser struct {
	Email        domain.EmailString
	Name         domain.NonEmptyString
	PasswordHash string
}

// Registration is the body of a sign-up request.
type Registration struct {
	Email    domain.EmailString
	Name     domain.NonEmptyString
	Password domain.NonEmptyString
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    domain.EmailString
	Password domain.NonEmptyString
}

// AuthToken is returned by login and registration.
type AuthToken struct {
	AccessToken string
	ExpiresAt   time.Time
	User        User
}

var UserCodec = codec.NewObject("User",
	codec.Prop("id", codec.PositiveInteger(), func(u *User) *domain.PositiveInteger { return &u.ID }),
	codec.Prop("email", codec.EmailString(), func(u *User) *domain.EmailString { return &u.Email }),
	codec.Prop("name", codec.NonEmptyString(), func(u *User) *domain.NonEmptyString { return &u.Name }),
	codec.Prop("created_at", codec.Time(), func(u *User) *time.Time { return &u.CreatedAt }),
)

var UserRecordCodec = codec.NewObject("UserRecord",
	codec.Inline(UserCodec, func(r *UserRecord) *User { return &r.User }),
	codec.Prop("password", codec.String(), func(r *UserRecord) *string { return &r.PasswordHash }),
)

var NewUserCodec = codec.NewObject("NewUser",
	codec.Prop("email", codec.EmailString(), func(u *NewUser) *domain.EmailString { return &u.Email }),
	codec.Prop("name", codec.NonEmptyString(), func(u *NewUser) *domain.NonEmptyString { return &u.Name }),
	codec.Prop("password", codec.String(), func(u *NewUser) *string { return &u.PasswordHash }),
)

var RegistrationCodec = codec.NewObject("Registration",
	codec.Prop("email", codec.EmailString(), func(r *Registration) *domain.EmailString { return &r.Email }),
	codec.Prop("name", codec.NonEmptyString(), func(r *Registration) *domain.NonEmptyString { return &r.Name }),
	codec.Prop("password", codec.NonEmptyString(), func(r *Registration) *domain.NonEmptyString { return &r.Password }),
)

var CredentialsCodec = codec.NewObject("Credentials",
	codec.Prop("email", codec.EmailString(), func(c *Credentials) *domain.EmailString { return &c.Email }),
	codec.Prop("password", codec.NonEmptyString(), func(c *Credentials) *domain.NonEmptyString { return &c.Password }),
)

var AuthTokenCodec = codec.NewObject("AuthToken",
	codec.Prop("access_token", codec.String(), func(t *AuthToken) *string { return &t.AccessToken }),
	codec.Prop("expires_at", codec.Time(), func(t *AuthToken) *time.Time { return &t.ExpiresAt }),
	codec.Prop("user", UserCodec.Codec(), func(t *AuthToken) *User { return &t.User }),
)
