package repositories

import (
	"context"

	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/store"
)

type UserRepository struct {
	Store *store.Store
}

func (r UserRepository) FindByID(ctx context.Context, id int64) (domain.Option[models.User], error) {
	return store.Get(ctx, r.Store, UsersTable, models.UserCodec, store.ByID(id))
}

// FindByEmail returns the stored row, password hash included.
func (r UserRepository) FindByEmail(ctx context.Context, email domain.EmailString) (domain.Option[models.UserRecord], error) {
	return store.Get(ctx, r.Store, UsersTable, models.UserRecordCodec, store.Match{"email": email.String()})
}

func (r UserRepository) Create(ctx context.Context, u models.NewUser) (int64, error) {
	ids, err := store.Insert(ctx, r.Store, UsersTable, models.NewUserCodec, u)
	return firstID(ids), err
}
