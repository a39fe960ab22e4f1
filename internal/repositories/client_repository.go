package repositories

import (
	"context"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/pagination"
	"tracker/internal/store"
)

var ClientSortable = map[string]string{
	"type":         ClientsTable.Column("type"),
	"country_code": ClientsTable.Column("country_code"),
	"created_at":   ClientsTable.Column("created_at"),
}

type ClientRepository struct {
	Store *store.Store
}

func (r ClientRepository) List(ctx context.Context, userID int64, args pagination.Args) (pagination.Connection[models.Client], error) {
	page := store.Page{Query: scoped(ClientsTable, ownedClients(userID)), Sortable: ClientSortable}
	return store.Paginate(ctx, r.Store, args, page, models.ClientCodec)
}

func (r ClientRepository) Find(ctx context.Context, userID, id int64) (domain.Option[models.Client], error) {
	return store.Get(ctx, r.Store, ClientsTable, models.ClientCodec, byID(ClientsTable, id, ownedClients(userID)))
}

func (r ClientRepository) Create(ctx context.Context, c models.NewClient) (int64, error) {
	ids, err := store.Insert(ctx, r.Store, ClientsTable, models.NewClientCodec, c)
	return firstID(ids), err
}

// Update writes patch to a client the caller already proved they own.
func (r ClientRepository) Update(ctx context.Context, id int64, patch codec.Partial[models.Client]) (int64, error) {
	return store.Update(ctx, r.Store, ClientsTable, id, patch, models.ClientPatchCodec)
}

func (r ClientRepository) Delete(ctx context.Context, userID, id int64) (int64, error) {
	return store.Remove(ctx, r.Store, ClientsTable, byID(ClientsTable, id, ownedClients(userID)))
}
