package handlers

import (
	"context"
	"net/http"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/http/dispatch"
	"tracker/internal/pagination"
	"tracker/internal/repositories"

	"github.com/gin-gonic/gin"
)

var clientConnectionCodec = pagination.ConnectionCodec(models.ClientCodec.Codec())

// GET /api/clients
func (a *API) listClients() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, pagination.Args, None, pagination.Connection[models.Client]]{
		Name:   "clients.list",
		Query:  pageArgsCodec(repositories.ClientSortable).Codec(),
		Output: clientConnectionCodec,
		Handler: func(ctx context.Context, req dispatch.Request[None, pagination.Args, None]) (pagination.Connection[models.Client], error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return pagination.Connection[models.Client]{}, err
			}
			return a.Clients.List(ctx, userID, req.Query)
		},
	})
}

// GET /api/clients/:id
func (a *API) getClient() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, models.Client]{
		Name:   "clients.get",
		Params: idParamsCodec,
		Output: models.ClientCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (models.Client, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Client{}, err
			}
			c, err := a.Clients.Find(ctx, userID, req.Params.ID.Int64())
			return found(c, err, "client")
		},
	})
}

// POST /api/clients
func (a *API) createClient() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, models.NewClient, models.Client]{
		Name:   "clients.create",
		Body:   models.ClientInputCodec.Codec(),
		Output: models.ClientCodec.Codec(),
		Status: http.StatusCreated,
		Handler: func(ctx context.Context, req dispatch.Request[None, None, models.NewClient]) (models.Client, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Client{}, err
			}
			in := req.Body
			in.UserID = domain.UnsafePositiveInteger(userID)
			id, err := a.Clients.Create(ctx, in)
			if err != nil {
				return models.Client{}, err
			}
			c, err := a.Clients.Find(ctx, userID, id)
			return found(c, err, "client")
		},
	})
}

// PUT /api/clients/:id
func (a *API) updateClient() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, codec.Partial[models.Client], models.Client]{
		Name:   "clients.update",
		Params: idParamsCodec,
		Body:   models.ClientPatchCodec.PartialCodec(),
		Output: models.ClientCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, codec.Partial[models.Client]]) (models.Client, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Client{}, err
			}
			id := req.Params.ID.Int64()
			existing, err := a.Clients.Find(ctx, userID, id)
			if _, err := found(existing, err, "client"); err != nil {
				return models.Client{}, err
			}
			if _, err := a.Clients.Update(ctx, id, req.Body); err != nil {
				return models.Client{}, err
			}
			c, err := a.Clients.Find(ctx, userID, id)
			return found(c, err, "client")
		},
	})
}

// DELETE /api/clients/:id
func (a *API) deleteClient() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, None]{
		Name:   "clients.delete",
		Params: idParamsCodec,
		Status: http.StatusNoContent,
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (None, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return None{}, err
			}
			n, err := a.Clients.Delete(ctx, userID, req.Params.ID.Int64())
			return removed(n, err, "client")
		},
	})
}
