package handlers

import (
	"context"
	"net/http"

	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/http/dispatch"
	"tracker/internal/pagination"
	"tracker/internal/repositories"

	"github.com/gin-gonic/gin"
)

var taxRateConnectionCodec = pagination.ConnectionCodec(models.TaxRateCodec.Codec())

// GET /api/tax-rates
func (a *API) listTaxRates() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, pagination.Args, None, pagination.Connection[models.TaxRate]]{
		Name:   "tax_rates.list",
		Query:  pageArgsCodec(repositories.TaxRateSortable).Codec(),
		Output: taxRateConnectionCodec,
		Handler: func(ctx context.Context, req dispatch.Request[None, pagination.Args, None]) (pagination.Connection[models.TaxRate], error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return pagination.Connection[models.TaxRate]{}, err
			}
			return a.TaxRates.List(ctx, userID, req.Query)
		},
	})
}

// POST /api/tax-rates
func (a *API) createTaxRate() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, models.NewTaxRate, models.TaxRate]{
		Name:   "tax_rates.create",
		Body:   models.TaxRateInputCodec.Codec(),
		Output: models.TaxRateCodec.Codec(),
		Status: http.StatusCreated,
		Handler: func(ctx context.Context, req dispatch.Request[None, None, models.NewTaxRate]) (models.TaxRate, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.TaxRate{}, err
			}
			in := req.Body
			in.UserID = domain.UnsafePositiveInteger(userID)
			id, err := a.TaxRates.Create(ctx, in)
			if err != nil {
				return models.TaxRate{}, err
			}
			rate, err := a.TaxRates.Find(ctx, userID, id)
			return found(rate, err, "tax rate")
		},
	})
}

// DELETE /api/tax-rates/:id
func (a *API) deleteTaxRate() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, None]{
		Name:   "tax_rates.delete",
		Params: idParamsCodec,
		Status: http.StatusNoContent,
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (None, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return None{}, err
			}
			n, err := a.TaxRates.Delete(ctx, userID, req.Params.ID.Int64())
			return removed(n, err, "tax rate")
		},
	})
}
