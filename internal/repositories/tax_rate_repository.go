package repositories

import (
	"context"

	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/pagination"
	"tracker/internal/store"
)

var TaxRateSortable = map[string]string{
	"label": TaxRatesTable.Column("label"),
	"value": TaxRatesTable.Column("value"),
}

type TaxRateRepository struct {
	Store *store.Store
}

func (r TaxRateRepository) List(ctx context.Context, userID int64, args pagination.Args) (pagination.Connection[models.TaxRate], error) {
	page := store.Page{Query: scoped(TaxRatesTable, ownedTaxRates(userID)), Sortable: TaxRateSortable}
	return store.Paginate(ctx, r.Store, args, page, models.TaxRateCodec)
}

func (r TaxRateRepository) Find(ctx context.Context, userID, id int64) (domain.Option[models.TaxRate], error) {
	return store.Get(ctx, r.Store, TaxRatesTable, models.TaxRateCodec, byID(TaxRatesTable, id, ownedTaxRates(userID)))
}

func (r TaxRateRepository) Create(ctx context.Context, rate models.NewTaxRate) (int64, error) {
	ids, err := store.Insert(ctx, r.Store, TaxRatesTable, models.NewTaxRateCodec, rate)
	return firstID(ids), err
}

func (r TaxRateRepository) Delete(ctx context.Context, userID, id int64) (int64, error) {
	return store.Remove(ctx, r.Store, TaxRatesTable, byID(TaxRatesTable, id, ownedTaxRates(userID)))
}

func ownedTaxRates(userID int64) store.Build {
	return func(q *store.Select) { q.Eq("user_id", userID) }
}
