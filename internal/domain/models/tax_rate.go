package models

import (
	"tracker/internal/codec"
	"tracker/internal/domain"
)

// TaxRate is a named rate a user applies to invoices, stored as a fraction.
type TaxRate struct {
	ID     domain.PositiveInteger
	UserID domain.PositiveInteger
	Label  domain.NonEmptyString
	Value  domain.Percentage
}

type NewTaxRate struct {
	UserID domain.PositiveInteger
	Label  domain.NonEmptyString
	Value  domain.Percentage
}

var TaxRateCodec = codec.NewObject("TaxRate",
	codec.Prop("id", codec.PositiveInteger(), func(r *TaxRate) *domain.PositiveInteger { return &r.ID }),
	codec.Prop("user_id", codec.PositiveInteger(), func(r *TaxRate) *domain.PositiveInteger { return &r.UserID }),
	codec.Prop("label", codec.NonEmptyString(), func(r *TaxRate) *domain.NonEmptyString { return &r.Label }),
	codec.Prop("value", codec.Percentage(), func(r *TaxRate) *domain.Percentage { return &r.Value }),
)

// TaxRateInputCodec reads a request body; the owner comes from the caller.
var TaxRateInputCodec = codec.NewObject("TaxRateInput",
	codec.Prop("label", codec.NonEmptyString(), func(r *NewTaxRate) *domain.NonEmptyString { return &r.Label }),
	codec.Prop("value", codec.Percentage(), func(r *NewTaxRate) *domain.Percentage { return &r.Value }),
)

var NewTaxRateCodec = codec.NewObject("NewTaxRate",
	codec.Prop("user_id", codec.PositiveInteger(), func(r *NewTaxRate) *domain.PositiveInteger { return &r.UserID }),
	codec.Prop("label", codec.NonEmptyString(), func(r *NewTaxRate) *domain.NonEmptyString { return &r.Label }),
	codec.Prop("value", codec.Percentage(), func(r *NewTaxRate) *domain.Percentage { return &r.Value }),
)
