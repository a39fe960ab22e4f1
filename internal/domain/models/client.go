package models

import (
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"
)

type ClientType string

const (
	ClientPrivate  ClientType = "PRIVATE"
	ClientBusiness ClientType = "BUSINESS"
)

// ClientDetails is either a PrivateClient or a BusinessClient.
type ClientDetails interface {
	Type() ClientType
}

type PrivateClient struct {
	FirstName  domain.NonEmptyString
	LastName   domain.NonEmptyString
	FiscalCode domain.NonEmptyString
}

func (PrivateClient) Type() ClientType { return ClientPrivate }

type BusinessClient struct {
	BusinessName domain.NonEmptyString
	VATNumber    domain.NonEmptyString
}

func (BusinessClient) Type() ClientType { return ClientBusiness }

// Client is someone a user bills.
type Client struct {
	ID          domain.PositiveInteger
	UserID      domain.PositiveInteger
	Details     ClientDetails
	CountryCode domain.CountryCode
	Email       domain.Option[domain.EmailString]
	CreatedAt   time.Time
}

// Name is how the client is addressed on screen and on invoices.
func (c Client) Name() string {
	switch d := c.Details.(type) {
	case PrivateClient:
		return d.FirstName.String() + " " + d.LastName.String()
	case BusinessClient:
		return d.BusinessName.String()
	default:
		return ""
	}
}

type NewClient struct {
	UserID      domain.PositiveInteger
	Details     ClientDetails
	CountryCode domain.CountryCode
	Email       domain.Option[domain.EmailString]
}

var privateClientFields = codec.NewObject("PrivateClient",
	codec.Prop("first_name", codec.NonEmptyString(), func(p *PrivateClient) *domain.NonEmptyString { return &p.FirstName }),
	codec.Prop("last_name", codec.NonEmptyString(), func(p *PrivateClient) *domain.NonEmptyString { return &p.LastName }),
	codec.Prop("fiscal_code", codec.NonEmptyString(), func(p *PrivateClient) *domain.NonEmptyString { return &p.FiscalCode }),
)

var businessClientFields = codec.NewObject("BusinessClient",
	codec.Prop("business_name", codec.NonEmptyString(), func(b *BusinessClient) *domain.NonEmptyString { return &b.BusinessName }),
	codec.Prop("vat_number", codec.NonEmptyString(), func(b *BusinessClient) *domain.NonEmptyString { return &b.VATNumber }),
)

// ClientDetailsCodec selects the required fields by the "type" key.
var ClientDetailsCodec = codec.NewUnion[ClientDetails]("ClientDetails", "type",
	codec.Case(string(ClientPrivate), privateClientFields,
		func(p PrivateClient) ClientDetails { return p },
		func(d ClientDetails) (PrivateClient, bool) { p, ok := d.(PrivateClient); return p, ok }),
	codec.Case(string(ClientBusiness), businessClientFields,
		func(b BusinessClient) ClientDetails { return b },
		func(d ClientDetails) (BusinessClient, bool) { b, ok := d.(BusinessClient); return b, ok }),
)

var ClientCodec = codec.NewObject("Client",
	codec.Prop("id", codec.PositiveInteger(), func(c *Client) *domain.PositiveInteger { return &c.ID }),
	codec.Prop("user_id", codec.PositiveInteger(), func(c *Client) *domain.PositiveInteger { return &c.UserID }),
	codec.Inline(ClientDetailsCodec, func(c *Client) *ClientDetails { return &c.Details }),
	codec.Prop("country_code", codec.CountryCode(), func(c *Client) *domain.CountryCode { return &c.CountryCode }),
	codec.Prop("email", codec.Optional(codec.EmailString()), func(c *Client) *domain.Option[domain.EmailString] { return &c.Email }),
	codec.Prop("created_at", codec.Time(), func(c *Client) *time.Time { return &c.CreatedAt }),
)

// ClientPatchCodec reads the updatable fields of a client. Sending "type"
// replaces the whole details group.
var ClientPatchCodec = codec.NewObject("ClientPatch",
	codec.Inline(ClientDetailsCodec, func(c *Client) *ClientDetails { return &c.Details }),
	codec.Prop("country_code", codec.CountryCode(), func(c *Client) *domain.CountryCode { return &c.CountryCode }),
	codec.Prop("email", codec.Optional(codec.EmailString()), func(c *Client) *domain.Option[domain.EmailString] { return &c.Email }),
)

var ClientInputCodec = codec.NewObject("ClientInput",
	codec.Inline(ClientDetailsCodec, func(c *NewClient) *ClientDetails { return &c.Details }),
	codec.Prop("country_code", codec.CountryCode(), func(c *NewClient) *domain.CountryCode { return &c.CountryCode }),
	codec.Prop("email", codec.Optional(codec.EmailString()), func(c *NewClient) *domain.Option[domain.EmailString] { return &c.Email }),
)

var NewClientCodec = codec.NewObject("NewClient",
	codec.Prop("user_id", codec.PositiveInteger(), func(c *NewClient) *domain.PositiveInteger { return &c.UserID }),
	codec.Inline(ClientDetailsCodec, func(c *NewClient) *ClientDetails { return &c.Details }),
	codec.Prop("country_code", codec.CountryCode(), func(c *NewClient) *domain.CountryCode { return &c.CountryCode }),
	codec.Prop("email", codec.Optional(codec.EmailString()), func(c *NewClient) *domain.Option[domain.EmailString] { return &c.Email }),
)
