// Package pagination holds the cursor-connection types returned by list
// endpoints and the codecs that put them on the wire.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"

	"tracker/internal/codec"
	"tracker/internal/domain"
)

// Cursor is an opaque reference to one row. Clients must not look inside.
type Cursor string

var ErrInvalidCursor = errors.New("invalid cursor")

// ToCursor encodes a primary key as base64 of its decimal form.
func ToCursor(id int64) Cursor {
	return Cursor(base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10))))
}

// FromCursor decodes a cursor produced by ToCursor.
func FromCursor(c Cursor) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(string(c))
	if err != nil {
		return 0, ErrInvalidCursor
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCursor
	}
	return id, nil
}

type Edge[T any] struct {
	Node   T
	Cursor Cursor
}

type PageInfo struct {
	StartCursor     domain.Option[Cursor]
	EndCursor       domain.Option[Cursor]
	HasNextPage     bool
	HasPreviousPage bool
}

type Connection[T any] struct {
	TotalCount int64
	Edges      []Edge[T]
	PageInfo   PageInfo
}

// Empty is the connection of an empty result set.
func Empty[T any]() Connection[T] {
	return Connection[T]{Edges: []Edge[T]{}}
}

// Nodes returns the nodes of every edge in order.
func (c Connection[T]) Nodes() []T {
	out := make([]T, len(c.Edges))
	for i, e := range c.Edges {
		out[i] = e.Node
	}
	return out
}

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Args are the paging arguments of a list request.
type Args struct {
	First          domain.Option[domain.PositiveInteger]
	After          domain.Option[Cursor]
	Last           domain.Option[domain.PositiveInteger]
	Before         domain.Option[Cursor]
	OrderBy        domain.Option[string]
	OrderDirection domain.Option[Direction]
}

// Validate rejects the combinations that have no meaning: first with before,
// last with after, and two cursors at once.
func (a Args) Validate() error {
	if a.First.IsSome() && a.Before.IsSome() {
		return domain.BadRequest("cannot combine first with before")
	}
	if a.Last.IsSome() && a.After.IsSome() {
		return domain.BadRequest("cannot combine last with after")
	}
	if a.After.IsSome() && a.Before.IsSome() {
		return domain.BadRequest("cannot combine after with before")
	}
	return nil
}

// CursorCodec only accepts strings that decode back to a primary key.
func CursorCodec() codec.Codec[Cursor] {
	return codec.Refine("Cursor", codec.String(), func(s string) (Cursor, error) {
		if _, err := FromCursor(Cursor(s)); err != nil {
			return "", err
		}
		return Cursor(s), nil
	}, func(c Cursor) string { return string(c) })
}

// ArgsCodec decodes paging arguments from a query string. orderable lists
// the only values orderBy may take.
func ArgsCodec(orderable ...string) *codec.Object[Args] {
	return codec.NewObject("PageArgs",
		codec.Prop("first", codec.Optional(codec.FromString(codec.PositiveInteger())),
			func(a *Args) *domain.Option[domain.PositiveInteger] { return &a.First }),
		codec.Prop("after", codec.Optional(CursorCodec()),
			func(a *Args) *domain.Option[Cursor] { return &a.After }),
		codec.Prop("last", codec.Optional(codec.FromString(codec.PositiveInteger())),
			func(a *Args) *domain.Option[domain.PositiveInteger] { return &a.Last }),
		codec.Prop("before", codec.Optional(CursorCodec()),
			func(a *Args) *domain.Option[Cursor] { return &a.Before }),
		codec.Prop("orderBy", codec.Optional(codec.Enum("OrderBy", orderable...)),
			func(a *Args) *domain.Option[string] { return &a.OrderBy }),
		codec.Prop("orderDirection", codec.Optional(codec.Enum("OrderDirection", Asc, Desc)),
			func(a *Args) *domain.Option[Direction] { return &a.OrderDirection }),
	)
}

func pageInfoCodec() *codec.Object[PageInfo] {
	return codec.NewObject("PageInfo",
		codec.Prop("startCursor", codec.Optional(CursorCodec()), func(p *PageInfo) *domain.Option[Cursor] { return &p.StartCursor }),
		codec.Prop("endCursor", codec.Optional(CursorCodec()), func(p *PageInfo) *domain.Option[Cursor] { return &p.EndCursor }),
		codec.Prop("hasNextPage", codec.Bool(), func(p *PageInfo) *bool { return &p.HasNextPage }),
		codec.Prop("hasPreviousPage", codec.Bool(), func(p *PageInfo) *bool { return &p.HasPreviousPage }),
	)
}

// ConnectionCodec renders a connection of nodes encoded by node.
func ConnectionCodec[T any](node codec.Codec[T]) codec.Codec[Connection[T]] {
	edge := codec.NewObject("Edge<"+node.Name()+">",
		codec.Prop("node", node, func(e *Edge[T]) *T { return &e.Node }),
		codec.Prop("cursor", CursorCodec(), func(e *Edge[T]) *Cursor { return &e.Cursor }),
	)
	return codec.NewObject("Connection<"+node.Name()+">",
		codec.Prop("totalCount", codec.Int64(), func(c *Connection[T]) *int64 { return &c.TotalCount }),
		codec.Prop("edges", codec.Array(edge.Codec()), func(c *Connection[T]) *[]Edge[T] { return &c.Edges }),
		codec.Prop("pageInfo", pageInfoCodec().Codec(), func(c *Connection[T]) *PageInfo { return &c.PageInfo }),
	).Codec()
}
