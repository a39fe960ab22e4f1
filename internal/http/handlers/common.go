package handlers

import (
	"sort"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/http/dispatch"
	"tracker/internal/pagination"
)

// None marks a surface a route does not read or write.
type None = dispatch.None

type idParams struct {
	ID domain.PositiveInteger
}

var idParamsCodec = codec.NewObject("IDParams",
	codec.Prop("id", codec.FromString(codec.PositiveInteger()), func(p *idParams) *domain.PositiveInteger { return &p.ID }),
).Codec()

// pageArgsCodec reads the paging arguments of a list endpoint whose
// orderBy allow-list is sortable.
func pageArgsCodec(sortable map[string]string) *codec.Object[pagination.Args] {
	keys := make([]string, 0, len(sortable))
	for k := range sortable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return pagination.ArgsCodec(keys...)
}

// currentUser is the id of the authenticated caller.
func currentUser(ac domain.AuthContext) (int64, error) {
	p, err := ac.Require()
	if err != nil {
		return 0, err
	}
	return p.UserID.Int64(), nil
}

// found unwraps a lookup, turning None into not_found for resource.
func found[T any](v domain.Option[T], err error, resource string) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.Get()
	if !ok {
		return out, domain.NotFound(resource)
	}
	return out, nil
}

// removed turns a zero row count into not_found for resource.
func removed(n int64, err error, resource string) (None, error) {
	if err != nil {
		return None{}, err
	}
	if n == 0 {
		return None{}, domain.NotFound(resource)
	}
	return None{}, nil
}
