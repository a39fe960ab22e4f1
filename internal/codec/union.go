package codec

import (
	"sort"
	"strings"
)

// Variant is one tagged case of a Union over T.
type Variant[T any] interface {
	tag() string
	keys() []string
	decode(m map[string]any, at string, errs *Errors) (T, bool)
	encode(v T, out map[string]any) bool
}

type variant[T, V any] struct {
	name   string
	fields *Object[V]
	wrap   func(V) T
	unwrap func(T) (V, bool)
}

// Case declares the variant tagged name, whose fields are described by
// fields. wrap lifts a decoded V into T; unwrap recognises T values of this
// case when encoding.
func Case[T, V any](name string, fields *Object[V], wrap func(V) T, unwrap func(T) (V, bool)) Variant[T] {
	return variant[T, V]{name: name, fields: fields, wrap: wrap, unwrap: unwrap}
}

func (c variant[T, V]) tag() string { return c.name }

func (c variant[T, V]) keys() []string { return c.fields.Keys() }

func (c variant[T, V]) decode(m map[string]any, at string, errs *Errors) (T, bool) {
	v, ok := c.fields.decodeMap(m, at, errs)
	if !ok {
		var zero T
		return zero, false
	}
	return c.wrap(v), true
}

func (c variant[T, V]) encode(v T, out map[string]any) bool {
	inner, ok := c.unwrap(v)
	if !ok {
		return false
	}
	c.fields.encodeInto(inner, out)
	return true
}

// Union is a tagged sum: the value of the tag key selects which variant's
// fields are required. A record carrying the tag but missing fields of that
// variant fails to decode; it never yields a half-populated value.
type Union[T any] struct {
	name     string
	tagKey   string
	variants []Variant[T]
}

func NewUnion[T any](name, tagKey string, variants ...Variant[T]) *Union[T] {
	return &Union[T]{name: name, tagKey: tagKey, variants: variants}
}

func (u *Union[T]) Name() string { return u.name }

// Keys returns the tag key plus the keys of every variant.
func (u *Union[T]) Keys() []string {
	seen := map[string]bool{u.tagKey: true}
	keys := []string{u.tagKey}
	for _, v := range u.variants {
		for _, k := range v.keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func (u *Union[T]) tags() []string {
	tags := make([]string, len(u.variants))
	for i, v := range u.variants {
		tags[i] = v.tag()
	}
	return tags
}

// present reports whether m names the tag or any variant field; a variant
// field without its tag then fails decode at the tag key.
func (u *Union[T]) present(m map[string]any) bool {
	for _, k := range u.Keys() {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func (u *Union[T]) decodeMap(m map[string]any, at string, errs *Errors) (T, bool) {
	var zero T
	raw, _ := m[u.tagKey].(string)
	if b, ok := m[u.tagKey].([]byte); ok {
		raw = string(b)
	}
	for _, v := range u.variants {
		if v.tag() == raw {
			return v.decode(m, at, errs)
		}
	}
	errs.add(join(at, u.tagKey), "must be one of "+strings.Join(u.tags(), ", "))
	return zero, false
}

// encodeInto writes the tag and the active variant's fields. Fields that
// belong only to other variants are written as null so a stored row never
// keeps stale values from a previous tag.
func (u *Union[T]) encodeInto(v T, out map[string]any) {
	for _, c := range u.variants {
		fields := map[string]any{}
		if !c.encode(v, fields) {
			continue
		}
		for _, k := range u.Keys() {
			if k != u.tagKey {
				out[k] = nil
			}
		}
		for k, fv := range fields {
			out[k] = fv
		}
		out[u.tagKey] = c.tag()
		return
	}
}

func (u *Union[T]) Decode(in any) (T, error) { return u.Codec().Decode(in) }

func (u *Union[T]) Encode(v T) map[string]any {
	out := map[string]any{}
	u.encodeInto(v, out)
	return dropUndefined(out)
}

func (u *Union[T]) Codec() Codec[T] {
	return Codec[T]{
		name: u.name,
		decode: func(in any, at string, errs *Errors) (T, bool) {
			m, ok := in.(map[string]any)
			if !ok {
				var zero T
				errs.add(at, "expected an object")
				return zero, false
			}
			return u.decodeMap(m, at, errs)
		},
		encode: func(v T) any { return u.Encode(v) },
	}
}
