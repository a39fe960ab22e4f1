// Package codec converts between wire values and domain values.
//
// A wire value is what encoding/json produces when decoding into an `any`
// (map[string]any, []any, string, json.Number, float64, bool, nil) or what a
// database/sql driver scans into an `any` (int64, float64, []byte, string,
// time.Time, bool, nil). Encoders return plain Go values that both
// encoding/json and database/sql accept.
//
// Decoding never stops at the first problem: every violation is collected
// into Errors so callers see all of them at once.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldError is one validation failure at a dotted path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Errors aggregates every FieldError found while decoding a value.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		if fe.Path == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Path+": "+fe.Message)
	}
	return "invalid value: " + strings.Join(parts, "; ")
}

// Prefix returns a copy of e with every path nested under root.
func (e Errors) Prefix(root string) Errors {
	out := make(Errors, len(e))
	for i, fe := range e {
		out[i] = FieldError{Path: join(root, fe.Path), Message: fe.Message}
	}
	return out
}

func (e *Errors) add(at, msg string) {
	*e = append(*e, FieldError{Path: at, Message: msg})
}

// AsErrors extracts validation errors from err.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// undefined is the encoded form of "let the store pick the value".
type undefined struct{}

// Undefined marks an encoded field that must be left out of the output.
var Undefined any = undefined{}

// IsUndefined reports whether an encoded value is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Codec is a named, bidirectional transform for T. For every v accepted by
// Encode, Decode(Encode(v)) yields v again.
type Codec[T any] struct {
	name   string
	decode func(in any, at string, errs *Errors) (T, bool)
	encode func(T) any
}

// New builds a leaf codec from a decode function that reports one problem.
func New[T any](name string, decode func(in any) (T, error), encode func(T) any) Codec[T] {
	return Codec[T]{
		name: name,
		decode: func(in any, at string, errs *Errors) (T, bool) {
			v, err := decode(in)
			if err != nil {
				if nested, ok := AsErrors(err); ok {
					*errs = append(*errs, nested.Prefix(at)...)
				} else {
					errs.add(at, err.Error())
				}
				var zero T
				return zero, false
			}
			return v, true
		},
		encode: encode,
	}
}

func (c Codec[T]) Name() string { return c.name }

// IsZero reports whether c is the zero Codec, i.e. no codec at all.
func (c Codec[T]) IsZero() bool { return c.decode == nil }

func (c Codec[T]) Decode(in any) (T, error) {
	var errs Errors
	v, ok := c.decodeAt(in, "", &errs)
	if len(errs) > 0 || !ok {
		if len(errs) == 0 {
			errs.add("", "invalid "+c.name)
		}
		var zero T
		return zero, errs
	}
	return v, nil
}

func (c Codec[T]) Encode(v T) any { return c.encode(v) }

func (c Codec[T]) decodeAt(in any, at string, errs *Errors) (T, bool) {
	return c.decode(in, at, errs)
}

// Refine narrows base into B through refine, which validates and converts.
// unwrap returns the base value back for encoding.
func Refine[T, B any](name string, base Codec[T], refine func(T) (B, error), unwrap func(B) T) Codec[B] {
	return Codec[B]{
		name: name,
		decode: func(in any, at string, errs *Errors) (B, bool) {
			var zero B
			v, ok := base.decodeAt(in, at, errs)
			if !ok {
				return zero, false
			}
			b, err := refine(v)
			if err != nil {
				errs.add(at, err.Error())
				return zero, false
			}
			return b, true
		},
		encode: func(b B) any { return base.Encode(unwrap(b)) },
	}
}

// Enum accepts exactly one of values.
func Enum[T ~string](name string, values ...T) Codec[T] {
	allowed := make(map[string]T, len(values))
	names := make([]string, 0, len(values))
	for _, v := range values {
		allowed[string(v)] = v
		names = append(names, string(v))
	}
	sort.Strings(names)
	return Refine(name, String(), func(s string) (T, error) {
		v, ok := allowed[s]
		if !ok {
			return v, fmt.Errorf("must be one of %s", strings.Join(names, ", "))
		}
		return v, nil
	}, func(v T) string { return string(v) })
}

// Array decodes a list, collecting errors from every element.
func Array[T any](item Codec[T]) Codec[[]T] {
	return Codec[[]T]{
		name: "Array<" + item.name + ">",
		decode: func(in any, at string, errs *Errors) ([]T, bool) {
			list, ok := in.([]any)
			if !ok {
				errs.add(at, "expected an array")
				return nil, false
			}
			out := make([]T, 0, len(list))
			valid := true
			for i, raw := range list {
				v, ok := item.decodeAt(raw, fmt.Sprintf("%s[%d]", at, i), errs)
				valid = valid && ok
				out = append(out, v)
			}
			if !valid {
				return nil, false
			}
			return out, true
		},
		encode: func(vs []T) any {
			out := make([]any, len(vs))
			for i, v := range vs {
				out[i] = item.Encode(v)
			}
			return out
		},
	}
}

// OneOrMany accepts a single item or a list of items.
func OneOrMany[T any](item Codec[T]) Codec[[]T] {
	list := Array(item)
	return Codec[[]T]{
		name: item.name + " | " + list.name,
		decode: func(in any, at string, errs *Errors) ([]T, bool) {
			if _, ok := in.([]any); ok {
				return list.decodeAt(in, at, errs)
			}
			v, ok := item.decodeAt(in, at, errs)
			if !ok {
				return nil, false
			}
			return []T{v}, true
		},
		encode: list.encode,
	}
}

func join(root, path string) string {
	switch {
	case root == "":
		return path
	case path == "":
		return root
	case strings.HasPrefix(path, "["):
		return root + path
	default:
		return root + "." + path
	}
}
