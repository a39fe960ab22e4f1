package codec

import (
	"sort"
)

// Mapper is a codec that reads and writes a group of keys of an enclosing
// record. Objects and unions are mappers, which is what lets a record be the
// intersection of independent field groups (see Inline).
type Mapper[T any] interface {
	Keys() []string
	present(m map[string]any) bool
	decodeMap(m map[string]any, at string, errs *Errors) (T, bool)
	encodeInto(v T, out map[string]any)
}

// Property binds one field (or inlined field group) of S to its codec.
type Property[S any] interface {
	keys() []string
	present(m map[string]any) bool
	decode(m map[string]any, dst *S, at string, errs *Errors) bool
	encode(src *S, out map[string]any)
}

type keyed[S, F any] struct {
	key   string
	codec Codec[F]
	ref   func(*S) *F
}

// Prop binds key to the field of S returned by ref.
func Prop[S, F any](key string, c Codec[F], ref func(*S) *F) Property[S] {
	return keyed[S, F]{key: key, codec: c, ref: ref}
}

func (p keyed[S, F]) keys() []string { return []string{p.key} }

func (p keyed[S, F]) present(m map[string]any) bool {
	_, ok := m[p.key]
	return ok
}

func (p keyed[S, F]) decode(m map[string]any, dst *S, at string, errs *Errors) bool {
	v, ok := p.codec.decodeAt(m[p.key], join(at, p.key), errs)
	if ok {
		*p.ref(dst) = v
	}
	return ok
}

func (p keyed[S, F]) encode(src *S, out map[string]any) {
	out[p.key] = p.codec.Encode(*p.ref(src))
}

type inline[S, F any] struct {
	mapper Mapper[F]
	ref    func(*S) *F
}

// Inline merges the keys of m into the enclosing record instead of nesting
// them under a key of their own.
func Inline[S, F any](m Mapper[F], ref func(*S) *F) Property[S] {
	return inline[S, F]{mapper: m, ref: ref}
}

func (p inline[S, F]) keys() []string { return p.mapper.Keys() }

func (p inline[S, F]) present(m map[string]any) bool { return p.mapper.present(m) }

func (p inline[S, F]) decode(m map[string]any, dst *S, at string, errs *Errors) bool {
	v, ok := p.mapper.decodeMap(m, at, errs)
	if ok {
		*p.ref(dst) = v
	}
	return ok
}

func (p inline[S, F]) encode(src *S, out map[string]any) {
	p.mapper.encodeInto(*p.ref(src), out)
}

// Object is a record codec over S. Unknown keys are ignored on decode and
// Undefined values are dropped on encode.
type Object[S any] struct {
	name  string
	props []Property[S]
}

func NewObject[S any](name string, props ...Property[S]) *Object[S] {
	return &Object[S]{name: name, props: props}
}

func (o *Object[S]) Name() string { return o.name }

// Keys returns every key the object reads or writes, sorted.
func (o *Object[S]) Keys() []string {
	seen := map[string]bool{}
	var keys []string
	for _, p := range o.props {
		for _, k := range p.keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func (o *Object[S]) present(m map[string]any) bool {
	for _, p := range o.props {
		if p.present(m) {
			return true
		}
	}
	return false
}

func (o *Object[S]) decodeMap(m map[string]any, at string, errs *Errors) (S, bool) {
	var v S
	valid := true
	for _, p := range o.props {
		if !p.decode(m, &v, at, errs) {
			valid = false
		}
	}
	return v, valid
}

func (o *Object[S]) encodeInto(v S, out map[string]any) {
	for _, p := range o.props {
		p.encode(&v, out)
	}
}

func (o *Object[S]) decodeAt(in any, at string, errs *Errors) (S, bool) {
	m, ok := in.(map[string]any)
	if !ok {
		var zero S
		if in == nil {
			errs.add(at, errRequired.Error())
		} else {
			errs.add(at, "expected an object")
		}
		return zero, false
	}
	return o.decodeMap(m, at, errs)
}

func (o *Object[S]) Decode(in any) (S, error) { return o.Codec().Decode(in) }

// Encode renders v as a record, leaving out Undefined fields.
func (o *Object[S]) Encode(v S) map[string]any {
	out := make(map[string]any, len(o.props))
	o.encodeInto(v, out)
	return dropUndefined(out)
}

// Codec exposes the object as a plain Codec so it can be nested.
func (o *Object[S]) Codec() Codec[S] {
	return Codec[S]{
		name:   o.name,
		decode: o.decodeAt,
		encode: func(v S) any { return o.Encode(v) },
	}
}

// Partial is a record decoded with key-presence semantics: only the keys in
// Fields were supplied, the rest of Value is zero and must not be written.
type Partial[S any] struct {
	Value  S
	Fields []string
}

func (p Partial[S]) Has(key string) bool {
	for _, f := range p.Fields {
		if f == key {
			return true
		}
	}
	return false
}

func (p Partial[S]) IsEmpty() bool { return len(p.Fields) == 0 }

// DecodePartial decodes only the properties whose keys are present in in.
// An inlined union counts as present when its tag or any variant field is;
// it then needs the tag and all of that variant's fields.
func (o *Object[S]) DecodePartial(in any) (Partial[S], error) {
	var errs Errors
	m, ok := in.(map[string]any)
	if !ok {
		errs.add("", "expected an object")
		return Partial[S]{}, errs
	}
	var p Partial[S]
	for _, prop := range o.props {
		if !prop.present(m) {
			continue
		}
		if prop.decode(m, &p.Value, "", &errs) {
			p.Fields = append(p.Fields, prop.keys()...)
		}
	}
	if len(errs) > 0 {
		return Partial[S]{}, errs
	}
	sort.Strings(p.Fields)
	return p, nil
}

// EncodePartial renders only the supplied fields of p.
func (o *Object[S]) EncodePartial(p Partial[S]) map[string]any {
	full := make(map[string]any, len(o.props))
	o.encodeInto(p.Value, full)
	out := make(map[string]any, len(p.Fields))
	for _, k := range p.Fields {
		if v, ok := full[k]; ok {
			out[k] = v
		}
	}
	return dropUndefined(out)
}

func dropUndefined(m map[string]any) map[string]any {
	for k, v := range m {
		if IsUndefined(v) {
			delete(m, k)
		}
	}
	return m
}

// PartialCodec exposes DecodePartial and EncodePartial as a Codec, for
// request bodies of partial updates.
func (o *Object[S]) PartialCodec() Codec[Partial[S]] {
	return New("Partial<"+o.name+">",
		func(in any) (Partial[S], error) { return o.DecodePartial(in) },
		func(p Partial[S]) any { return o.EncodePartial(p) },
	)
}
