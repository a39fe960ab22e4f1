package codec

import (
	"encoding/json"
	"testing"
	"time"

	"tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact interface{ isContact() }

type person struct {
	FirstName domain.NonEmptyString
	LastName  domain.NonEmptyString
}

type company struct {
	BusinessName domain.NonEmptyString
}

func (person) isContact()  {}
func (company) isContact() {}

type address struct {
	City domain.NonEmptyString
}

type record struct {
	ID      domain.PositiveInteger
	Email   domain.Option[domain.EmailString]
	Rate    domain.Percentage
	Created time.Time
	Tags    []string
	Address address
	Contact contact
}

var personFields = NewObject("Person",
	Prop("first_name", NonEmptyString(), func(p *person) *domain.NonEmptyString { return &p.FirstName }),
	Prop("last_name", NonEmptyString(), func(p *person) *domain.NonEmptyString { return &p.LastName }),
)

var companyFields = NewObject("Company",
	Prop("business_name", NonEmptyString(), func(c *company) *domain.NonEmptyString { return &c.BusinessName }),
)

var contactUnion = NewUnion[contact]("Contact", "type",
	Case("PRIVATE", personFields,
		func(p person) contact { return p },
		func(c contact) (person, bool) { p, ok := c.(person); return p, ok }),
	Case("BUSINESS", companyFields,
		func(b company) contact { return b },
		func(c contact) (company, bool) { b, ok := c.(company); return b, ok }),
)

var addressFields = NewObject("Address",
	Prop("city", NonEmptyString(), func(a *address) *domain.NonEmptyString { return &a.City }),
)

var recordCodec = NewObject("Record",
	Prop("id", PositiveInteger(), func(r *record) *domain.PositiveInteger { return &r.ID }),
	Prop("email", Optional(EmailString()), func(r *record) *domain.Option[domain.EmailString] { return &r.Email }),
	Prop("rate", Percentage(), func(r *record) *domain.Percentage { return &r.Rate }),
	Prop("created_at", Time(), func(r *record) *time.Time { return &r.Created }),
	Prop("tags", Array(String()), func(r *record) *[]string { return &r.Tags }),
	Prop("address", addressFields.Codec(), func(r *record) *address { return &r.Address }),
	Inline(contactUnion, func(r *record) *contact { return &r.Contact }),
)

func fixtureRecord() record {
	return record{
		ID:      domain.UnsafePositiveInteger(7),
		Email:   domain.Some(domain.UnsafeEmailString("ada@example.com")),
		Rate:    domain.UnsafePercentage(0.22),
		Created: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Tags:    []string{"a", "b"},
		Address: address{City: domain.UnsafeNonEmptyString("Turin")},
		Contact: person{FirstName: domain.UnsafeNonEmptyString("Ada"), LastName: domain.UnsafeNonEmptyString("Lovelace")},
	}
}

// viaJSON sends an encoded value through encoding/json the way a client would.
func viaJSON(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestObjectRoundTrip(t *testing.T) {
	in := fixtureRecord()

	got, err := recordCodec.Decode(recordCodec.Encode(in))
	require.NoError(t, err)
	assert.True(t, in.Created.Equal(got.Created))
	got.Created = in.Created
	assert.Equal(t, in, got)

	got, err = recordCodec.Decode(viaJSON(t, recordCodec.Encode(in)))
	require.NoError(t, err)
	assert.True(t, in.Created.Equal(got.Created))
	assert.Equal(t, in.Contact, got.Contact)
	assert.Equal(t, in.Email, got.Email)
}

func TestObjectRoundTrip_NoneEncodesAsNull(t *testing.T) {
	in := fixtureRecord()
	in.Email = domain.None[domain.EmailString]()
	in.Contact = company{BusinessName: domain.UnsafeNonEmptyString("Acme")}

	out := recordCodec.Encode(in)
	v, present := out["email"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, "BUSINESS", out["type"])
	assert.Nil(t, out["first_name"])

	got, err := recordCodec.Decode(out)
	require.NoError(t, err)
	assert.True(t, got.Email.IsNone())
	assert.Equal(t, in.Contact, got.Contact)
}

func TestObjectDecode_CollectsEveryError(t *testing.T) {
	_, err := recordCodec.Decode(map[string]any{
		"id":         json.Number("0"),
		"email":      "nope",
		"rate":       1.5,
		"created_at": "yesterday",
		"tags":       []any{"ok", 3},
		"address":    map[string]any{},
		"type":       "PRIVATE",
		"first_name": "Ada",
	})
	errs, ok := AsErrors(err)
	require.True(t, ok)

	paths := map[string]bool{}
	for _, fe := range errs {
		paths[fe.Path] = true
	}
	for _, want := range []string{"id", "email", "rate", "created_at", "tags[1]", "address.city", "last_name"} {
		assert.True(t, paths[want], "missing error for %s in %v", want, errs)
	}
}

func TestUnion_MissingVariantFieldsFails(t *testing.T) {
	_, err := contactUnion.Decode(map[string]any{"type": "BUSINESS", "first_name": "Ada", "last_name": "L"})
	errs, ok := AsErrors(err)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "business_name", errs[0].Path)

	_, err = contactUnion.Decode(map[string]any{"type": "OTHER"})
	errs, _ = AsErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "type", errs[0].Path)
}

func TestUnionKeys(t *testing.T) {
	assert.Equal(t, []string{"business_name", "first_name", "last_name", "type"}, contactUnion.Keys())
}

func TestDecodePartial(t *testing.T) {
	p, err := recordCodec.DecodePartial(map[string]any{"rate": 0.1, "email": nil})
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "rate"}, p.Fields)
	assert.True(t, p.Has("rate"))
	assert.False(t, p.Has("id"))

	out := recordCodec.EncodePartial(p)
	assert.Equal(t, map[string]any{"rate": 0.1, "email": nil}, out)
}

func TestDecodePartial_TagRequiresVariantFields(t *testing.T) {
	_, err := recordCodec.DecodePartial(map[string]any{"type": "PRIVATE", "first_name": "Ada"})
	errs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "last_name", errs[0].Path)

	p, err := recordCodec.DecodePartial(map[string]any{"type": "BUSINESS", "business_name": "Acme"})
	require.NoError(t, err)
	out := recordCodec.EncodePartial(p)
	assert.Equal(t, "Acme", out["business_name"])
	assert.Contains(t, out, "first_name")
	assert.Nil(t, out["first_name"])
}

func TestDecodePartial_VariantFieldWithoutTag(t *testing.T) {
	_, err := recordCodec.DecodePartial(map[string]any{"first_name": "Ada", "business_name": "Acme"})
	errs, ok := AsErrors(err)
	require.True(t, ok, "%v", err)
	require.Len(t, errs, 1)
	assert.Equal(t, "type", errs[0].Path)
}

func TestPartialCodec(t *testing.T) {
	c := recordCodec.PartialCodec()
	p, err := c.Decode(map[string]any{"rate": 0.5})
	require.NoError(t, err)
	assert.Equal(t, []string{"rate"}, p.Fields)
	assert.Equal(t, map[string]any{"rate": 0.5}, c.Encode(p))

	_, err = c.Decode(map[string]any{"rate": 3.0, "id": 0})
	errs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Len(t, errs, 2)
}

func TestDefaultedDropsNone(t *testing.T) {
	type row struct {
		Name  string
		Start domain.Option[time.Time]
	}
	obj := NewObject("Row",
		Prop("name", String(), func(r *row) *string { return &r.Name }),
		Prop("start", Defaulted(Time()), func(r *row) *domain.Option[time.Time] { return &r.Start }),
	)
	assert.Equal(t, map[string]any{"name": "x"}, obj.Encode(row{Name: "x"}))

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := obj.Encode(row{Name: "x", Start: domain.Some(ts)})
	assert.Equal(t, ts, out["start"])
}

func TestScalarRoundTrips(t *testing.T) {
	for _, n := range []int64{1, 42, 1 << 40} {
		got, err := PositiveInteger().Decode(PositiveInteger().Encode(domain.UnsafePositiveInteger(n)))
		require.NoError(t, err)
		assert.Equal(t, n, got.Int64())
	}
	for _, s := range []string{"x", " padded "} {
		got, err := NonEmptyString().Decode(NonEmptyString().Encode(domain.UnsafeNonEmptyString(s)))
		require.NoError(t, err)
		assert.Equal(t, s, got.String())
	}
	f, err := NonNegativeNumber().Decode(NonNegativeNumber().Encode(domain.UnsafeNonNegativeNumber(12.5)))
	require.NoError(t, err)
	assert.Equal(t, 12.5, f.Float64())

	b, err := Bool().Decode(Bool().Encode(true))
	require.NoError(t, err)
	assert.True(t, b)
}

func TestScalarDriverForms(t *testing.T) {
	n, err := Int64().Decode([]byte("12"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	f, err := Float64().Decode([]byte("3.25"))
	require.NoError(t, err)
	assert.Equal(t, 3.25, f)

	b, err := Bool().Decode(int64(1))
	require.NoError(t, err)
	assert.True(t, b)

	ts, err := Time().Decode("2024-05-01 10:00:00")
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	_, err = Int64().Decode(1.5)
	assert.Error(t, err)
}

func TestFromString(t *testing.T) {
	c := FromString(PositiveInteger())
	v, err := c.Decode("15")
	require.NoError(t, err)
	assert.Equal(t, int64(15), v.Int64())

	_, err = c.Decode("fifteen")
	assert.Error(t, err)

	for _, text := range []string{"2.0", "1e3", "1.5"} {
		_, err = c.Decode(text)
		assert.Error(t, err, text)
	}

	rate, err := FromString(Percentage()).Decode("0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, rate.Float64())
	n, err := FromString(Float64()).Decode("1e3")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, n)
}

func TestEnum(t *testing.T) {
	type dir string
	c := Enum[dir]("Direction", "ASC", "DESC")
	v, err := c.Decode("DESC")
	require.NoError(t, err)
	assert.Equal(t, dir("DESC"), v)

	_, err = c.Decode("UP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASC, DESC")
}

func TestOneOrMany(t *testing.T) {
	c := OneOrMany(PositiveInteger())
	one, err := c.Decode(json.Number("3"))
	require.NoError(t, err)
	assert.Len(t, one, 1)

	many, err := c.Decode([]any{json.Number("3"), json.Number("4")})
	require.NoError(t, err)
	assert.Len(t, many, 2)
}

func TestRequiredMessage(t *testing.T) {
	_, err := recordCodec.Decode(nil)
	errs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "is required", errs[0].Message)
}
