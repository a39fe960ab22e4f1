package codec

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"tracker/internal/domain"
)

// String accepts strings and driver byte slices.
func String() Codec[string] {
	return New("string", func(in any) (string, error) {
		switch v := in.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		case nil:
			return "", errRequired
		default:
			return "", errors.New("expected a string")
		}
	}, func(s string) any { return s })
}

// Int64 accepts any integral number representation.
func Int64() Codec[int64] {
	return New("integer", func(in any) (int64, error) {
		switch v := in.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case uint8:
			return int64(v), nil
		case float64:
			if v != math.Trunc(v) || math.IsInf(v, 0) {
				return 0, errors.New("expected an integer")
			}
			return int64(v), nil
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return 0, errors.New("expected an integer")
			}
			return n, nil
		case []byte:
			n, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return 0, errors.New("expected an integer")
			}
			return n, nil
		case nil:
			return 0, errRequired
		default:
			return 0, errors.New("expected an integer")
		}
	}, func(n int64) any { return n })
}

// Float64 accepts any numeric representation. Byte slices cover DECIMAL
// columns returned as text by the MySQL driver.
func Float64() Codec[float64] {
	return New("number", func(in any) (float64, error) {
		switch v := in.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return 0, errors.New("expected a number")
			}
			return f, nil
		case []byte:
			f, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return 0, errors.New("expected a number")
			}
			return f, nil
		case nil:
			return 0, errRequired
		default:
			return 0, errors.New("expected a number")
		}
	}, func(f float64) any { return f })
}

// Bool accepts booleans and the 0/1 integers engines store them as.
func Bool() Codec[bool] {
	return New("boolean", func(in any) (bool, error) {
		switch v := in.(type) {
		case bool:
			return v, nil
		case int64:
			if v == 0 || v == 1 {
				return v == 1, nil
			}
		case []byte:
			if s := string(v); s == "0" || s == "1" {
				return s == "1", nil
			}
		case nil:
			return false, errRequired
		}
		return false, errors.New("expected a boolean")
	}, func(b bool) any { return b })
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// Time accepts time.Time and the textual layouts JSON clients and engines
// use. It encodes to time.Time, which encoding/json renders as RFC 3339.
func Time() Codec[time.Time] {
	return New("datetime", func(in any) (time.Time, error) {
		var s string
		switch v := in.(type) {
		case time.Time:
			return v, nil
		case string:
			s = v
		case []byte:
			s = string(v)
		case nil:
			return time.Time{}, errRequired
		default:
			return time.Time{}, errors.New("expected a datetime")
		}
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, errors.New("expected an RFC 3339 datetime")
	}, func(t time.Time) any { return t })
}

var errRequired = errors.New("is required")

// FromString lets a numeric or boolean codec read path and query
// parameters, which always arrive as text.
func FromString[T any](c Codec[T]) Codec[T] {
	return Codec[T]{
		name: c.name + "FromString",
		decode: func(in any, at string, errs *Errors) (T, bool) {
			if s, ok := in.(string); ok {
				in = parseScalar(s)
			}
			return c.decodeAt(in, at, errs)
		},
		encode: c.encode,
	}
}

// parseScalar keeps non-integral numeric text as a json.Number so integer
// codecs reject "2.0" and "1e3" while number codecs still read them.
func parseScalar(s string) any {
	t := strings.TrimSpace(s)
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return n
	}
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return json.Number(t)
	}
	if b, err := strconv.ParseBool(t); err == nil {
		return b
	}
	return s
}

// Optional maps absence and null to None.
func Optional[T any](c Codec[T]) Codec[domain.Option[T]] {
	return Codec[domain.Option[T]]{
		name: "Option<" + c.name + ">",
		decode: func(in any, at string, errs *Errors) (domain.Option[T], bool) {
			if in == nil {
				return domain.None[T](), true
			}
			v, ok := c.decodeAt(in, at, errs)
			if !ok {
				return domain.None[T](), false
			}
			return domain.Some(v), true
		},
		encode: func(o domain.Option[T]) any {
			v, ok := o.Get()
			if !ok {
				return nil
			}
			return c.Encode(v)
		},
	}
}

// Defaulted is Optional whose None encodes to Undefined, so the field is
// omitted and the store applies its own default.
func Defaulted[T any](c Codec[T]) Codec[domain.Option[T]] {
	opt := Optional(c)
	return Codec[domain.Option[T]]{
		name:   opt.name,
		decode: opt.decode,
		encode: func(o domain.Option[T]) any {
			if o.IsNone() {
				return Undefined
			}
			return opt.Encode(o)
		},
	}
}

// Branded scalars.

func PositiveInteger() Codec[domain.PositiveInteger] {
	return Refine("PositiveInteger", Int64(), domain.NewPositiveInteger, domain.PositiveInteger.Int64)
}

func NonNegativeInteger() Codec[domain.NonNegativeInteger] {
	return Refine("NonNegativeInteger", Int64(), domain.NewNonNegativeInteger, domain.NonNegativeInteger.Int64)
}

func NonNegativeNumber() Codec[domain.NonNegativeNumber] {
	return Refine("NonNegativeNumber", Float64(), domain.NewNonNegativeNumber, domain.NonNegativeNumber.Float64)
}

func Percentage() Codec[domain.Percentage] {
	return Refine("Percentage", Float64(), domain.NewPercentage, domain.Percentage.Float64)
}

func NonEmptyString() Codec[domain.NonEmptyString] {
	return Refine("NonEmptyString", String(), domain.NewNonEmptyString, domain.NonEmptyString.String)
}

func EmailString() Codec[domain.EmailString] {
	return Refine("EmailString", String(), domain.NewEmailString, domain.EmailString.String)
}

func CountryCode() Codec[domain.CountryCode] {
	return Refine("CountryCode", String(), domain.NewCountryCode, domain.CountryCode.String)
}
