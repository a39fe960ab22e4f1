package domain

import (
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Branded scalars wrap a base value that is known to satisfy a predicate.
// The New* constructors are the only way to build one from untrusted input.
// The Unsafe* constructors skip validation and exist for test fixtures and
// for values the program itself produced; never feed them request data.
//
// A zero value such as PositiveInteger{} is a placeholder, not a branded
// value: any package can declare one, and the zero PositiveInteger,
// NonEmptyString, EmailString and CountryCode fail their own predicate.
// Only read a brand that came from a constructor or a successful decode.

var (
	ErrNotPositive    = errors.New("must be an integer greater than 0")
	ErrNegative       = errors.New("must be greater than or equal to 0")
	ErrNotPercentage  = errors.New("must be a number between 0 and 1")
	ErrEmptyString    = errors.New("must be a non-empty string")
	ErrInvalidEmail   = errors.New("must be a valid email address")
	ErrNotFiniteValue = errors.New("must be a finite number")
	ErrCountryCode    = errors.New("must be an ISO 3166-1 alpha-2 country code")
)

var validate = validator.New()

// PositiveInteger is an integer greater than 0. Its zero value is unset.
type PositiveInteger struct{ v int64 }

func NewPositiveInteger(n int64) (PositiveInteger, error) {
	if n <= 0 {
		return PositiveInteger{}, ErrNotPositive
	}
	return PositiveInteger{n}, nil
}

func UnsafePositiveInteger(n int64) PositiveInteger { return PositiveInteger{n} }

func (p PositiveInteger) Int64() int64 { return p.v }

type NonNegativeInteger struct{ v int64 }

func NewNonNegativeInteger(n int64) (NonNegativeInteger, error) {
	if n < 0 {
		return NonNegativeInteger{}, ErrNegative
	}
	return NonNegativeInteger{n}, nil
}

func UnsafeNonNegativeInteger(n int64) NonNegativeInteger { return NonNegativeInteger{n} }

func (p NonNegativeInteger) Int64() int64 { return p.v }

type NonNegativeNumber struct{ v float64 }

func NewNonNegativeNumber(f float64) (NonNegativeNumber, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NonNegativeNumber{}, ErrNotFiniteValue
	}
	if f < 0 {
		return NonNegativeNumber{}, ErrNegative
	}
	return NonNegativeNumber{f}, nil
}

func UnsafeNonNegativeNumber(f float64) NonNegativeNumber { return NonNegativeNumber{f} }

func (n NonNegativeNumber) Float64() float64 { return n.v }

// Percentage is a ratio in [0, 1].
type Percentage struct{ v float64 }

func NewPercentage(f float64) (Percentage, error) {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return Percentage{}, ErrNotPercentage
	}
	return Percentage{f}, nil
}

func UnsafePercentage(f float64) Percentage { return Percentage{f} }

func (p Percentage) Float64() float64 { return p.v }

// NonEmptyString holds a string with at least one non-space character.
// Surrounding whitespace is preserved.
type NonEmptyString struct{ v string }

func NewNonEmptyString(s string) (NonEmptyString, error) {
	if strings.TrimSpace(s) == "" {
		return NonEmptyString{}, ErrEmptyString
	}
	return NonEmptyString{s}, nil
}

func UnsafeNonEmptyString(s string) NonEmptyString { return NonEmptyString{s} }

func (s NonEmptyString) String() string { return s.v }

// EmailString is an address accepted by the validator's email rule. Its
// zero value is unset.
type EmailString struct{ v string }

func NewEmailString(s string) (EmailString, error) {
	if err := validate.Var(s, "required,email"); err != nil {
		return EmailString{}, ErrInvalidEmail
	}
	return EmailString{s}, nil
}

func UnsafeEmailString(s string) EmailString { return EmailString{s} }

func (e EmailString) String() string { return e.v }

// CountryCode is an upper-case ISO 3166-1 alpha-2 code.
type CountryCode struct{ v string }

func NewCountryCode(s string) (CountryCode, error) {
	if s != strings.ToUpper(s) || validate.Var(s, "required,iso3166_1_alpha2") != nil {
		return CountryCode{}, ErrCountryCode
	}
	return CountryCode{s}, nil
}

func UnsafeCountryCode(s string) CountryCode { return CountryCode{s} }

func (c CountryCode) String() string { return c.v }
