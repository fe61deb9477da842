package precision

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ConversionError reports a value that could not be parsed as a finite
// decimal. NaN, infinities and malformed strings are never coerced to zero;
// they always surface as this error.
type ConversionError struct {
	Value  string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to decimal: %s", e.Value, e.Reason)
}

// StorageDecimal is the fixed-point storage representation of a monetary or
// unit-count value: always exactly 6 fractional digits. It is the shape
// persisted fields take; in-memory arithmetic uses decimal.Decimal instead.
type StorageDecimal struct {
	value decimal.Decimal
}

// Decimal returns the underlying arbitrary-precision value.
func (s StorageDecimal) Decimal() decimal.Decimal { return s.value }

// String renders the value with exactly 6 fractional digits.
func (s StorageDecimal) String() string { return s.value.StringFixed(StoragePlaces) }

// MarshalJSON emits the storage form as a quoted decimal string so it never
// travels as a binary float.
func (s StorageDecimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// coerce turns any supported input into an arbitrary-precision decimal.
// nil (and an invalid NullDecimal) coerces to nil without error.
func coerce(v any) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case decimal.Decimal:
		return &val, nil
	case *decimal.Decimal:
		return val, nil
	case decimal.NullDecimal:
		if !val.Valid {
			return nil, nil
		}
		return &val.Decimal, nil
	case StorageDecimal:
		d := val.value
		return &d, nil
	case *StorageDecimal:
		if val == nil {
			return nil, nil
		}
		d := val.value
		return &d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return nil, &ConversionError{Value: val, Reason: "not a valid decimal string"}
		}
		return &d, nil
	case json.Number:
		return coerce(string(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, &ConversionError{Value: fmt.Sprintf("%v", val), Reason: "not a finite number"}
		}
		d := decimal.NewFromFloat(val)
		return &d, nil
	case float32:
		return coerce(float64(val))
	case int:
		d := decimal.NewFromInt(int64(val))
		return &d, nil
	case int32:
		d := decimal.NewFromInt(int64(val))
		return &d, nil
	case int64:
		d := decimal.NewFromInt(val)
		return &d, nil
	default:
		return nil, &ConversionError{Value: fmt.Sprintf("%v", v), Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

// ToStorageForm converts a decimal-like input to its fixed-point storage
// form, rounded half-up to 6 fractional digits. nil passes through as nil.
func ToStorageForm(v any) (*StorageDecimal, error) {
	d, err := coerce(v)
	if err != nil || d == nil {
		return nil, err
	}
	return &StorageDecimal{value: d.Round(StoragePlaces)}, nil
}

// ToArbitraryPrecision converts a storage-form value (or any decimal-like
// input) back to an arbitrary-precision decimal. nil passes through as nil.
func ToArbitraryPrecision(v any) (*decimal.Decimal, error) {
	return coerce(v)
}

// ToDisplayString renders a decimal-like input as a canonical decimal
// string: no exponent notation, sign preserved, trailing fractional zeros
// trimmed. Storage-form inputs keep their fixed 6 digits.
func ToDisplayString(v any) (string, error) {
	switch val := v.(type) {
	case StorageDecimal:
		return val.String(), nil
	case *StorageDecimal:
		if val == nil {
			return "", nil
		}
		return val.String(), nil
	}
	d, err := coerce(v)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", nil
	}
	return d.String(), nil
}
