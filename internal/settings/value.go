package settings

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ValueType is the primitive type of a setting value.
type ValueType string

const (
	// TypeString is a UTF-8 string value.
	TypeString ValueType = "string"
	// TypeNumber is a float64 value.
	TypeNumber ValueType = "number"
	// TypeBoolean is a true/false value.
	TypeBoolean ValueType = "boolean"
)

var (
	// ErrNullValue is returned when a null is decoded into a Value.
	ErrNullValue = errors.New("setting value can not be null")
	// ErrUnsupportedValue is returned for anything that is not a string, number or boolean.
	ErrUnsupportedValue = errors.New("unsupported setting value")
)

// Valid reports whether t is one of the declared value types.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean:
		return true
	default:
		return false
	}
}

// Value is a closed union of the primitive setting types.
// The zero Value holds nothing and is never written to the store.
type Value struct {
	kind    ValueType
	str     string
	num     float64
	boolean bool
}

// Str returns a string Value.
func Str(s string) Value {
	return Value{kind: TypeString, str: s}
}

// Num returns a number Value.
func Num(n float64) Value {
	return Value{kind: TypeNumber, num: n}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: TypeBoolean, boolean: b}
}

// Type returns the primitive type held, or "" for the zero Value.
func (v Value) Type() ValueType {
	return v.kind
}

// IsZero reports whether v holds no value.
func (v Value) IsZero() bool {
	return v.kind == ""
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == TypeString
}

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == TypeNumber
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == TypeBoolean
}

// Equal reports whether both values have the same type and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

// Interface returns the held value as string, float64, bool or nil.
func (v Value) Interface() any {
	switch v.kind {
	case TypeString:
		return v.str
	case TypeNumber:
		return v.num
	case TypeBoolean:
		return v.boolean
	default:
		return nil
	}
}

// String renders the value for humans.
func (v Value) String() string {
	switch v.kind {
	case TypeString:
		return v.str
	case TypeNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.boolean)
	default:
		return "<nil>"
	}
}

// FromAny converts a decoded JSON or YAML primitive into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, ErrNullValue
	case Value:
		return t, nil
	case string:
		return Str(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return numberValue(t)
	case float32:
		return numberValue(float64(t))
	case int:
		return Num(float64(t)), nil
	case int32:
		return Num(float64(t)), nil
	case int64:
		return Num(float64(t)), nil
	case uint:
		return Num(float64(t)), nil
	case uint64:
		return Num(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedValue, t)
		}

		return numberValue(f)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
	}
}

func numberValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}

	return Num(f), nil
}

// MarshalJSON encodes the bare JSON primitive.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON string, number or boolean.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err //nolint:wrapcheck
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after value", ErrUnsupportedValue)
	}

	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}

	*v = decoded

	return nil
}

// MarshalYAML encodes the bare YAML scalar.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// Scan implements sql.Scanner. Values are stored as JSON text; rows written
// by other programs may hold bare text instead, which is read as a string.
func (v *Value) Scan(src any) error {
	switch t := src.(type) {
	case []byte:
		return v.scanText(string(t))
	case string:
		return v.scanText(t)
	case nil:
		return ErrNullValue
	default:
		return fmt.Errorf("%w: can not scan %T", ErrUnsupportedValue, src)
	}
}

func (v *Value) scanText(text string) error {
	if err := v.UnmarshalJSON([]byte(text)); err != nil {
		*v = Str(text)
	}

	return nil
}

// Value implements driver.Valuer.
func (v Value) Value() (driver.Value, error) {
	if v.IsZero() {
		return nil, ErrNullValue
	}

	out, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}

	return string(out), nil
}
