// Package optional models JSON fields that may be absent, explicitly null or
// carry a value. Partial updates need all three states.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a possibly-absent, possibly-null JSON field. The zero value is
// absent.
type Value[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of returns a present, non-null Value.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Value: v}
}

// Null returns a present, explicitly null Value.
func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

// Present reports whether the field carries a non-null value.
func (o Value[T]) Present() bool {
	return o.Set && !o.Null
}

// Ptr returns a pointer to the value, or nil when absent or null.
func (o Value[T]) Ptr() *T {
	if !o.Present() {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what marks the field as set.
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes null for absent or null values; pair it with omitzero to
// drop absent fields.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero reports absence, for the omitzero struct tag option.
func (o Value[T]) IsZero() bool {
	return !o.Set
}
