// Package optional provides a JSON field wrapper that distinguishes a field
// that was absent from the request from one that was explicitly set to null.
// Partial-update handlers need the distinction: omitting a nullable field
// keeps the stored value, sending null clears it.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field wraps a value of type T decoded from a JSON request body.
// The zero Field reports Set() == false, meaning the key was not present.
type Field[T any] struct {
	value   T
	present bool
	null    bool
}

// Of returns a Field carrying the given value.
func Of[T any](v T) Field[T] {
	return Field[T]{value: v, present: true}
}

// Null returns a Field that was explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// UnmarshalJSON records that the key was present and whether it was null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if bytes.Equal(data, []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	return json.Unmarshal(data, &f.value)
}

// Set reports whether the key appeared in the request at all.
func (f Field[T]) Set() bool { return f.present }

// IsNull reports whether the key was present and explicitly null.
func (f Field[T]) IsNull() bool { return f.present && f.null }

// Value returns the decoded value. Only meaningful when Set() && !IsNull().
func (f Field[T]) Value() T { return f.value }

// Ptr returns nil when the field was null, otherwise a pointer to the value.
// It must not be called on an absent field.
func (f Field[T]) Ptr() *T {
	if f.null {
		return nil
	}
	v := f.value
	return &v
}
