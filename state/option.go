package state

import (
	"bytes"
	"encoding/json"
)

// Option is a value that may be absent. The zero Option is absent.
type Option[T any] struct {
	value T
	valid bool
}

// Some returns a present Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, valid: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.valid
}

func (o Option[T]) IsSome() bool { return o.valid }

// IsZero reports absence; it lets `omitzero` drop absent fields when encoding.
func (o Option[T]) IsZero() bool { return !o.valid }

// Or returns o if present, otherwise other.
func (o Option[T]) Or(other Option[T]) Option[T] {
	if o.valid {
		return o
	}
	return other
}

// OrElse returns the held value, or def when absent.
func (o Option[T]) OrElse(def T) T {
	if o.valid {
		return o.value
	}
	return def
}

func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON treats an explicit null the same as a missing field.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Option[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
