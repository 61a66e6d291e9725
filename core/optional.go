package core

import (
	"bytes"
	"encoding/json"
)

// Optional marks a field that may be absent on the wire. An absent value is
// never replaced by a default; use the json "omitzero" option so that absent
// optionals stay absent when encoded.
type Optional[T any] struct {
	Value   T
	Present bool
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Present: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

func (o Optional[T]) OrElse(fallback T) T {
	if o.Present {
		return o.Value
	}
	return fallback
}

// IsZero reports absence, which drives omitzero.
func (o Optional[T]) IsZero() bool {
	return !o.Present
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*o = Optional[T]{Value: value, Present: true}
	return nil
}
