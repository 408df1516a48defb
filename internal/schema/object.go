package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Field binds one object key to a schema and a setter on the output struct.
type Field[T any] struct {
	key string
	set func(dst *T, input any, path []string) *Error
}

// Key returns the JSON key the field reads.
func (f Field[T]) Key() string { return f.key }

// Prop declares a field: the value under key is parsed with s and stored via set.
func Prop[T, V any](key string, s Schema[V], set func(*T, V)) Field[T] {
	return Field[T]{
		key: key,
		set: func(dst *T, input any, path []string) *Error {
			v, err := s.run(input, path)
			if err != nil {
				return err
			}
			set(dst, v)
			return nil
		},
	}
}

// ObjectSchema validates JSON objects into a T, field by field in declaration order.
type ObjectSchema[T any] struct {
	*Type[T]
	fields  []Field[T]
	strict  bool
	partial bool
}

// Object builds an object schema. Unknown keys are ignored unless Strict is used.
func Object[T any](fields ...Field[T]) *ObjectSchema[T] {
	return newObject(fields, false, false)
}

func newObject[T any](fields []Field[T], strict, partial bool) *ObjectSchema[T] {
	o := &ObjectSchema[T]{fields: fields, strict: strict, partial: partial}
	o.Type = newType(o.decodeObject)
	return o
}

// Extend adds fields. A field whose key already exists replaces the old one in place.
func (o *ObjectSchema[T]) Extend(fields ...Field[T]) *ObjectSchema[T] {
	merged := make([]Field[T], len(o.fields), len(o.fields)+len(fields))
	copy(merged, o.fields)
	for _, f := range fields {
		replaced := false
		for i := range merged {
			if merged[i].key == f.key {
				merged[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, f)
		}
	}
	return newObject(merged, o.strict, o.partial)
}

// Partial makes every field optional: missing keys leave the zero value.
func (o *ObjectSchema[T]) Partial() *ObjectSchema[T] {
	return newObject(o.fields, o.strict, true)
}

// Strict rejects keys that no field declares.
func (o *ObjectSchema[T]) Strict() *ObjectSchema[T] {
	return newObject(o.fields, true, o.partial)
}

// Keys lists the declared keys in order.
func (o *ObjectSchema[T]) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.key
	}
	return keys
}

func (o *ObjectSchema[T]) decodeObject(input any, path []string) (T, *Error) {
	var out T
	raw, ok := input.(map[string]any)
	if !ok {
		return out, typeError("object", path, input)
	}
	for _, f := range o.fields {
		value, present := raw[f.key]
		if !present {
			if o.partial {
				continue
			}
			value = Undefined
		}
		if err := f.set(&out, value, childPath(path, f.key)); err != nil {
			var zero T
			return zero, err
		}
	}
	if o.strict {
		if unknown := o.unknownKeys(raw); len(unknown) > 0 {
			var zero T
			msg := fmt.Sprintf("unrecognized key(s) in object: '%s'", strings.Join(unknown, "', '"))
			return zero, fail(CodeUnrecognizedKeys, path, msg, input)
		}
	}
	return out, nil
}

func (o *ObjectSchema[T]) unknownKeys(raw map[string]any) []string {
	known := make(map[string]struct{}, len(o.fields))
	for _, f := range o.fields {
		known[f.key] = struct{}{}
	}
	var unknown []string
	for k := range raw {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Normalize turns Go values into the JSON shapes schemas understand. Maps,
// slices and scalars already in JSON form are walked as-is; anything else
// (structs, typed maps) is round-tripped through encoding/json with numbers
// kept as json.Number.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, undefined, string, bool, float64, json.Number, time.Time,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			n, err := Normalize(elem)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			n, err := Normalize(elem)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case json.RawMessage:
		return decodeJSON(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize %T: %w", v, err)
	}
	return decodeJSON(data)
}

// ParseValue normalizes a Go value and parses it with s.
func ParseValue[T any](s Schema[T], v any) (T, error) {
	normalized, err := Normalize(v)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Parse(normalized)
}

// DecodeJSON decodes data into the generic JSON form used by Parse.
func DecodeJSON(data []byte) (any, error) {
	return decodeJSON(data)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return out, nil
}

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}
