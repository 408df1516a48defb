// Package schema is a small runtime validation library for JSON payloads.
//
// Schemas are immutable values built from combinators. Parsing coerces the input
// (where the schema asks for it), checks its structure, runs refinements in the
// order they were declared and returns a typed value. The first failing check
// stops the parse; unions are the only place where several failures are
// reported together.
package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Issue codes.
const (
	CodeInvalidType      = "invalid_type"
	CodeInvalidDate      = "invalid_date"
	CodeInvalidString    = "invalid_string"
	CodeInvalidEnum      = "invalid_enum_value"
	CodeInvalidLiteral   = "invalid_literal"
	CodeInvalidUnion     = "invalid_union"
	CodeUnrecognizedKeys = "unrecognized_keys"
	CodeTooSmall         = "too_small"
	CodeTooBig           = "too_big"
	CodeNotInteger       = "not_integer"
	CodeCustom           = "custom"
)

// Issue describes one failed check.
type Issue struct {
	Code     string   `json:"code"`
	Path     []string `json:"path,omitempty"`
	Message  string   `json:"message"`
	Received string   `json:"received,omitempty"`
}

func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// Error is returned by Parse when the input does not satisfy the schema.
type Error struct {
	Issues []Issue `json:"issues"`
}

func (e *Error) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Result is the outcome of SafeParse.
type Result[T any] struct {
	Success bool
	Data    T
	Error   *Error
}

// Schema validates an untyped input and produces a T.
type Schema[T any] interface {
	Parse(input any) (T, error)
	SafeParse(input any) Result[T]
	run(input any, path []string) (T, *Error)
}

type undefined struct{}

// Undefined marks an absent value. Objects pass it to a field schema when the
// key is missing from the input, which is what Optional and Default react to.
var Undefined any = undefined{}

func isUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

type check[T any] struct {
	code    string
	message string
	ok      func(T) bool
}

// Type is the generic schema implementation. Specialised schemas such as
// NumberSchema embed it to add their own chainable checks.
type Type[T any] struct {
	decode func(input any, path []string) (T, *Error)
	checks []check[T]
	def    *T
}

func newType[T any](decode func(any, []string) (T, *Error)) *Type[T] {
	return &Type[T]{decode: decode}
}

func (t *Type[T]) clone() *Type[T] {
	next := *t
	next.checks = slices.Clone(t.checks)
	return &next
}

func (t *Type[T]) with(c check[T]) *Type[T] {
	next := t.clone()
	next.checks = append(next.checks, c)
	return next
}

func (t *Type[T]) preprocess(fn func(T) T) *Type[T] {
	next := t.clone()
	decode := t.decode
	next.decode = func(input any, path []string) (T, *Error) {
		v, err := decode(input, path)
		if err != nil {
			return v, err
		}
		return fn(v), nil
	}
	return next
}

func (t *Type[T]) run(input any, path []string) (T, *Error) {
	if t.def != nil && isUndefined(input) {
		return *t.def, nil
	}
	v, err := t.decode(input, path)
	if err != nil {
		var zero T
		return zero, err
	}
	for _, c := range t.checks {
		if !c.ok(v) {
			var zero T
			return zero, fail(c.code, path, c.message, input)
		}
	}
	return v, nil
}

// Parse validates input and returns the typed value or a *Error.
func (t *Type[T]) Parse(input any) (T, error) {
	return parse[T](t, input)
}

// SafeParse validates input without returning an error value.
func (t *Type[T]) SafeParse(input any) Result[T] {
	return safeParse[T](t, input)
}

// Refine adds a custom predicate that runs after all earlier checks.
func (t *Type[T]) Refine(ok func(T) bool, message string) *Type[T] {
	return t.with(check[T]{code: CodeCustom, message: message, ok: ok})
}

// Default returns a schema that yields v when the input is absent.
func (t *Type[T]) Default(v T) *Type[T] {
	next := t.clone()
	next.def = &v
	return next
}

func parse[T any](s Schema[T], input any) (T, error) {
	v, err := s.run(input, nil)
	if err != nil {
		return v, err
	}
	return v, nil
}

func safeParse[T any](s Schema[T], input any) Result[T] {
	v, err := s.run(input, nil)
	if err != nil {
		return Result[T]{Error: err}
	}
	return Result[T]{Success: true, Data: v}
}

func fail(code string, path []string, message string, input any) *Error {
	return &Error{Issues: []Issue{{
		Code:     code,
		Path:     slices.Clone(path),
		Message:  message,
		Received: describe(input),
	}}}
}

func typeError(expected string, path []string, input any) *Error {
	return fail(CodeInvalidType, path, fmt.Sprintf("expected %s, received %s", expected, describe(input)), input)
}

func childPath(path []string, key string) []string {
	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	return append(next, key)
}

// describe names the kind of value that was received, using JSON vocabulary.
func describe(v any) string {
	switch v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return "number"
	case time.Time:
		return "date"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
