package schema

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
)

// Optional accepts a missing value and yields nil for it.
func Optional[T any](s Schema[T]) *Type[*T] {
	return newType(func(input any, path []string) (*T, *Error) {
		if isUndefined(input) {
			return nil, nil
		}
		return pointerTo(s, input, path)
	})
}

// Nullable accepts null and yields nil for it.
func Nullable[T any](s Schema[T]) *Type[*T] {
	return newType(func(input any, path []string) (*T, *Error) {
		if input == nil {
			return nil, nil
		}
		return pointerTo(s, input, path)
	})
}

// Nullish accepts both a missing value and null.
func Nullish[T any](s Schema[T]) *Type[*T] {
	return newType(func(input any, path []string) (*T, *Error) {
		if input == nil || isUndefined(input) {
			return nil, nil
		}
		return pointerTo(s, input, path)
	})
}

func pointerTo[T any](s Schema[T], input any, path []string) (*T, *Error) {
	v, err := s.run(input, path)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Transform maps the output of s. An error returned by fn becomes a custom issue.
func Transform[T, U any](s Schema[T], fn func(T) (U, error)) *Type[U] {
	return newType(func(input any, path []string) (U, *Error) {
		var zero U
		v, err := s.run(input, path)
		if err != nil {
			return zero, err
		}
		out, ferr := fn(v)
		if ferr != nil {
			return zero, fail(CodeCustom, path, ferr.Error(), input)
		}
		return out, nil
	})
}

// Union tries each option in order and returns the first success. When every
// option fails the error starts with an invalid_union issue followed by the
// issues of each branch.
func Union[T any](options ...Schema[T]) *Type[T] {
	return newType(func(input any, path []string) (T, *Error) {
		var zero T
		var branches []Issue
		for _, option := range options {
			v, err := option.run(input, path)
			if err == nil {
				return v, nil
			}
			branches = append(branches, err.Issues...)
		}
		head := fail(CodeInvalidUnion, path, fmt.Sprintf("input matched none of %d union options", len(options)), input)
		head.Issues = append(head.Issues, branches...)
		return zero, head
	})
}

// ArraySchema validates JSON arrays.
type ArraySchema[T any] struct {
	*Type[[]T]
}

// Array validates each element with item. Elements are checked in order and
// the first failing element stops the parse.
func Array[T any](item Schema[T]) *ArraySchema[T] {
	return &ArraySchema[T]{newType(func(input any, path []string) ([]T, *Error) {
		raw, ok := input.([]any)
		if !ok {
			return nil, typeError("array", path, input)
		}
		out := make([]T, 0, len(raw))
		for i, elem := range raw {
			v, err := item.run(elem, childPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	})}
}

func (s *ArraySchema[T]) Min(n int, message ...string) *ArraySchema[T] {
	msg := pick(message, fmt.Sprintf("array must contain at least %d element(s)", n))
	return &ArraySchema[T]{s.with(check[[]T]{code: CodeTooSmall, message: msg, ok: func(v []T) bool { return len(v) >= n }})}
}

func (s *ArraySchema[T]) Max(n int, message ...string) *ArraySchema[T] {
	msg := pick(message, fmt.Sprintf("array must contain at most %d element(s)", n))
	return &ArraySchema[T]{s.with(check[[]T]{code: CodeTooBig, message: msg, ok: func(v []T) bool { return len(v) <= n }})}
}

func (s *ArraySchema[T]) Nonempty(message ...string) *ArraySchema[T] {
	return s.Min(1, pick(message, "array must not be empty"))
}

// Record validates a JSON object with arbitrary keys. Keys are visited in
// sorted order so the reported failure is deterministic.
func Record[V any](value Schema[V]) *Type[map[string]V] {
	return newType(func(input any, path []string) (map[string]V, *Error) {
		raw, ok := input.(map[string]any)
		if !ok {
			return nil, typeError("object", path, input)
		}
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]V, len(raw))
		for _, k := range keys {
			v, err := value.run(raw[k], childPath(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	})
}

// Issues flattens the issues of err when it is a validation error.
func Issues(err error) []Issue {
	var verr *Error
	if asError(err, &verr) {
		return slices.Clone(verr.Issues)
	}
	return nil
}
