package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// StringSchema validates strings.
type StringSchema struct {
	*Type[string]
}

// String accepts string inputs only.
func String() *StringSchema {
	return &StringSchema{newType(func(input any, path []string) (string, *Error) {
		s, ok := input.(string)
		if !ok {
			return "", typeError("string", path, input)
		}
		return s, nil
	})}
}

func (s *StringSchema) Min(n int, message ...string) *StringSchema {
	msg := pick(message, fmt.Sprintf("must contain at least %d character(s)", n))
	return &StringSchema{s.with(check[string]{code: CodeTooSmall, message: msg, ok: func(v string) bool {
		return utf8.RuneCountInString(v) >= n
	}})}
}

func (s *StringSchema) Max(n int, message ...string) *StringSchema {
	msg := pick(message, fmt.Sprintf("must contain at most %d character(s)", n))
	return &StringSchema{s.with(check[string]{code: CodeTooBig, message: msg, ok: func(v string) bool {
		return utf8.RuneCountInString(v) <= n
	}})}
}

func (s *StringSchema) Length(n int, message ...string) *StringSchema {
	msg := pick(message, fmt.Sprintf("must contain exactly %d character(s)", n))
	return &StringSchema{s.with(check[string]{code: CodeInvalidString, message: msg, ok: func(v string) bool {
		return utf8.RuneCountInString(v) == n
	}})}
}

func (s *StringSchema) Nonempty(message ...string) *StringSchema {
	return s.Min(1, pick(message, "must not be empty"))
}

func (s *StringSchema) Regex(re *regexp.Regexp, message ...string) *StringSchema {
	msg := pick(message, "invalid format")
	return &StringSchema{s.with(check[string]{code: CodeInvalidString, message: msg, ok: re.MatchString})}
}

// Trim strips surrounding whitespace before any check runs.
func (s *StringSchema) Trim() *StringSchema {
	return &StringSchema{s.preprocess(strings.TrimSpace)}
}

func (s *StringSchema) ToUpper() *StringSchema {
	return &StringSchema{s.preprocess(strings.ToUpper)}
}

// NumberSchema validates finite numbers. Checks run after coercion.
type NumberSchema struct {
	*Type[float64]
}

// Number accepts JSON numbers and Go numeric values.
func Number() *NumberSchema {
	return &NumberSchema{newType(decodeNumber(false))}
}

// CoerceNumber additionally accepts base-10 numeric strings such as "1250.5".
func CoerceNumber() *NumberSchema {
	return &NumberSchema{newType(decodeNumber(true))}
}

func (s *NumberSchema) Gt(n float64, message ...string) *NumberSchema {
	msg := pick(message, fmt.Sprintf("must be greater than %s", formatNumber(n)))
	return &NumberSchema{s.with(check[float64]{code: CodeTooSmall, message: msg, ok: func(v float64) bool { return v > n }})}
}

func (s *NumberSchema) Min(n float64, message ...string) *NumberSchema {
	msg := pick(message, fmt.Sprintf("must be greater than or equal to %s", formatNumber(n)))
	return &NumberSchema{s.with(check[float64]{code: CodeTooSmall, message: msg, ok: func(v float64) bool { return v >= n }})}
}

func (s *NumberSchema) Lt(n float64, message ...string) *NumberSchema {
	msg := pick(message, fmt.Sprintf("must be less than %s", formatNumber(n)))
	return &NumberSchema{s.with(check[float64]{code: CodeTooBig, message: msg, ok: func(v float64) bool { return v < n }})}
}

func (s *NumberSchema) Max(n float64, message ...string) *NumberSchema {
	msg := pick(message, fmt.Sprintf("must be less than or equal to %s", formatNumber(n)))
	return &NumberSchema{s.with(check[float64]{code: CodeTooBig, message: msg, ok: func(v float64) bool { return v <= n }})}
}

func (s *NumberSchema) Int(message ...string) *NumberSchema {
	msg := pick(message, "expected integer, received float")
	return &NumberSchema{s.with(check[float64]{code: CodeNotInteger, message: msg, ok: func(v float64) bool { return v == math.Trunc(v) }})}
}

func (s *NumberSchema) Positive(message ...string) *NumberSchema {
	return s.Gt(0, pick(message, "must be positive"))
}

func (s *NumberSchema) Nonnegative(message ...string) *NumberSchema {
	return s.Min(0, pick(message, "must be nonnegative"))
}

var base10Number = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func decodeNumber(coerce bool) func(any, []string) (float64, *Error) {
	return func(input any, path []string) (float64, *Error) {
		var n float64
		switch v := input.(type) {
		case float64:
			n = v
		case float32:
			n = float64(v)
		case int:
			n = float64(v)
		case int8:
			n = float64(v)
		case int16:
			n = float64(v)
		case int32:
			n = float64(v)
		case int64:
			n = float64(v)
		case uint:
			n = float64(v)
		case uint8:
			n = float64(v)
		case uint16:
			n = float64(v)
		case uint32:
			n = float64(v)
		case uint64:
			n = float64(v)
		case json.Number:
			f, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return 0, typeError("number", path, input)
			}
			n = f
		case string:
			if !coerce {
				return 0, typeError("number", path, input)
			}
			trimmed := strings.TrimSpace(v)
			if !base10Number.MatchString(trimmed) {
				return 0, fail(CodeInvalidType, path, fmt.Sprintf("expected number, received %q", v), input)
			}
			f, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return 0, fail(CodeInvalidType, path, fmt.Sprintf("expected number, received %q", v), input)
			}
			n = f
		default:
			return 0, typeError("number", path, input)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fail(CodeInvalidType, path, "expected finite number", input)
		}
		return n, nil
	}
}

// maxSafeInt bounds AsInt to integers a float64 holds exactly.
const maxSafeInt = 1 << 53

// AsInt narrows a number schema to int. Pair it with Int() so fractional
// inputs are rejected instead of truncated. Values beyond ±2^53 fail with
// too_big / too_small rather than wrapping on conversion.
func AsInt(s Schema[float64]) *Type[int] {
	return newType(func(input any, path []string) (int, *Error) {
		v, err := s.run(input, path)
		if err != nil {
			return 0, err
		}
		switch {
		case v > maxSafeInt:
			return 0, fail(CodeTooBig, path, fmt.Sprintf("Number must be less than or equal to %d", int64(maxSafeInt)), input)
		case v < -maxSafeInt:
			return 0, fail(CodeTooSmall, path, fmt.Sprintf("Number must be greater than or equal to %d", int64(-maxSafeInt)), input)
		case v != math.Trunc(v):
			return 0, fail(CodeNotInteger, path, "Expected integer, received float", input)
		}
		return int(v), nil
	})
}

// Boolean accepts JSON booleans.
func Boolean() *Type[bool] {
	return newType(func(input any, path []string) (bool, *Error) {
		b, ok := input.(bool)
		if !ok {
			return false, typeError("boolean", path, input)
		}
		return b, nil
	})
}

// DateSchema validates time.Time values.
type DateSchema struct {
	*Type[time.Time]
}

// Date accepts time.Time values only.
func Date() *DateSchema {
	return &DateSchema{newType(decodeDate(false))}
}

// CoerceDate also accepts ISO dates (2025-05-01) and RFC 3339 date-times.
// Strings without a zone are read as UTC.
func CoerceDate() *DateSchema {
	return &DateSchema{newType(decodeDate(true))}
}

func (s *DateSchema) Min(t time.Time, message ...string) *DateSchema {
	msg := pick(message, "date must not be before "+t.Format(time.RFC3339))
	return &DateSchema{s.with(check[time.Time]{code: CodeTooSmall, message: msg, ok: func(v time.Time) bool { return !v.Before(t) }})}
}

func (s *DateSchema) Max(t time.Time, message ...string) *DateSchema {
	msg := pick(message, "date must not be after "+t.Format(time.RFC3339))
	return &DateSchema{s.with(check[time.Time]{code: CodeTooBig, message: msg, ok: func(v time.Time) bool { return !v.After(t) }})}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseISODate parses the date and date-time forms accepted by CoerceDate.
func ParseISODate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func decodeDate(coerce bool) func(any, []string) (time.Time, *Error) {
	return func(input any, path []string) (time.Time, *Error) {
		switch v := input.(type) {
		case time.Time:
			if v.IsZero() {
				return time.Time{}, fail(CodeInvalidDate, path, "invalid date", input)
			}
			return v, nil
		case string:
			if !coerce {
				return time.Time{}, typeError("date", path, input)
			}
			t, err := ParseISODate(v)
			if err != nil {
				return time.Time{}, fail(CodeInvalidDate, path, fmt.Sprintf("expected date, received %q", v), input)
			}
			return t, nil
		default:
			return time.Time{}, typeError("date", path, input)
		}
	}
}

// Any accepts every defined input unchanged.
func Any() *Type[any] {
	return newType(func(input any, path []string) (any, *Error) {
		if isUndefined(input) {
			return nil, typeError("value", path, input)
		}
		return input, nil
	})
}

// Enum accepts one of the given string values.
func Enum[T ~string](values ...T) *Type[T] {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + string(v) + "'"
	}
	expected := strings.Join(quoted, " | ")
	return newType(func(input any, path []string) (T, *Error) {
		s, ok := input.(string)
		if !ok {
			if v, typed := input.(T); typed {
				s = string(v)
			} else {
				return "", typeError("string", path, input)
			}
		}
		for _, v := range values {
			if string(v) == s {
				return v, nil
			}
		}
		return "", fail(CodeInvalidEnum, path, fmt.Sprintf("invalid enum value. Expected %s, received '%s'", expected, s), input)
	})
}

// Literal accepts exactly v. Numeric literals also match any numeric input of
// equal value, so Literal(2) accepts float64(2) and json.Number("2").
func Literal[T comparable](v T) *Type[T] {
	return newType(func(input any, path []string) (T, *Error) {
		if got, ok := input.(T); ok && got == v {
			return got, nil
		}
		if want, err := decodeNumber(false)(v, nil); err == nil {
			if got, err := decodeNumber(false)(input, nil); err == nil && got == want {
				return v, nil
			}
		}
		var zero T
		return zero, fail(CodeInvalidLiteral, path, fmt.Sprintf("invalid literal value, expected %v", v), input)
	})
}

func pick(message []string, fallback string) string {
	if len(message) > 0 && message[0] != "" {
		return message[0]
	}
	return fallback
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
