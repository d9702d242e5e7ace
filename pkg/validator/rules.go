package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Messages recorded by the built-in rules.
const (
	MsgCannotBeEmpty  = "The field %{field} cannot be empty."
	MsgInvalidValue   = "The value %{value} is invalid for the field %{field}."
	MsgNotText        = "The field %{field} must be text."
	MsgNotNumeric     = "The value %{value} of the field %{field} is not numeric."
	MsgNotList        = "The field %{field} must be a list."
	MsgNotYear        = "The value %{value} of the field %{field} is not a valid year."
	MsgNotUnixTime    = "The value %{value} of the field %{field} is not a valid unix timestamp."
	MsgNotImage       = "The field %{field} does not hold an image."
	MsgImageMaxWidth  = "The width of the image(%{width}) is bigger then the allowed size(%{max-width})"
	MsgImageMaxHeight = "The width of the image(%{height}) is bigger then the allowed size(%{max-height})"
	MsgImageMinWidth  = "The width of the image(%{width}) is bigger then the allowed size(%{min-width})"
	MsgImageMinHeight = "The width of the image(%{height}) is bigger then the allowed size(%{min-height})"
)

// zeroer is implemented by values such as time.Time that know their zero state.
type zeroer interface {
	IsZero() bool
}

// IsEmpty reports whether value counts as empty: nil, false, zero numbers,
// "" and "0", empty slices, maps and arrays, nil pointers and interfaces, and
// values whose IsZero method returns true.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	if z, ok := value.(zeroer); ok {
		return z.IsZero()
	}

	switch v := value.(type) {
	case string:
		return v == "" || v == "0"
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case bool:
		return !v
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.String:
		return rv.Len() == 0 || rv.String() == "0"
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func isNotEmpty(f *Field, value any) {
	if IsEmpty(value) {
		f.SetError(MsgCannotBeEmpty, nil)
	}
}

// isValidValue is not registered by name: it needs the field's type descriptor.
func isValidValue(f *Field, value any, t TypeDescriptor, checker TypeChecker) {
	if !checker.Verify(value, t) {
		f.SetError(MsgInvalidValue, map[string]string{"value": Stringify(value)})
	}
}

// Stringify renders a value for use in a message parameter.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	}
	return fmt.Sprint(value)
}

func isText(f *Field, value any) {
	if IsEmpty(value) {
		return
	}
	if _, ok := value.(string); ok {
		return
	}
	if reflect.ValueOf(value).Kind() == reflect.String {
		return
	}
	f.SetError(MsgNotText, nil)
}

func isNumeric(f *Field, value any) {
	if IsEmpty(value) {
		return
	}
	if _, ok := toFloat(value); !ok {
		f.SetError(MsgNotNumeric, map[string]string{"value": Stringify(value)})
	}
}

func isList(f *Field, value any) {
	if value == nil {
		return
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return
	}
	f.SetError(MsgNotList, nil)
}

func isYear(f *Field, value any) {
	if IsEmpty(value) {
		return
	}
	n, ok := toInt(value)
	if !ok || n < 1000 || n > 9999 {
		f.SetError(MsgNotYear, map[string]string{"value": Stringify(value)})
	}
}

func isUnixTimeStamp(f *Field, value any) {
	if IsEmpty(value) {
		return
	}
	n, ok := toInt(value)
	if !ok || n < 0 {
		f.SetError(MsgNotUnixTime, map[string]string{"value": Stringify(value)})
	}
}

// toFloat converts numbers and numeric strings.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// toInt converts integral numbers and integer strings.
func toInt(value any) (int64, bool) {
	if s, ok := value.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	f, ok := toFloat(value)
	if !ok || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
