package validator

import (
	"reflect"
	"strings"
	"time"

	"github.com/dmitrymomot/entityvalidate/pkg/sanitizer"
)

// dateLayouts are tried in order by morphDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var cleanText = sanitizer.Compose(sanitizer.StripControl, sanitizer.NormalizeWhitespace)

// morphText collapses whitespace in strings.
func morphText(_ *Field, value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return cleanText(s)
}

// morphList wraps scalars into a one-element list and drops blank strings from lists.
// Lists keep their element type.
func morphList(_ *Field, value any) any {
	if value == nil {
		return value
	}
	if s, ok := value.([]string); ok {
		return sanitizer.FilterEmpty(s)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return filterList(value, rv, func(item, _ reflect.Value) bool {
			s, ok := item.Interface().(string)
			return !ok || strings.TrimSpace(s) != ""
		})
	case reflect.String:
		if strings.TrimSpace(rv.String()) == "" {
			return []any{}
		}
	}
	return []any{value}
}

// morphUnique removes repeated list entries, keeping the first occurrence.
func morphUnique(_ *Field, value any) any {
	if s, ok := value.([]string); ok {
		return sanitizer.Deduplicate(s)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return value
	}
	return filterList(value, rv, func(item, kept reflect.Value) bool {
		for i := range kept.Len() {
			if reflect.DeepEqual(kept.Index(i).Interface(), item.Interface()) {
				return false
			}
		}
		return true
	})
}

// filterList keeps the items of a slice or array accepted by keep, which also
// sees the items kept so far. The result is a slice of the same element type;
// value itself is returned when every item is kept.
func filterList(value any, rv reflect.Value, keep func(item, kept reflect.Value) bool) any {
	out := reflect.MakeSlice(reflect.SliceOf(rv.Type().Elem()), 0, rv.Len())
	if rv.Kind() == reflect.Slice {
		out = reflect.MakeSlice(rv.Type(), 0, rv.Len())
	}
	for i := range rv.Len() {
		if item := rv.Index(i); keep(item, out) {
			out = reflect.Append(out, item)
		}
	}
	if out.Len() == rv.Len() {
		return value
	}
	return out.Interface()
}

// morphDate turns date strings and time.Time values into unix timestamps.
// Unparsable strings are returned unchanged for the validators to report.
func morphDate(_ *Field, value any) any {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return value
		}
		return v.Unix()
	case *time.Time:
		if v == nil || v.IsZero() {
			return value
		}
		return v.Unix()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return value
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Unix()
			}
		}
	}
	return value
}
