package property

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Accessor is implemented by records that expose their own properties.
type Accessor interface {
	GetProperty(name string) (any, error)
	SetProperty(name string, value any) error
}

// Facade reads and writes record properties.
// It is safe for concurrent use.
type Facade struct {
	tag    string
	fields sync.Map // reflect.Type -> map[string][]int
}

// Option configures a Facade.
type Option func(*Facade)

// WithTag sets the struct tag consulted first. Defaults to "field".
func WithTag(tag string) Option {
	return func(f *Facade) {
		if tag != "" {
			f.tag = tag
		}
	}
}

// New creates a Facade.
func New(opts ...Option) *Facade {
	f := &Facade{tag: "field"}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the value of property on record.
func (f *Facade) Get(record any, property string) (any, error) {
	switch r := record.(type) {
	case Accessor:
		return r.GetProperty(property)
	case map[string]any:
		return r[property], nil
	case *Bag:
		if r == nil {
			return nil, fmt.Errorf("%w: nil bag", ErrUnsupportedRecord)
		}
		v, _ := r.Value(property)
		return v, nil
	}

	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %T", ErrUnsupportedRecord, record)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedRecord, record)
	}

	fv, err := f.field(rv, property)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

// Set writes value to property on record.
func (f *Facade) Set(record any, property string, value any) error {
	switch r := record.(type) {
	case Accessor:
		return r.SetProperty(property, value)
	case map[string]any:
		if r == nil {
			return fmt.Errorf("%w: nil map", ErrNotAddressable)
		}
		r[property] = value
		return nil
	case *Bag:
		if r == nil {
			return fmt.Errorf("%w: nil bag", ErrNotAddressable)
		}
		r.AddField(property, value)
		return nil
	}

	rv := reflect.ValueOf(record)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: %T", ErrNotAddressable, record)
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("%w: nil %T", ErrNotAddressable, record)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T", ErrUnsupportedRecord, record)
	}

	fv, err := f.field(rv, property)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return fmt.Errorf("%w: %s", ErrNotAddressable, property)
	}
	return assign(fv, property, value)
}

func assign(fv reflect.Value, property string, value any) error {
	if value == nil {
		fv.SetZero()
		return nil
	}

	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(fv.Type()):
		fv.Set(v)
	case convertible(v.Type(), fv.Type()):
		fv.Set(v.Convert(fv.Type()))
	default:
		return fmt.Errorf("%w: %s is %s, got %T", ErrTypeMismatch, property, fv.Type(), value)
	}
	return nil
}

// convertible allows numeric and string conversions, but not number to string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}
	return true
}

func (f *Facade) field(rv reflect.Value, property string) (reflect.Value, error) {
	index, ok := f.index(rv.Type())[property]
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s on %s", ErrUnknownProperty, property, rv.Type())
	}
	fv, err := rv.FieldByIndexErr(index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s: %w", ErrUnknownProperty, property, err)
	}
	return fv, nil
}

// index maps property names of a struct type to field index paths.
func (f *Facade) index(t reflect.Type) map[string][]int {
	if cached, ok := f.fields.Load(t); ok {
		return cached.(map[string][]int)
	}

	names := make(map[string][]int)
	byGoName := make(map[string][]int)
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		if name := tagName(sf.Tag.Get(f.tag)); name != "" {
			names[name] = sf.Index
			continue
		}
		if name := tagName(sf.Tag.Get("json")); name != "" {
			if _, taken := names[name]; !taken {
				names[name] = sf.Index
			}
			continue
		}
		byGoName[sf.Name] = sf.Index
	}
	for name, idx := range byGoName {
		if _, taken := names[name]; !taken {
			names[name] = idx
		}
	}

	f.fields.Store(t, names)
	return names
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
