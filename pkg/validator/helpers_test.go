package validator_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/entityvalidate/pkg/property"
	"github.com/dmitrymomot/entityvalidate/pkg/typecheck"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

type mockMetadata struct {
	mock.Mock
}

func (m *mockMetadata) FieldsInfo(ctx context.Context, entityType, bundle string) ([]validator.FieldSpec, error) {
	args := m.Called(ctx, entityType, bundle)
	specs, _ := args.Get(0).([]validator.FieldSpec)
	return specs, args.Error(1)
}

type mockProperties struct {
	mock.Mock
}

func (m *mockProperties) Get(record any, name string) (any, error) {
	args := m.Called(record, name)
	return args.Get(0), args.Error(1)
}

func (m *mockProperties) Set(record any, name string, value any) error {
	args := m.Called(record, name, value)
	return args.Error(0)
}

// fields returns a static schema.
func fields(specs ...validator.FieldSpec) validator.Metadata {
	return validator.MetadataFunc(func(context.Context, string, string) ([]validator.FieldSpec, error) {
		return specs, nil
	})
}

// newEngine wires a node/article engine over map records.
func newEngine(specs []validator.FieldSpec, opts ...validator.Option) *validator.Engine {
	base := []validator.Option{
		validator.WithMetadata(fields(specs...)),
		validator.WithProperties(property.New()),
		validator.WithTypeChecker(typecheck.New()),
		validator.WithEntityType("node"),
		validator.WithBundle("article"),
	}
	return validator.New(append(base, opts...)...)
}

// messages returns the raw templates recorded for field.
func messages(e *validator.Engine, field string) []string {
	var out []string
	for _, v := range e.Errors()[field] {
		out = append(out, v.Message)
	}
	return out
}
