package schema

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// Static is an in-memory schema provider. It is safe for concurrent use.
type Static struct {
	mu      sync.RWMutex
	schemas map[Key][]validator.FieldSpec
}

func NewStatic() *Static {
	return &Static{schemas: make(map[Key][]validator.FieldSpec)}
}

// Set replaces the fields of a bundle.
func (s *Static) Set(entityType, bundle string, specs ...validator.FieldSpec) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[Key{entityType, bundle}] = cloneSpecs(specs)
	return s
}

// AddDocument adds every schema of doc. A bundle that is already defined,
// in s or twice in doc, is an error, and so is an entity type containing a slash.
func (s *Static) AddDocument(doc Document) error {
	pending := make(map[Key][]validator.FieldSpec)

	for entityType, bundles := range doc.Schemas {
		if err := checkEntityType(entityType); err != nil {
			return err
		}
		for bundle, fields := range bundles {
			converted, err := validateFields(entityType, bundle, fields)
			if err != nil {
				return err
			}
			pending[Key{entityType, bundle}] = converted
		}
	}

	for _, e := range doc.Entities {
		if e.Type == "" {
			return fmt.Errorf("%w: entity without type", ErrInvalidField)
		}
		if err := checkEntityType(e.Type); err != nil {
			return err
		}
		for bundle := range e.Bundles {
			k := Key{e.Type, bundle}
			if _, ok := pending[k]; ok {
				return fmt.Errorf("%w: %s", ErrDuplicateBundle, k)
			}
			pending[k] = Derive(e, bundle)
		}
		if len(e.Bundles) == 0 && e.LabelKey != "" {
			k := Key{EntityType: e.Type}
			if _, ok := pending[k]; ok {
				return fmt.Errorf("%w: %s", ErrDuplicateBundle, k)
			}
			pending[k] = Derive(e, "")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range pending {
		if _, ok := s.schemas[k]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateBundle, k)
		}
	}
	maps.Copy(s.schemas, pending)
	return nil
}

// FieldsInfo returns a copy of the bundle's fields.
func (s *Static) FieldsInfo(_ context.Context, entityType, bundle string) ([]validator.FieldSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSpecs(s.schemas[Key{entityType, bundle}]), nil
}

// Keys lists the defined schemas as "entity/bundle", sorted.
func (s *Static) Keys() []string {
	keys := s.sortedKeys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}

func (s *Static) sortedKeys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.SortedFunc(maps.Keys(s.schemas), compareKeys)
}

// Each calls fn for every defined schema in key order.
func (s *Static) Each(fn func(entityType, bundle string, specs []validator.FieldSpec) error) error {
	for _, k := range s.sortedKeys() {
		specs, _ := s.FieldsInfo(context.Background(), k.EntityType, k.Bundle)
		if err := fn(k.EntityType, k.Bundle, specs); err != nil {
			return err
		}
	}
	return nil
}
