package typecheck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

var builtins = map[string]string{
	"text":     `{"type": "string"}`,
	"token":    `{"type": "string", "pattern": "^[a-z0-9_]+$"}`,
	"integer":  `{"anyOf": [{"type": "integer"}, {"type": "string", "pattern": "^\\s*-?[0-9]+\\s*$"}]}`,
	"decimal":  `{"anyOf": [{"type": "number"}, {"type": "string", "pattern": "^\\s*-?([0-9]+\\.?[0-9]*|\\.[0-9]+)([eE][-+]?[0-9]+)?\\s*$"}]}`,
	"boolean":  `{"anyOf": [{"type": "boolean"}, {"enum": [0, 1, "0", "1"]}]}`,
	"date":     `{"anyOf": [{"type": "integer"}, {"type": "string", "pattern": "^\\s*-?[0-9]+\\s*$"}]}`,
	"duration": `{"anyOf": [{"type": "integer", "minimum": 0}, {"type": "string", "pattern": "^\\s*[0-9]+\\s*$"}]}`,
	"uri":      `{"type": "string", "format": "uri"}`,
	"struct":   `{"type": "object"}`,
}

// Checker verifies values against descriptors. It is safe for concurrent use.
type Checker struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
	sources map[string]string
	strict  bool
}

// Option configures a Checker.
type Option func(*Checker)

// Strict makes unknown descriptors fail verification.
func Strict() Option {
	return func(c *Checker) { c.strict = true }
}

// New creates a Checker with the built-in descriptors.
func New(opts ...Option) *Checker {
	c := &Checker{
		schemas: make(map[string]*jsonschema.Schema),
		sources: make(map[string]string, len(builtins)),
	}
	for name, src := range builtins {
		c.sources[name] = src
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds or replaces a descriptor backed by a JSON Schema document.
// The schema is compiled immediately.
func (c *Checker) Register(descriptor string, schemaJSON string) error {
	if descriptor == "" || strings.ContainsAny(descriptor, "<>") {
		return fmt.Errorf("%w: %q", ErrInvalidDescriptor, descriptor)
	}
	compiled, err := compile(descriptor, schemaJSON)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[descriptor] = schemaJSON
	c.schemas[descriptor] = compiled
	return nil
}

// Known reports whether descriptor can be checked.
func (c *Checker) Known(descriptor validator.TypeDescriptor) bool {
	_, ok := c.source(string(descriptor))
	return ok
}

// Verify reports whether value conforms to descriptor.
func (c *Checker) Verify(value any, descriptor validator.TypeDescriptor) bool {
	sch, err := c.schema(string(descriptor))
	if err != nil {
		return !c.strict && errors.Is(err, ErrInvalidDescriptor)
	}

	doc, err := normalize(value)
	if err != nil {
		return false
	}
	return sch.Validate(doc) == nil
}

func (c *Checker) schema(descriptor string) (*jsonschema.Schema, error) {
	c.mu.RLock()
	sch, ok := c.schemas[descriptor]
	c.mu.RUnlock()
	if ok {
		return sch, nil
	}

	src, ok := c.source(descriptor)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDescriptor, descriptor)
	}
	sch, err := compile(descriptor, src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.schemas[descriptor] = sch
	c.mu.Unlock()
	return sch, nil
}

// source returns the schema document for a descriptor, expanding list<T>.
func (c *Checker) source(descriptor string) (string, bool) {
	c.mu.RLock()
	src, ok := c.sources[descriptor]
	c.mu.RUnlock()
	if ok {
		return src, true
	}

	inner, ok := listItem(descriptor)
	if !ok {
		return "", false
	}
	itemSrc, ok := c.source(inner)
	if !ok {
		return "", false
	}
	return `{"type": "array", "items": ` + itemSrc + `}`, true
}

func listItem(descriptor string) (string, bool) {
	if !strings.HasPrefix(descriptor, "list<") || !strings.HasSuffix(descriptor, ">") {
		return "", false
	}
	inner := descriptor[len("list<") : len(descriptor)-1]
	return inner, inner != ""
}

func compile(descriptor, src string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true

	url := strings.NewReplacer("<", "_", ">", "_").Replace(descriptor) + ".json"
	if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, errors.Join(ErrCompileSchema, err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, errors.Join(ErrCompileSchema, err)
	}
	return sch, nil
}

// normalize converts a Go value to the shape produced by encoding/json.
func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
