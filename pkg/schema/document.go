package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// Document is the serialized form of a set of schemas.
type Document struct {
	// Schemas maps entity type to bundle to fields.
	Schemas map[string]map[string][]Field `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	// Entities are described by their instances and derived with Derive.
	Entities []Entity `yaml:"entities,omitempty" json:"entities,omitempty"`
}

// Field is the serialized form of validator.FieldSpec.
type Field struct {
	Name          string            `yaml:"name" json:"name"`
	Property      string            `yaml:"property,omitempty" json:"property,omitempty"`
	Label         string            `yaml:"label,omitempty" json:"label,omitempty"`
	Required      bool              `yaml:"required,omitempty" json:"required,omitempty"`
	Preprocessors []string          `yaml:"preprocessors,omitempty" json:"preprocessors,omitempty"`
	Validators    []string          `yaml:"validators,omitempty" json:"validators,omitempty"`
	Type          string            `yaml:"type,omitempty" json:"type,omitempty"`
	Settings      map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Spec converts f to a field spec.
func (f Field) Spec() validator.FieldSpec {
	return validator.FieldSpec{
		Name:          f.Name,
		Property:      f.Property,
		Label:         f.Label,
		Required:      f.Required,
		Preprocessors: slices.Clone(f.Preprocessors),
		Validators:    slices.Clone(f.Validators),
		Type:          validator.TypeDescriptor(f.Type),
		Settings:      maps.Clone(f.Settings),
	}
}

// FieldFromSpec converts a field spec to its serialized form.
func FieldFromSpec(s validator.FieldSpec) Field {
	return Field{
		Name:          s.Name,
		Property:      s.Property,
		Label:         s.Label,
		Required:      s.Required,
		Preprocessors: slices.Clone(s.Preprocessors),
		Validators:    slices.Clone(s.Validators),
		Type:          string(s.Type),
		Settings:      maps.Clone(s.Settings),
	}
}

// Entity describes an entity type as a content store sees it.
type Entity struct {
	Type string `yaml:"type" json:"type"`
	// LabelKey names the property holding the entity's title. It must not be empty.
	LabelKey string                `yaml:"label_key,omitempty" json:"label_key,omitempty"`
	Bundles  map[string][]Instance `yaml:"bundles,omitempty" json:"bundles,omitempty"`
}

// Instance is a field attached to a bundle.
type Instance struct {
	FieldName string            `yaml:"field_name" json:"field_name"`
	Label     string            `yaml:"label,omitempty" json:"label,omitempty"`
	FieldType string            `yaml:"field_type" json:"field_type"`
	Required  bool              `yaml:"required,omitempty" json:"required,omitempty"`
	Settings  map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Field types with special handling in Derive.
const (
	FieldTypeImage = "image"
)

// fieldTypes maps storage field types to type descriptors understood by typecheck.
var fieldTypes = map[string]validator.TypeDescriptor{
	"text":              "text",
	"text_long":         "text",
	"text_with_summary": "text",
	"number_integer":    "integer",
	"number_decimal":    "decimal",
	"number_float":      "decimal",
	"list_boolean":      "boolean",
	"datetime":          "date",
	"date":              "date",
	"datestamp":         "integer",
	"link_field":        "uri",
}

// Derive builds the field specs of one bundle from an entity description.
// The label key must not be empty, required instances must not be empty,
// and image fields are checked against their resolution settings.
func Derive(e Entity, bundle string) []validator.FieldSpec {
	var specs []validator.FieldSpec
	index := make(map[string]int)

	add := func(spec validator.FieldSpec) *validator.FieldSpec {
		if i, ok := index[spec.Name]; ok {
			return &specs[i]
		}
		index[spec.Name] = len(specs)
		specs = append(specs, spec)
		return &specs[len(specs)-1]
	}

	if e.LabelKey != "" {
		add(validator.FieldSpec{
			Name:       e.LabelKey,
			Label:      humanize(e.LabelKey),
			Validators: []string{validator.RuleIsNotEmpty},
		})
	}

	for _, inst := range e.Bundles[bundle] {
		label := inst.Label
		if label == "" {
			label = humanize(inst.FieldName)
		}
		spec := add(validator.FieldSpec{
			Name:     inst.FieldName,
			Label:    label,
			Type:     fieldTypes[inst.FieldType],
			Settings: maps.Clone(inst.Settings),
		})
		if spec.Type == "" {
			spec.Type = fieldTypes[inst.FieldType]
		}
		if spec.Settings == nil {
			spec.Settings = maps.Clone(inst.Settings)
		}
		if inst.Required {
			spec.Required = true
		}
		if inst.FieldType == FieldTypeImage {
			spec.Validators = append(spec.Validators, validator.RuleValidateImageField)
		}
	}

	return specs
}

// humanize turns a machine name such as field_image into "Field Image".
// Casers are stateful, so each call gets its own.
func humanize(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// validateFields converts a bundle's fields, rejecting unnamed and repeated fields.
func validateFields(entityType, bundle string, fields []Field) ([]validator.FieldSpec, error) {
	out := make([]validator.FieldSpec, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: %s/%s field #%d has no name", ErrInvalidField, entityType, bundle, i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %s/%s %s", ErrDuplicateField, entityType, bundle, f.Name)
		}
		seen[f.Name] = true
		out = append(out, f.Spec())
	}
	return out, nil
}

func cloneSpecs(in []validator.FieldSpec) []validator.FieldSpec {
	if in == nil {
		return nil
	}
	out := make([]validator.FieldSpec, len(in))
	for i, s := range in {
		s.Preprocessors = slices.Clone(s.Preprocessors)
		s.Validators = slices.Clone(s.Validators)
		s.Settings = maps.Clone(s.Settings)
		out[i] = s
	}
	return out
}
