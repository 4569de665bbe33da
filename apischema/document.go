package apischema

import (
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/hawkowl/txkube/apierrors"
)

// document is the on-disk shape of a schema document. YAML and JSON are
// both accepted; YAML is converted to JSON before unmarshalling.
type document struct {
	Versions map[string]map[string]kindSpec `json:"versions"`
}

type kindSpec struct {
	Namespaced bool                 `json:"namespaced,omitempty"`
	Fields     map[string]fieldSpec `json:"fields"`
}

type fieldSpec struct {
	Type     string      `json:"type"`
	Required bool        `json:"required,omitempty"`
	Default  interface{} `json:"default,omitempty"`
}

// scalarTypes are the field types that do not reference another kind.
var scalarTypes = map[string]bool{
	"string":  true,
	"integer": true,
	"number":  true,
	"boolean": true,
	"object":  true,
	"array":   true,
}

// parseDocument unmarshals and validates a schema document. Every field
// type must be a scalar or the name of another kind declared in the
// same version namespace.
func parseDocument(data []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apierrors.NewSchemaError("cannot unmarshal document: %v", err)
	}
	if len(doc.Versions) == 0 {
		return nil, apierrors.NewSchemaError("document declares no versions")
	}
	for version, kinds := range doc.Versions {
		if len(kinds) == 0 {
			return nil, apierrors.NewSchemaError("version %q declares no kinds", version)
		}
		for kind, spec := range kinds {
			if kind == "" {
				return nil, apierrors.NewSchemaError("version %q declares a kind with an empty name", version)
			}
			for name, field := range spec.Fields {
				if name == "" {
					return nil, apierrors.NewSchemaError("kind %s/%s declares a field with an empty name", version, kind)
				}
				if field.Type == "" {
					return nil, apierrors.NewSchemaError("field %q of %s/%s has no type", name, version, kind)
				}
				if scalarTypes[field.Type] {
					continue
				}
				if _, ok := kinds[field.Type]; !ok {
					return nil, apierrors.NewSchemaError(
						"field %q of %s/%s references undefined kind %q", name, version, kind, field.Type)
				}
			}
		}
	}
	return &doc, nil
}

// fieldDefinitions converts a kind spec into an ordered field set. The
// order is the lexical order of the field names so that two loads of
// the same document always agree.
func fieldDefinitions(spec kindSpec) []FieldDefinition {
	names := make([]string, 0, len(spec.Fields))
	for name := range spec.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]FieldDefinition, 0, len(names))
	for _, name := range names {
		f := spec.Fields[name]
		fields = append(fields, FieldDefinition{
			Name:     name,
			Type:     f.Type,
			Required: f.Required,
			Default:  f.Default,
		})
	}
	return fields
}
