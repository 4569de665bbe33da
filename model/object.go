package model

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hawkowl/txkube/apischema"
)

// Object is an immutable, typed record of one API resource. It carries
// a shared reference to its kind definition and a private copy of its
// field values. The zero Object is invalid; use New or Named.
type Object struct {
	def    *apischema.KindDefinition
	fields map[string]interface{}
}

// New constructs an Object of the given kind from a field mapping. The
// mapping is deep-copied, so the caller keeps ownership of its input.
// Fields not declared by the kind definition are rejected.
func New(def *apischema.KindDefinition, fields map[string]interface{}) (Object, error) {
	if def == nil {
		return Object{}, fmt.Errorf("cannot construct an object without a kind definition")
	}
	for name := range fields {
		if _, ok := def.Field(name); !ok {
			return Object{}, fmt.Errorf("%s has no field %q", def, name)
		}
	}
	return Object{def: def, fields: deepCopyMap(fields)}, nil
}

// Named constructs an empty shell carrying only name metadata, the
// common starting point for get and create calls. The namespace may be
// empty for cluster-scoped kinds.
func Named(def *apischema.KindDefinition, namespace, name string) Object {
	meta := map[string]interface{}{"name": name}
	if namespace != "" {
		meta["namespace"] = namespace
	}
	return Object{def: def, fields: map[string]interface{}{"metadata": meta}}
}

// Definition returns the shared kind definition.
func (o Object) Definition() *apischema.KindDefinition { return o.def }

// Kind returns the kind discriminator.
func (o Object) Kind() string {
	if o.def == nil {
		return ""
	}
	return o.def.Kind()
}

// APIVersion returns the wire-form version namespace.
func (o Object) APIVersion() string {
	if o.def == nil {
		return ""
	}
	return o.def.APIVersion()
}

// GroupVersionKind returns the fully qualified kind coordinates.
func (o Object) GroupVersionKind() schema.GroupVersionKind {
	if o.def == nil {
		return schema.GroupVersionKind{}
	}
	return o.def.GroupVersionKind()
}

// Name returns metadata.name, or "" when absent.
func (o Object) Name() string { return o.metaString("name") }

// Namespace returns metadata.namespace, or "" when absent.
func (o Object) Namespace() string { return o.metaString("namespace") }

// UID returns metadata.uid, or "" when absent.
func (o Object) UID() string { return o.metaString("uid") }

// ResourceVersion returns metadata.resourceVersion, or "" when absent.
func (o Object) ResourceVersion() string { return o.metaString("resourceVersion") }

func (o Object) metaString(key string) string {
	meta, ok := o.fields["metadata"].(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := meta[key].(string)
	return s
}

// Fields returns a deep copy of the field mapping, without the kind and
// apiVersion discriminators.
func (o Object) Fields() map[string]interface{} {
	return deepCopyMap(o.fields)
}

// Get returns a deep copy of the value at the given path, walking
// nested mappings. The second return is false when any path element is
// absent.
func (o Object) Get(path ...string) (interface{}, bool) {
	var current interface{} = o.fields
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return deepCopyValue(current), true
}

// Transform returns a new Object with the field at path replaced by
// value, sharing everything the path does not touch with the original.
// Missing intermediate mappings are created; traversing a non-mapping
// value is an error. The original object is never modified.
func (o Object) Transform(path []string, value interface{}) (Object, error) {
	if o.def == nil {
		return Object{}, fmt.Errorf("cannot transform the zero object")
	}
	if len(path) == 0 {
		return Object{}, fmt.Errorf("transform requires a non-empty path")
	}
	if _, ok := o.def.Field(path[0]); !ok {
		return Object{}, fmt.Errorf("%s has no field %q", o.def, path[0])
	}

	fields, err := setAtPath(o.fields, path, deepCopyValue(value))
	if err != nil {
		return Object{}, err
	}
	return Object{def: o.def, fields: fields}, nil
}

// Remove returns a new Object with the field at path cleared. Removing
// an absent field returns the receiver unchanged.
func (o Object) Remove(path ...string) (Object, error) {
	if o.def == nil {
		return Object{}, fmt.Errorf("cannot transform the zero object")
	}
	if len(path) == 0 {
		return Object{}, fmt.Errorf("remove requires a non-empty path")
	}
	if _, ok := o.Get(path...); !ok {
		return o, nil
	}
	fields, err := removeAtPath(o.fields, path)
	if err != nil {
		return Object{}, err
	}
	return Object{def: o.def, fields: fields}, nil
}

// setAtPath copies the mappings along path and sets the leaf, leaving
// the source untouched.
func setAtPath(src map[string]interface{}, path []string, value interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	if len(path) == 1 {
		out[path[0]] = value
		return out, nil
	}

	var child map[string]interface{}
	switch existing := src[path[0]].(type) {
	case nil:
		child = map[string]interface{}{}
	case map[string]interface{}:
		child = existing
	default:
		return nil, fmt.Errorf("field %q is not a mapping", path[0])
	}
	replaced, err := setAtPath(child, path[1:], value)
	if err != nil {
		return nil, err
	}
	out[path[0]] = replaced
	return out, nil
}

func removeAtPath(src map[string]interface{}, path []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		out[k] = v
	}
	if len(path) == 1 {
		delete(out, path[0])
		return out, nil
	}
	child, ok := src[path[0]].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q is not a mapping", path[0])
	}
	replaced, err := removeAtPath(child, path[1:])
	if err != nil {
		return nil, err
	}
	out[path[0]] = replaced
	return out, nil
}

func deepCopyMap(src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(value)
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
