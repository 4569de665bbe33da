package model

import (
	"sync"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apiserver/pkg/storage/names"
)

// DefaultFiller populates the required-but-absent fields of an object
// according to kind-specific policy, returning a new value. Fillers
// must leave fields that already have values alone.
type DefaultFiller func(Object) Object

// Defaulter dispatches default-filling by kind. Policies are registered
// explicitly at startup; kinds without a policy pass through unchanged
// apart from server-side name generation.
type Defaulter struct {
	mu      sync.RWMutex
	fillers map[schema.GroupVersionKind]DefaultFiller
}

// NewDefaulter creates an empty Defaulter.
func NewDefaulter() *Defaulter {
	return &Defaulter{fillers: make(map[schema.GroupVersionKind]DefaultFiller)}
}

// Register installs the filler for one kind, replacing any previous
// registration.
func (d *Defaulter) Register(gvk schema.GroupVersionKind, filler DefaultFiller) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fillers[gvk] = filler
}

// Fill applies name generation and the kind-specific policy, returning
// a new object. The input is never modified.
func (d *Defaulter) Fill(obj Object) Object {
	out := fillGeneratedName(obj)

	d.mu.RLock()
	filler := d.fillers[obj.GroupVersionKind()]
	d.mu.RUnlock()

	if filler != nil {
		out = filler(out)
	}
	return out
}

// StandardDefaulter returns a Defaulter carrying the built-in policies
// for the bundled kinds.
func StandardDefaulter() *Defaulter {
	d := NewDefaulter()
	d.Register(schema.GroupVersionKind{Version: "v1", Kind: "Namespace"}, FillNamespaceDefaults)
	return d
}

var standardDefaulter = StandardDefaulter()

// FillDefaults returns a new object with required-but-absent fields
// populated by the standard per-kind policies. Kinds without a policy
// return themselves unchanged.
func (o Object) FillDefaults() Object {
	return standardDefaulter.Fill(o)
}

// FillNamespaceDefaults gives a freshly named namespace the identity
// the server would assign: a generated v4 UUID and an Active status.
// Existing values are left alone.
func FillNamespaceDefaults(obj Object) Object {
	out := obj
	if out.UID() == "" {
		out = transformOrSame(out, []string{"metadata", "uid"}, uuid.NewString())
	}
	if _, ok := out.Get("status"); !ok {
		out = transformOrSame(out, []string{"status"}, ActiveNamespaceStatus())
	}
	return out
}

// fillGeneratedName resolves metadata.generateName for objects created
// without an explicit name, the way the server does on admission.
func fillGeneratedName(obj Object) Object {
	if obj.Name() != "" {
		return obj
	}
	base, ok := obj.Get("metadata", "generateName")
	if !ok {
		return obj
	}
	prefix, _ := base.(string)
	if prefix == "" {
		return obj
	}
	return transformOrSame(obj, []string{"metadata", "name"}, names.SimpleNameGenerator.GenerateName(prefix))
}

// transformOrSame applies a transform that is known to be valid for the
// object's kind; a failure leaves the object unchanged rather than
// dropping the value on the floor.
func transformOrSame(obj Object, path []string, value interface{}) Object {
	out, err := obj.Transform(path, value)
	if err != nil {
		return obj
	}
	return out
}
