package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hawkowl/txkube/apierrors"
	"github.com/hawkowl/txkube/apischema"
	"github.com/hawkowl/txkube/model"
	"github.com/hawkowl/txkube/validation"
)

// MemoryOptions configures a memory client.
type MemoryOptions struct {
	// Catalog supplies the kind definitions. Required.
	Catalog *apischema.Catalog

	// Defaulter fills server-assigned defaults on create and replace.
	// The standard defaulter is used when nil.
	Defaulter *model.Defaulter

	// Validator, when set, is consulted before create and replace, the
	// way the server's admission chain would be.
	Validator validation.Validator
}

// memoryClient simulates the server entirely in-process: one collection
// per kind, updated by wholesale replacement so a concurrent reader
// never observes a partial update. Failures are surfaced as the same
// Status responses the real server would send, so callers cannot tell
// the two backends apart.
type memoryClient struct {
	catalog   *apischema.Catalog
	defaulter *model.Defaulter
	validator validation.Validator

	mu              sync.RWMutex
	collections     map[schema.GroupVersionKind]model.Collection
	resourceVersion uint64
}

// NewMemoryClient creates a client backed by an in-process store.
func NewMemoryClient(opts MemoryOptions) (Interface, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	defaulter := opts.Defaulter
	if defaulter == nil {
		defaulter = model.StandardDefaulter()
	}
	return &memoryClient{
		catalog:     opts.Catalog,
		defaulter:   defaulter,
		validator:   opts.Validator,
		collections: make(map[schema.GroupVersionKind]model.Collection),
	}, nil
}

func (m *memoryClient) Create(ctx context.Context, obj model.Object) (model.Object, error) {
	if err := m.admit(ctx, obj); err != nil {
		return model.Object{}, err
	}

	filled := m.defaulter.Fill(obj)
	if filled.Name() == "" {
		return model.Object{}, fmt.Errorf("%s has no name and no generateName", filled.Kind())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gvk := filled.GroupVersionKind()
	coll := m.collection(gvk, filled.Definition())
	if _, ok := findItem(coll, filled.Namespace(), filled.Name()); ok {
		return model.Object{}, alreadyExistsError(filled)
	}

	stored := m.stamp(filled)
	m.collections[gvk] = coll.Add(stored)
	return stored, nil
}

func (m *memoryClient) Get(ctx context.Context, obj model.Object) (model.Object, error) {
	if err := ctx.Err(); err != nil {
		return model.Object{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collection(obj.GroupVersionKind(), obj.Definition())
	stored, ok := findItem(coll, obj.Namespace(), obj.Name())
	if !ok {
		return model.Object{}, notFoundError(obj)
	}
	return stored, nil
}

func (m *memoryClient) List(ctx context.Context, def *apischema.KindDefinition) (model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return model.Collection{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collection(def.GroupVersionKind(), def), nil
}

func (m *memoryClient) Replace(ctx context.Context, old, new model.Object) (model.Object, error) {
	if err := sameObject(old, new); err != nil {
		return model.Object{}, err
	}
	if err := m.admit(ctx, new); err != nil {
		return model.Object{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gvk := new.GroupVersionKind()
	coll := m.collection(gvk, new.Definition())
	stored, ok := findItem(coll, old.Namespace(), old.Name())
	if !ok {
		return model.Object{}, notFoundError(old)
	}

	replacement := m.stamp(m.defaulter.Fill(new))
	replaced, err := coll.Replace(stored, replacement)
	if err != nil {
		return model.Object{}, err
	}
	m.collections[gvk] = replaced
	return replacement, nil
}

func (m *memoryClient) Delete(ctx context.Context, obj model.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gvk := obj.GroupVersionKind()
	coll := m.collection(gvk, obj.Definition())
	stored, ok := findItem(coll, obj.Namespace(), obj.Name())
	if !ok {
		return notFoundError(obj)
	}
	removed, err := coll.Remove(stored)
	if err != nil {
		return err
	}
	m.collections[gvk] = removed
	return nil
}

// admit runs context and validation checks shared by the write paths.
func (m *memoryClient) admit(ctx context.Context, obj model.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if obj.Definition() == nil {
		return fmt.Errorf("cannot operate on the zero object")
	}
	if m.validator != nil {
		if err := m.validator.Validate(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}

// collection returns the current collection for a kind, or an empty one
// for kinds nothing has been stored under yet. Callers hold m.mu.
func (m *memoryClient) collection(gvk schema.GroupVersionKind, def *apischema.KindDefinition) model.Collection {
	if coll, ok := m.collections[gvk]; ok {
		return coll
	}
	return model.NewCollection(def)
}

// stamp assigns the next resource version, as the server does on every
// write. Callers hold m.mu.
func (m *memoryClient) stamp(obj model.Object) model.Object {
	m.resourceVersion++
	out, err := obj.Transform([]string{"metadata", "resourceVersion"}, strconv.FormatUint(m.resourceVersion, 10))
	if err != nil {
		return obj
	}
	return out
}

// findItem locates a member by namespace and name. Collections span
// namespaces here, so name alone is not a key.
func findItem(coll model.Collection, namespace, name string) (model.Object, bool) {
	for _, obj := range coll.Items() {
		if obj.Namespace() == namespace && obj.Name() == name {
			return obj, true
		}
	}
	return model.Object{}, false
}

// sameObject verifies that old and new identify the same object;
// replace must not rename or move.
func sameObject(old, new model.Object) error {
	if old.Name() != new.Name() || old.Namespace() != new.Namespace() {
		return fmt.Errorf("replacement must keep the object's namespace and name")
	}
	return nil
}

// notFoundError synthesizes the Status response the real server sends
// for a missing object, preserving backend parity.
func notFoundError(obj model.Object) *apierrors.RemoteError {
	resource := strings.ToLower(obj.Kind()) + "s"
	status := &metav1.Status{
		TypeMeta: metav1.TypeMeta{Kind: "Status", APIVersion: "v1"},
		Status:   metav1.StatusFailure,
		Code:     http.StatusNotFound,
		Reason:   metav1.StatusReasonNotFound,
		Message:  fmt.Sprintf("%s %q not found", resource, obj.Name()),
		Details:  &metav1.StatusDetails{Name: obj.Name(), Kind: resource},
	}
	return apierrors.NewRemoteError(http.StatusNotFound, status, status.Message)
}

// alreadyExistsError synthesizes the server's conflict response for a
// duplicate create.
func alreadyExistsError(obj model.Object) *apierrors.RemoteError {
	resource := strings.ToLower(obj.Kind()) + "s"
	status := &metav1.Status{
		TypeMeta: metav1.TypeMeta{Kind: "Status", APIVersion: "v1"},
		Status:   metav1.StatusFailure,
		Code:     http.StatusConflict,
		Reason:   metav1.StatusReasonAlreadyExists,
		Message:  fmt.Sprintf("%s %q already exists", resource, obj.Name()),
		Details:  &metav1.StatusDetails{Name: obj.Name(), Kind: resource},
	}
	return apierrors.NewRemoteError(http.StatusConflict, status, status.Message)
}
