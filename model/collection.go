package model

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/hawkowl/txkube/apierrors"
	"github.com/hawkowl/txkube/apischema"
)

// Collection is an ordered container of objects of one kind. Members
// are always kept sorted by (namespace, name), with the empty namespace
// ordered first; this matches the ordering the server imposes on list
// responses, so diffing local state against server state is
// deterministic. Like Object, a Collection is immutable: Add, Remove
// and Replace return new collections.
type Collection struct {
	def   *apischema.KindDefinition
	items []Object
}

// NewCollection constructs a collection of the given element kind. The
// items are sorted on construction; duplicate names are not checked.
func NewCollection(def *apischema.KindDefinition, items ...Object) Collection {
	sorted := make([]Object, len(items))
	copy(sorted, items)
	sortObjects(sorted)
	return Collection{def: def, items: sorted}
}

// Definition returns the element kind definition.
func (c Collection) Definition() *apischema.KindDefinition { return c.def }

// Kind returns the element kind discriminator.
func (c Collection) Kind() string {
	if c.def == nil {
		return ""
	}
	return c.def.Kind()
}

// ListKind returns the wire discriminator of the collection itself.
func (c Collection) ListKind() string {
	if c.def == nil {
		return ""
	}
	return c.def.ListKind()
}

// APIVersion returns the wire-form version namespace of the elements.
func (c Collection) APIVersion() string {
	if c.def == nil {
		return ""
	}
	return c.def.APIVersion()
}

// Len returns the number of members.
func (c Collection) Len() int { return len(c.items) }

// Items returns the members in collection order.
func (c Collection) Items() []Object {
	out := make([]Object, len(c.items))
	copy(out, c.items)
	return out
}

// ItemByName returns the member with the given name. When the
// collection spans namespaces the first match in collection order wins.
func (c Collection) ItemByName(name string) (Object, error) {
	for _, obj := range c.items {
		if obj.Name() == name {
			return obj, nil
		}
	}
	return Object{}, apierrors.NewNotFound(c.Kind(), "", name)
}

// Add returns a new collection with obj appended and the member
// sequence re-sorted. It does not check for an existing member with the
// same name; callers that want replacement semantics use Replace.
func (c Collection) Add(obj Object) Collection {
	items := make([]Object, 0, len(c.items)+1)
	items = append(items, c.items...)
	items = append(items, obj)
	sortObjects(items)
	return Collection{def: c.def, items: items}
}

// Remove returns a new collection without old. The member must be
// structurally identical to a current member; otherwise a NotFoundError
// is returned.
func (c Collection) Remove(old Object) (Collection, error) {
	for i, obj := range c.items {
		if reflect.DeepEqual(obj, old) {
			items := make([]Object, 0, len(c.items)-1)
			items = append(items, c.items[:i]...)
			items = append(items, c.items[i+1:]...)
			return Collection{def: c.def, items: items}, nil
		}
	}
	return Collection{}, apierrors.NewNotFound(c.Kind(), old.Namespace(), old.Name())
}

// Replace returns a new collection with old removed and new added,
// re-sorted. The NotFoundError from the underlying removal propagates
// when old is not a current member.
func (c Collection) Replace(old, new Object) (Collection, error) {
	removed, err := c.Remove(old)
	if err != nil {
		return Collection{}, err
	}
	return removed.Add(new), nil
}

func (c Collection) String() string {
	return fmt.Sprintf("%s(%d items)", c.ListKind(), len(c.items))
}

// sortObjects orders members by namespace then name. The empty
// namespace sorts before every named one, which string comparison gives
// us for free.
func sortObjects(items []Object) {
	sort.SliceStable(items, func(i, j int) bool {
		if ni, nj := items[i].Namespace(), items[j].Namespace(); ni != nj {
			return ni < nj
		}
		return items[i].Name() < items[j].Name()
	})
}
