package apischema

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hawkowl/txkube/apierrors"
)

// legacyGroup is the API group assumed for bare non-core versions such
// as "v1beta1", matching the server's historical routing.
const legacyGroup = "extensions"

// FieldDefinition describes a single typed field of a kind.
type FieldDefinition struct {
	Name     string
	Type     string
	Required bool
	Default  interface{}
}

// KindDefinition is the immutable definition of one (apiVersion, kind)
// pair. Instances are shared by every value of that kind and must never
// be mutated after the catalog is built.
type KindDefinition struct {
	apiVersion string
	kind       string
	gv         schema.GroupVersion
	namespaced bool
	fields     []FieldDefinition
	index      map[string]int
}

// Kind returns the kind discriminator, e.g. "Namespace".
func (d *KindDefinition) Kind() string { return d.kind }

// APIVersion returns the version namespace the kind was declared in,
// exactly as it appears on the wire (e.g. "v1" or "v1beta1").
func (d *KindDefinition) APIVersion() string { return d.apiVersion }

// Namespace returns the empty string. It exists so a bare definition
// can stand in for an instance wherever only the kind coordinates
// matter, producing the type-level (collection-wide) addressing.
func (d *KindDefinition) Namespace() string { return "" }

// GroupVersionKind returns the fully qualified kind coordinates.
func (d *KindDefinition) GroupVersionKind() schema.GroupVersionKind {
	return d.gv.WithKind(d.kind)
}

// Namespaced reports whether values of the kind live inside a
// namespace.
func (d *KindDefinition) Namespaced() bool { return d.namespaced }

// IsResource reports whether the kind is a top-level API resource, as
// opposed to a nested structure such as ObjectMeta. A resource is any
// kind that carries standard object metadata.
func (d *KindDefinition) IsResource() bool {
	_, ok := d.index["metadata"]
	return ok
}

// ListKind returns the kind discriminator of the collection form.
func (d *KindDefinition) ListKind() string { return d.kind + "List" }

// Fields returns the ordered field set.
func (d *KindDefinition) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(d.fields))
	copy(out, d.fields)
	return out
}

// Field returns the definition of a single field by name.
func (d *KindDefinition) Field(name string) (FieldDefinition, bool) {
	i, ok := d.index[name]
	if !ok {
		return FieldDefinition{}, false
	}
	return d.fields[i], true
}

func (d *KindDefinition) String() string {
	return fmt.Sprintf("%s/%s", d.apiVersion, d.kind)
}

// Catalog maps (apiVersion, kind) pairs to their definitions. It is
// read-only after construction.
type Catalog struct {
	byGVK map[schema.GroupVersionKind]*KindDefinition
}

// Parse builds a catalog from the raw bytes of a schema document.
func Parse(data []byte) (*Catalog, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}

	c := &Catalog{byGVK: make(map[schema.GroupVersionKind]*KindDefinition)}
	for version, kinds := range doc.Versions {
		gv := ParseAPIVersion(version)
		for kind, spec := range kinds {
			fields := fieldDefinitions(spec)
			index := make(map[string]int, len(fields))
			for i, f := range fields {
				index[f.Name] = i
			}
			c.byGVK[gv.WithKind(kind)] = &KindDefinition{
				apiVersion: version,
				kind:       kind,
				gv:         gv,
				namespaced: spec.Namespaced,
				fields:     fields,
				index:      index,
			}
		}
	}
	return c, nil
}

// Load reads a schema document from a file and builds a catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema document: %w", err)
	}
	return Parse(data)
}

//go:embed schema.yaml
var defaultSchema []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the schema document bundled
// with the package. The document covers the core v1 kinds the client
// works with out of the box.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultSchema)
		if err != nil {
			panic(fmt.Errorf("failed to parse bundled schema: %w", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup returns the definition for the given pair. The apiVersion may
// be the wire form ("v1", "v1beta1") or the qualified group/version
// form ("extensions/v1beta1").
func (c *Catalog) Lookup(apiVersion, kind string) (*KindDefinition, error) {
	def, ok := c.byGVK[ParseAPIVersion(apiVersion).WithKind(kind)]
	if !ok {
		return nil, apierrors.NewUnknownKind(apiVersion, kind)
	}
	return def, nil
}

// LookupGVK returns the definition for fully qualified coordinates.
func (c *Catalog) LookupGVK(gvk schema.GroupVersionKind) (*KindDefinition, error) {
	def, ok := c.byGVK[gvk]
	if !ok {
		return nil, apierrors.NewUnknownKind(apiVersionString(gvk.GroupVersion()), gvk.Kind)
	}
	return def, nil
}

// Definitions returns every registered definition, ordered by
// apiVersion then kind.
func (c *Catalog) Definitions() []*KindDefinition {
	out := make([]*KindDefinition, 0, len(c.byGVK))
	for _, def := range c.byGVK {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].apiVersion != out[j].apiVersion {
			return out[i].apiVersion < out[j].apiVersion
		}
		return out[i].kind < out[j].kind
	})
	return out
}

// ParseAPIVersion maps a wire-form apiVersion to its group and version.
// "v1" belongs to the core (empty) group, qualified forms split on the
// slash, and bare legacy versions fall into the extensions group.
func ParseAPIVersion(apiVersion string) schema.GroupVersion {
	if apiVersion == "v1" {
		return schema.GroupVersion{Version: "v1"}
	}
	if strings.Contains(apiVersion, "/") {
		gv, err := schema.ParseGroupVersion(apiVersion)
		if err == nil {
			return gv
		}
	}
	return schema.GroupVersion{Group: legacyGroup, Version: apiVersion}
}

// apiVersionString is the inverse of ParseAPIVersion for qualified
// coordinates.
func apiVersionString(gv schema.GroupVersion) string {
	if gv.Group == "" {
		return gv.Version
	}
	return gv.String()
}
