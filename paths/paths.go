// Package paths derives the canonical URL path segments for API
// resources, mirroring the server's own routing rules. Any divergence
// here breaks every network operation, so the functions are pure and
// tested against literal expected paths.
package paths

import (
	"strings"

	"github.com/hawkowl/txkube/apischema"
)

// Locatable is anything that knows its kind coordinates: a typed value
// (namespace read from its metadata) or a bare kind definition
// (namespace always empty, producing the collection-wide path).
type Locatable interface {
	APIVersion() string
	Kind() string
	Namespace() string
}

// CollectionLocation returns the path segments addressing the
// collection the given resource belongs to. Core v1 kinds live under
// /api/v1; everything else under /apis/<group>/<version>. A non-empty
// namespace inserts the namespaces/<name> scope after the base, and the
// final segment is the pluralized, lower-cased kind.
func CollectionLocation(loc Locatable) []string {
	var segments []string
	apiVersion := loc.APIVersion()
	if apiVersion == "v1" {
		segments = []string{"api", "v1"}
	} else {
		gv := apischema.ParseAPIVersion(apiVersion)
		segments = []string{"apis", gv.Group, gv.Version}
	}
	if ns := loc.Namespace(); ns != "" {
		segments = append(segments, "namespaces", ns)
	}
	return append(segments, pluralize(loc.Kind()))
}

// ObjectLocation returns the path segments addressing one named member
// of a collection.
func ObjectLocation(loc Locatable, name string) []string {
	return append(CollectionLocation(loc), name)
}

// pluralize lower-cases the kind and appends "s". The server does no
// irregular-plural handling for these resources and neither do we.
func pluralize(kind string) string {
	return strings.ToLower(kind) + "s"
}
