package codec

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hawkowl/txkube/apierrors"
	"github.com/hawkowl/txkube/apischema"
	"github.com/hawkowl/txkube/model"
)

// ToRaw serializes a typed value into its wire mapping, injecting the
// kind and apiVersion discriminators as top-level keys. The result is
// independent of the object: mutating it has no effect on the value.
func ToRaw(obj model.Object) map[string]interface{} {
	raw := obj.Fields()
	raw["kind"] = obj.Kind()
	raw["apiVersion"] = obj.APIVersion()
	return raw
}

// FromRaw constructs a typed value from a raw wire mapping. The kind
// and apiVersion are read from the record, falling back to the defaults
// coordinates for records that omit them (list items, typically). The
// input record is never modified.
func FromRaw(catalog *apischema.Catalog, raw map[string]interface{}, defaults *schema.GroupVersionKind) (model.Object, error) {
	apiVersion, kind := discriminators(raw, defaults)
	def, err := catalog.Lookup(apiVersion, kind)
	if err != nil {
		return model.Object{}, err
	}

	fields := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k == "kind" || k == "apiVersion" {
			continue
		}
		fields[k] = v
	}
	obj, err := model.New(def, fields)
	if err != nil {
		return model.Object{}, fmt.Errorf("failed to decode %s: %w", def, err)
	}
	return obj, nil
}

// CollectionToRaw serializes a collection into its wire mapping. Items
// are emitted without per-item discriminators, matching what the server
// puts on the wire for list responses.
func CollectionToRaw(c model.Collection) map[string]interface{} {
	items := make([]interface{}, 0, c.Len())
	for _, obj := range c.Items() {
		items = append(items, obj.Fields())
	}
	return map[string]interface{}{
		"kind":       c.ListKind(),
		"apiVersion": c.APIVersion(),
		"items":      items,
	}
}

// CollectionFromRaw constructs a typed collection from a raw list
// mapping. Items inherit the element kind as their decode hint.
func CollectionFromRaw(catalog *apischema.Catalog, raw map[string]interface{}, defaults *schema.GroupVersionKind) (model.Collection, error) {
	apiVersion, listKind := discriminators(raw, defaults)
	kind := strings.TrimSuffix(listKind, "List")
	if kind == listKind || kind == "" {
		return model.Collection{}, apierrors.NewUnknownKind(apiVersion, listKind)
	}
	def, err := catalog.Lookup(apiVersion, kind)
	if err != nil {
		return model.Collection{}, err
	}

	hint := def.GroupVersionKind()
	rawItems, _ := raw["items"].([]interface{})
	items := make([]model.Object, 0, len(rawItems))
	for i, rawItem := range rawItems {
		itemMap, ok := rawItem.(map[string]interface{})
		if !ok {
			return model.Collection{}, fmt.Errorf("item %d of %s is not a mapping", i, listKind)
		}
		obj, err := FromRaw(catalog, itemMap, &hint)
		if err != nil {
			return model.Collection{}, err
		}
		items = append(items, obj)
	}
	return model.NewCollection(def, items...), nil
}

// discriminators reads the kind and apiVersion keys, falling back to
// the defaults coordinates when the record omits one.
func discriminators(raw map[string]interface{}, defaults *schema.GroupVersionKind) (apiVersion, kind string) {
	kind, _ = raw["kind"].(string)
	apiVersion, _ = raw["apiVersion"].(string)
	if defaults != nil {
		if kind == "" {
			kind = defaults.Kind
		}
		if apiVersion == "" {
			gv := defaults.GroupVersion()
			if gv.Group == "" {
				apiVersion = gv.Version
			} else {
				apiVersion = gv.String()
			}
		}
	}
	return apiVersion, kind
}
