package codec

import (
	"encoding/json"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hawkowl/txkube/apischema"
	"github.com/hawkowl/txkube/model"
)

// Encode marshals a typed value to its JSON wire form.
func Encode(obj model.Object) ([]byte, error) {
	data, err := json.Marshal(ToRaw(obj))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", obj.Kind(), err)
	}
	return data, nil
}

// Decode unmarshals a JSON wire record into a typed value.
func Decode(catalog *apischema.Catalog, data []byte, defaults *schema.GroupVersionKind) (model.Object, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Object{}, fmt.Errorf("failed to unmarshal wire record: %w", err)
	}
	return FromRaw(catalog, raw, defaults)
}

// EncodeCollection marshals a collection to its JSON wire form.
func EncodeCollection(c model.Collection) ([]byte, error) {
	data, err := json.Marshal(CollectionToRaw(c))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", c.ListKind(), err)
	}
	return data, nil
}

// DecodeCollection unmarshals a JSON list record into a typed
// collection.
func DecodeCollection(catalog *apischema.Catalog, data []byte, defaults *schema.GroupVersionKind) (model.Collection, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Collection{}, fmt.Errorf("failed to unmarshal wire record: %w", err)
	}
	return CollectionFromRaw(catalog, raw, defaults)
}
