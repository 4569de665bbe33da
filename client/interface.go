package client

import (
	"context"

	"github.com/hawkowl/txkube/apischema"
	"github.com/hawkowl/txkube/model"
)

// Interface is the client capability contract. Every operation is
// fallible; callers branch on the error kind (apierrors predicates)
// rather than on message text.
type Interface interface {
	// Create persists a new object and returns it as stored, with
	// server-assigned defaults filled in.
	Create(ctx context.Context, obj model.Object) (model.Object, error)

	// Get retrieves the current state of the object identified by the
	// given value's kind, namespace and name. An empty shell from
	// model.Named works as well as a full instance.
	Get(ctx context.Context, obj model.Object) (model.Object, error)

	// List retrieves the collection of all objects of one kind, in the
	// canonical (namespace, name) order.
	List(ctx context.Context, def *apischema.KindDefinition) (model.Collection, error)

	// Replace swaps old for new. The two must identify the same object;
	// replacing an object that does not exist is an error.
	Replace(ctx context.Context, old, new model.Object) (model.Object, error)

	// Delete removes the object identified by the given value.
	Delete(ctx context.Context, obj model.Object) error
}
