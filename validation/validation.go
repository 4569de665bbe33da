// Package validation checks resource values against admission rules
// expressed in CEL, the way the server's admission chain would before
// persisting a create or replace.
package validation

import (
	"context"

	"github.com/hawkowl/txkube/model"
)

// Validator checks one object and reports the first violated rule.
type Validator interface {
	Validate(ctx context.Context, obj model.Object) error
}

// Rule is one admission constraint. The expression is evaluated with
// the variable `self` bound to the object's raw wire mapping and must
// produce a boolean; Message is what callers see when it produces
// false.
type Rule struct {
	Expression string
	Message    string
}

// StandardRules are the constraints every resource must satisfy before
// the memory client stores it, mirroring what the real server enforces
// on every kind.
func StandardRules() []Rule {
	return []Rule{
		{
			Expression: `has(self.metadata) && (has(self.metadata.name) || has(self.metadata.generateName))`,
			Message:    "metadata.name or metadata.generateName is required",
		},
	}
}
