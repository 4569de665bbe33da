package validation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hawkowl/txkube/codec"
	"github.com/hawkowl/txkube/model"
)

// CELValidator evaluates admission rules compiled from CEL
// expressions. Compiled programs are cached per expression so repeated
// validation of the same rules stays cheap.
type CELValidator struct {
	env *cel.Env

	mu     sync.RWMutex
	cache  map[string]cel.Program
	global []compiledRule
	rules  map[schema.GroupVersionKind][]compiledRule
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// NewCELValidator creates a validator with an empty rule set.
func NewCELValidator() (*CELValidator, error) {
	env, err := cel.NewEnv(
		cel.Variable("self", cel.DynType),
		cel.HomogeneousAggregateLiterals(),
		cel.EagerlyValidateDeclarations(true),
		cel.DefaultUTCTimeZone(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &CELValidator{
		env:   env,
		cache: make(map[string]cel.Program),
		rules: make(map[schema.GroupVersionKind][]compiledRule),
	}, nil
}

// StandardValidator returns a validator carrying the standard rules for
// every kind.
func StandardValidator() (*CELValidator, error) {
	v, err := NewCELValidator()
	if err != nil {
		return nil, err
	}
	for _, rule := range StandardRules() {
		if err := v.AddGlobalRule(rule); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// AddGlobalRule installs a rule evaluated against every kind.
func (v *CELValidator) AddGlobalRule(rule Rule) error {
	compiled, err := v.compile(rule)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.global = append(v.global, compiled)
	return nil
}

// AddRule installs a rule evaluated only against the given kind.
func (v *CELValidator) AddRule(gvk schema.GroupVersionKind, rule Rule) error {
	compiled, err := v.compile(rule)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rules[gvk] = append(v.rules[gvk], compiled)
	return nil
}

// Validate evaluates every applicable rule against the object's raw
// mapping and reports the first violation.
func (v *CELValidator) Validate(ctx context.Context, obj model.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v.mu.RLock()
	applicable := make([]compiledRule, 0, len(v.global)+len(v.rules[obj.GroupVersionKind()]))
	applicable = append(applicable, v.global...)
	applicable = append(applicable, v.rules[obj.GroupVersionKind()]...)
	v.mu.RUnlock()

	raw := codec.ToRaw(obj)
	for _, compiled := range applicable {
		ok, err := evalBool(compiled.program, raw)
		if err != nil {
			return fmt.Errorf("failed to evaluate rule %q: %w", compiled.rule.Expression, err)
		}
		if !ok {
			return fmt.Errorf("%s %q is invalid: %s", obj.Kind(), obj.Name(), compiled.rule.Message)
		}
	}
	return nil
}

// compile parses, checks and caches the rule's program.
func (v *CELValidator) compile(rule Rule) (compiledRule, error) {
	v.mu.RLock()
	cached, ok := v.cache[rule.Expression]
	v.mu.RUnlock()
	if ok {
		return compiledRule{rule: rule, program: cached}, nil
	}

	ast, issues := v.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return compiledRule{}, fmt.Errorf("failed to compile CEL expression %q: %w", rule.Expression, issues.Err())
	}
	program, err := v.env.Program(ast)
	if err != nil {
		return compiledRule{}, fmt.Errorf("failed to create CEL program for %q: %w", rule.Expression, err)
	}

	v.mu.Lock()
	v.cache[rule.Expression] = program
	v.mu.Unlock()
	return compiledRule{rule: rule, program: program}, nil
}

func evalBool(program cel.Program, raw map[string]interface{}) (bool, error) {
	result, _, err := program.Eval(map[string]interface{}{"self": raw})
	if err != nil {
		return false, err
	}
	if boolVal, ok := result.(types.Bool); ok {
		return bool(boolVal), nil
	}
	return false, fmt.Errorf("expression returned non-boolean result: %T", result)
}
