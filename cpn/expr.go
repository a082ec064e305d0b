package cpn

import (
	"fmt"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"unicode"
)

// evaluator compiles guard and arc expressions once and runs them against a binding.
type evaluator struct {
	functions map[string]any
	programs  map[string]*vm.Program
}

func newEvaluator() *evaluator {
	return &evaluator{
		functions: make(map[string]any),
		programs:  make(map[string]*vm.Program),
	}
}

func (e *evaluator) compile(src string) (*vm.Program, error) {
	if p, ok := e.programs[src]; ok {
		return p, nil
	}
	p, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	e.programs[src] = p
	return p, nil
}

func (e *evaluator) env(binding map[string]any) map[string]any {
	env := make(map[string]any, len(e.functions)+len(binding))
	for k, v := range e.functions {
		env[k] = v
	}
	for k, v := range binding {
		env[k] = v
	}
	return env
}

func (e *evaluator) run(src string, binding map[string]any) (any, error) {
	p, err := e.compile(src)
	if err != nil {
		return nil, err
	}
	return expr.Run(p, e.env(binding))
}

func (e *evaluator) guard(src string, binding map[string]any) (bool, error) {
	if src == "" {
		return true, nil
	}
	ret, err := e.run(src, binding)
	if err != nil {
		return false, err
	}
	ok, isBool := ret.(bool)
	if !isBool {
		return false, fmt.Errorf("guard %q returned %T, not bool", src, ret)
	}
	return ok, nil
}

// values evaluates an arc expression. A list result stands for several tokens.
func (e *evaluator) values(src string, binding map[string]any) ([]any, error) {
	ret, err := e.run(src, binding)
	if err != nil {
		return nil, err
	}
	if list, ok := ret.([]any); ok {
		return list, nil
	}
	return []any{ret}, nil
}

// isIdent reports whether an arc expression is a bare variable name.
func isIdent(s string) bool {
	if s == "" || s == "true" || s == "false" || s == "nil" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
