package cpn

import (
	"github.com/jt05610/hcpn"
)

// variables returns the declared variables of t followed by input arcs that are bare variable names.
func (n *Net) variables(t *Transition) []string {
	var ret []string
	seen := make(map[string]bool)
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			ret = append(ret, v)
		}
	}
	for _, v := range t.Variables {
		add(v)
	}
	for _, a := range n.inputs(t) {
		if _, fn := n.eval.functions[a.Expression]; !fn && isIdent(a.Expression) {
			add(a.Expression)
		}
	}
	return ret
}

// candidates lists the distinct values a variable may take. Variables named by an input arc only take values from
// that arc's place; other variables take any value found in an input place.
func (n *Net) candidates(t *Transition, v string) []any {
	var ret []any
	add := func(ms hcpn.Multiset) {
		for _, tok := range ms {
			if !containsValue(ret, tok.Value) {
				ret = append(ret, tok.Value)
			}
		}
	}
	bound := false
	for _, a := range n.inputs(t) {
		if a.Expression == v {
			add(n.marking.Tokens(a.Place.Name))
			bound = true
		}
	}
	if bound {
		return ret
	}
	for _, a := range n.inputs(t) {
		add(n.marking.Tokens(a.Place.Name))
	}
	return ret
}

// bind searches variable assignments depth first, in token order, and returns the first enabled occurrence.
func (n *Net) bind(t *Transition) (*hcpn.Occurrence, error) {
	vars := n.variables(t)
	if err := n.compileAll(t); err != nil {
		return nil, err
	}
	pools := make([][]any, len(vars))
	for i, v := range vars {
		pools[i] = n.candidates(t, v)
	}
	binding := make(map[string]any, len(vars))
	var search func(i int) *hcpn.Occurrence
	search = func(i int) *hcpn.Occurrence {
		if i == len(vars) {
			return n.tryBinding(t, binding)
		}
		for _, val := range pools[i] {
			binding[vars[i]] = val
			if occ := search(i + 1); occ != nil {
				return occ
			}
		}
		delete(binding, vars[i])
		return nil
	}
	return search(0), nil
}

func (n *Net) compileAll(t *Transition) error {
	if t.Guard != "" {
		if _, err := n.eval.compile(t.Guard); err != nil {
			return err
		}
	}
	for _, a := range n.arcs {
		if a.Transition != t {
			continue
		}
		if _, err := n.eval.compile(a.Expression); err != nil {
			return err
		}
	}
	return nil
}

// tryBinding tests one complete binding. Runtime evaluation errors, such as comparing a string token with a number, rule
// the binding out rather than failing the search.
func (n *Net) tryBinding(t *Transition, binding map[string]any) *hcpn.Occurrence {
	ok, err := n.eval.guard(t.Guard, binding)
	if err != nil || !ok {
		return nil
	}
	consumed := make(map[string]hcpn.Multiset)
	for _, a := range n.inputs(t) {
		vals, err := n.eval.values(a.Expression, binding)
		if err != nil {
			return nil
		}
		consumed[a.Place.Name] = consumed[a.Place.Name].Add(vals...)
	}
	for place, ms := range consumed {
		if !n.marking.Tokens(place).Contains(ms) {
			return nil
		}
	}
	b := make(map[string]any, len(binding))
	for k, v := range binding {
		b[k] = v
	}
	return &hcpn.Occurrence{
		Transition: t.Name,
		Binding:    b,
		Consumed:   consumed,
	}
}

func containsValue(vals []any, v any) bool {
	for _, x := range vals {
		if hcpn.SameValue(x, v) {
			return true
		}
	}
	return false
}
