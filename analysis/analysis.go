// Package analysis computes properties of a hierarchy: incidence matrices and reachable markings of the modules and
// the levels of the substitution hierarchy.
package analysis

import (
	"fmt"
	"github.com/jt05610/hcpn"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
	"sort"
)

// Net is the uncoloured skeleton of a module: every arc moves one token.
type Net struct {
	hcpn.Module
}

// State counts the tokens of each place, in declaration order.
type State []float64

func (net *Net) arcNet(t, p string) float64 {
	ret := float64(0)
	for _, a := range net.Arcs() {
		if a.Transition != t || a.Place != p {
			continue
		}
		if a.Dir == hcpn.Out {
			ret += 1
		} else {
			ret -= 1
		}
	}
	return ret
}

// Incidence has one row per transition and one column per place, both in declaration order.
func (net *Net) Incidence() *mat.Dense {
	places := net.Places()
	transitions := net.Transitions()
	m := len(places)
	n := len(transitions)
	if m == 0 || n == 0 {
		return nil
	}
	d := make([]float64, m*n)
	for i, trans := range transitions {
		for j, place := range places {
			d[i*m+j] = net.arcNet(trans, place)
		}
	}
	return mat.NewDense(n, m, d)
}

// State counts the tokens of each place of the marking.
func (net *Net) State(marking hcpn.Marking) State {
	places := net.Places()
	ret := make(State, len(places))
	for i, p := range places {
		ret[i] = float64(marking.Tokens(p).Len())
	}
	return ret
}

// Dominates reports whether s has at least as many tokens as b in every place and more in at least one.
func (s State) Dominates(b State) bool {
	oneGt := false
	for i := range s {
		if s[i] < b[i] {
			return false
		}
		if s[i] > b[i] {
			oneGt = true
		}
	}
	return oneGt
}

// Levels gives every registered module its depth in the substitution hierarchy. Modules that substitute no transition
// are at level 0; a child sits one level below its deepest parent.
func Levels(m *hcpn.Model) (map[string]int, error) {
	names := m.Modules()
	index := make(map[string]int64, len(names))
	g := simple.NewDirectedGraph()
	for i, name := range names {
		index[name] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, s := range m.Substitutions().Links() {
		p, pok := index[s.Parent]
		c, cok := index[s.Child]
		if !pok || !cok || p == c {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(p), g.Node(c)))
	}
	sorted, err := topo.SortStabilized(g, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hcpn.ErrCyclicHierarchy, err)
	}
	level := make(map[string]int, len(names))
	for _, n := range sorted {
		parent := names[n.ID()]
		to := g.From(n.ID())
		for to.Next() {
			child := names[to.Node().ID()]
			if level[parent]+1 > level[child] {
				level[child] = level[parent] + 1
			}
		}
		if _, ok := level[parent]; !ok {
			level[parent] = 0
		}
	}
	return level, nil
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// Roots lists the level 0 modules in registration order.
func Roots(m *hcpn.Model) ([]string, error) {
	levels, err := Levels(m)
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, name := range m.Modules() {
		if levels[name] == 0 {
			ret = append(ret, name)
		}
	}
	return ret, nil
}

// Order lists modules children first: deeper levels come before shallower ones, ties in registration order.
func Order(m *hcpn.Model) ([]string, error) {
	levels, err := Levels(m)
	if err != nil {
		return nil, err
	}
	ret := m.Modules()
	sort.SliceStable(ret, func(i, j int) bool { return levels[ret[i]] > levels[ret[j]] })
	return ret, nil
}
