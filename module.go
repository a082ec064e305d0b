package hcpn

import (
	"context"
)

type Direction int

const (
	// In arcs run from a place into a transition.
	In Direction = iota
	// Out arcs run from a transition into a place.
	Out
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// Arc connects a place and a transition of a single module. Expression is opaque to the hierarchy.
type Arc struct {
	Place      string
	Transition string
	Expression string
	Dir        Direction
}

func (a Arc) Src() string {
	if a.Dir == In {
		return a.Place
	}
	return a.Transition
}

func (a Arc) Dest() string {
	if a.Dir == In {
		return a.Transition
	}
	return a.Place
}

func (a Arc) String() string {
	return a.Src() + " -> " + a.Dest()
}

// Domain is the set of token values a place accepts.
type Domain interface {
	Name() string
	Equal(other Domain) bool
	Contains(value any) bool
}

// Module is a single-level net registered in a hierarchy. The hierarchy only looks at its structure and its marking.
type Module interface {
	Places() []string
	Transitions() []string
	Arcs() []Arc
	// Domain returns the declared token domain of a place. ok is false when the place is unknown or untyped.
	Domain(place string) (d Domain, ok bool)
	Marking() Marking
	SetMarking(m Marking) error
}

// Occurrence describes one enabled binding of a transition and the tokens firing it would take from each input place.
type Occurrence struct {
	Transition string
	Binding    map[string]any
	Consumed   map[string]Multiset
}

// Engine is a module that can also evaluate and fire its own transitions.
type Engine interface {
	Module
	// Bind finds an enabled binding for the transition. A nil occurrence with a nil error means not enabled.
	Bind(ctx context.Context, transition string) (*Occurrence, error)
	Fire(ctx context.Context, transition string) error
}

// PlaceRef names a place of a registered module.
type PlaceRef struct {
	Module string `yaml:"module"`
	Place  string `yaml:"place"`
}

func (r PlaceRef) String() string {
	return r.Module + "." + r.Place
}

func hasName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// InputArcs returns the arcs of m that feed the transition, in declaration order.
func InputArcs(m Module, transition string) []Arc {
	return arcsOf(m, transition, In)
}

// OutputArcs returns the arcs of m leaving the transition, in declaration order.
func OutputArcs(m Module, transition string) []Arc {
	return arcsOf(m, transition, Out)
}

func arcsOf(m Module, transition string, dir Direction) []Arc {
	var ret []Arc
	for _, a := range m.Arcs() {
		if a.Transition == transition && a.Dir == dir {
			ret = append(ret, a)
		}
	}
	return ret
}
