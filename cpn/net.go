// Package cpn is a single-level coloured Petri net engine. Guards and arc expressions are expr-lang expressions
// evaluated against a binding of the transition's variables. A Net satisfies hcpn.Engine so it can be composed into a
// hierarchy.
package cpn

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jt05610/hcpn"
	"sync"
)

var _ hcpn.Engine = (*Net)(nil)

var (
	ErrNotEnabled   = errors.New("transition is not enabled")
	ErrWrongNodes   = errors.New("cannot connect two places or two transitions")
	ErrArcExists    = errors.New("arc already exists")
	ErrUnknownNode  = errors.New("node not in net")
	ErrUnknownPlace = errors.New("unknown place")
)

func ID() string {
	return uuid.New().String()
}

type Node interface {
	IsNode()
	String() string
}

// Place holds tokens of one colour set.
type Place struct {
	ID       string
	Name     string
	ColorSet *ColorSet
}

func NewPlace(name string, cs *ColorSet) *Place {
	return &Place{
		ID:       ID(),
		Name:     name,
		ColorSet: cs,
	}
}

func (p *Place) IsNode() {}

func (p *Place) String() string { return p.Name }

// Transition fires when its guard holds for some binding of its variables to token values.
type Transition struct {
	ID        string
	Name      string
	Guard     string
	Variables []string
}

func NewTransition(name string, guard ...string) *Transition {
	t := &Transition{
		ID:   ID(),
		Name: name,
	}
	if len(guard) > 0 {
		t.Guard = guard[0]
	}
	return t
}

func (t *Transition) WithVariables(vars ...string) *Transition {
	t.Variables = append(t.Variables, vars...)
	return t
}

func (t *Transition) IsNode() {}

func (t *Transition) String() string { return t.Name }

// Arc connects a place and a transition. Expression is evaluated against the firing binding.
type Arc struct {
	ID         string
	Place      *Place
	Transition *Transition
	Expression string
	Dir        hcpn.Direction
}

// NewArc creates an arc between a place and a transition, in either direction. It panics when both ends are the same
// kind of node.
func NewArc(from, to Node, expression string) *Arc {
	a, err := newArc(from, to, expression)
	if err != nil {
		panic(err)
	}
	return a
}

func newArc(from, to Node, expression string) (*Arc, error) {
	a := &Arc{
		ID:         ID(),
		Expression: expression,
	}
	switch f := from.(type) {
	case *Place:
		t, ok := to.(*Transition)
		if !ok {
			return nil, ErrWrongNodes
		}
		a.Place, a.Transition, a.Dir = f, t, hcpn.In
	case *Transition:
		p, ok := to.(*Place)
		if !ok {
			return nil, ErrWrongNodes
		}
		a.Place, a.Transition, a.Dir = p, f, hcpn.Out
	default:
		return nil, ErrWrongNodes
	}
	return a, nil
}

func (a *Arc) String() string {
	if a.Dir == hcpn.In {
		return a.Place.Name + " -> " + a.Transition.Name
	}
	return a.Transition.Name + " -> " + a.Place.Name
}

// Net is a coloured Petri net together with its current marking.
type Net struct {
	ID          string
	Name        string
	places      []*Place
	transitions []*Transition
	arcs        []*Arc
	marking     hcpn.Marking
	eval        *evaluator
	mu          sync.Mutex
}

func NewNet(name string) *Net {
	return &Net{
		ID:      ID(),
		Name:    name,
		marking: make(hcpn.Marking),
		eval:    newEvaluator(),
	}
}

func (n *Net) WithPlaces(places ...*Place) *Net {
	n.places = append(n.places, places...)
	return n
}

func (n *Net) WithTransitions(transitions ...*Transition) *Net {
	n.transitions = append(n.transitions, transitions...)
	return n
}

func (n *Net) WithArcs(arcs ...*Arc) *Net {
	n.arcs = append(n.arcs, arcs...)
	return n
}

// WithFunctions makes user functions and constants available to guards and arc expressions.
func (n *Net) WithFunctions(fns map[string]any) *Net {
	for k, v := range fns {
		n.eval.functions[k] = v
	}
	return n
}

// AddArc connects two nodes that already belong to the net.
func (n *Net) AddArc(from, to Node, expression string) (*Arc, error) {
	a, err := newArc(from, to, expression)
	if err != nil {
		return nil, err
	}
	if n.Place(a.Place.Name) != a.Place || n.Transition(a.Transition.Name) != a.Transition {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, a)
	}
	for _, other := range n.arcs {
		if other.Place == a.Place && other.Transition == a.Transition && other.Dir == a.Dir {
			return nil, fmt.Errorf("%w: %s", ErrArcExists, a)
		}
	}
	n.arcs = append(n.arcs, a)
	return a, nil
}

func (n *Net) Place(name string) *Place {
	for _, p := range n.places {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (n *Net) Transition(name string) *Transition {
	for _, t := range n.transitions {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (n *Net) Places() []string {
	ret := make([]string, len(n.places))
	for i, p := range n.places {
		ret[i] = p.Name
	}
	return ret
}

func (n *Net) Transitions() []string {
	ret := make([]string, len(n.transitions))
	for i, t := range n.transitions {
		ret[i] = t.Name
	}
	return ret
}

func (n *Net) Arcs() []hcpn.Arc {
	ret := make([]hcpn.Arc, len(n.arcs))
	for i, a := range n.arcs {
		ret[i] = hcpn.Arc{
			Place:      a.Place.Name,
			Transition: a.Transition.Name,
			Expression: a.Expression,
			Dir:        a.Dir,
		}
	}
	return ret
}

func (n *Net) Domain(place string) (hcpn.Domain, bool) {
	p := n.Place(place)
	if p == nil || p.ColorSet == nil {
		return nil, false
	}
	return p.ColorSet, true
}

func (n *Net) Marking() hcpn.Marking {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.marking.Clone()
}

// SetMarking replaces the whole marking. Every token must belong to its place's colour set.
func (n *Net) SetMarking(m hcpn.Marking) error {
	if err := n.check(m); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.marking = m.Clone()
	return nil
}

// Mark adds tokens to a place.
func (n *Net) Mark(place string, values ...any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	next := n.marking.Clone()
	next[place] = next[place].Add(values...)
	if err := n.check(hcpn.Marking{place: next[place]}); err != nil {
		return err
	}
	n.marking = next
	return nil
}

func (n *Net) check(m hcpn.Marking) error {
	for place, ms := range m {
		p := n.Place(place)
		if p == nil {
			return fmt.Errorf("%w: %s in net %s", ErrUnknownPlace, place, n.Name)
		}
		if p.ColorSet == nil {
			continue
		}
		for _, tok := range ms {
			if !p.ColorSet.Contains(tok.Value) {
				return fmt.Errorf("place %s: %w", place, &InvalidTokenValueError{ColorSet: p.ColorSet, Value: tok.Value})
			}
		}
	}
	return nil
}

func (n *Net) inputs(t *Transition) []*Arc {
	var ret []*Arc
	for _, a := range n.arcs {
		if a.Transition == t && a.Dir == hcpn.In {
			ret = append(ret, a)
		}
	}
	return ret
}

func (n *Net) outputs(t *Transition) []*Arc {
	var ret []*Arc
	for _, a := range n.arcs {
		if a.Transition == t && a.Dir == hcpn.Out {
			ret = append(ret, a)
		}
	}
	return ret
}

// Enabled reports whether some binding enables the transition.
func (n *Net) Enabled(ctx context.Context, transition string) (bool, error) {
	occ, err := n.Bind(ctx, transition)
	return occ != nil, err
}

// Available lists the enabled transitions in declaration order.
func (n *Net) Available(ctx context.Context) ([]string, error) {
	var ret []string
	for _, t := range n.transitions {
		ok, err := n.Enabled(ctx, t.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			ret = append(ret, t.Name)
		}
	}
	return ret, nil
}

func (n *Net) Bind(_ context.Context, transition string) (*hcpn.Occurrence, error) {
	t := n.Transition(transition)
	if t == nil {
		return nil, fmt.Errorf("%w: %s in net %s", hcpn.ErrUnknownTransition, transition, n.Name)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bind(t)
}

// Fire fires the transition under the first enabled binding.
func (n *Net) Fire(_ context.Context, transition string) error {
	t := n.Transition(transition)
	if t == nil {
		return fmt.Errorf("%w: %s in net %s", hcpn.ErrUnknownTransition, transition, n.Name)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	occ, err := n.bind(t)
	if err != nil {
		return err
	}
	if occ == nil {
		return fmt.Errorf("%w: %s", ErrNotEnabled, transition)
	}
	next := n.marking.Clone()
	for place, ms := range occ.Consumed {
		rest, err := next.Tokens(place).Subtract(ms)
		if err != nil {
			return err
		}
		next[place] = rest
	}
	for _, a := range n.outputs(t) {
		vals, err := n.eval.values(a.Expression, occ.Binding)
		if err != nil {
			return fmt.Errorf("arc %s: %w", a, err)
		}
		if a.Place.ColorSet != nil {
			for _, v := range vals {
				if !a.Place.ColorSet.Contains(v) {
					return fmt.Errorf("arc %s: %w", a, &InvalidTokenValueError{ColorSet: a.Place.ColorSet, Value: v})
				}
			}
		}
		next[a.Place.Name] = next[a.Place.Name].Add(vals...)
	}
	n.marking = next
	return nil
}

func (n *Net) String() string {
	return fmt.Sprintf("CPN %s (%d places, %d transitions, %d arcs)\n%s",
		n.Name, len(n.places), len(n.transitions), len(n.arcs), n.marking)
}
