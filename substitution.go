package hcpn

import (
	"fmt"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"strings"
)

// Substitution says that firing Transition in Parent is realized by running Child. Ports maps socket places of
// Parent to port places of Child; sockets without an entry bind to the child place of the same name.
type Substitution struct {
	Parent     string
	Transition string
	Child      string
	Ports      map[string]string
}

func (s *Substitution) String() string {
	return fmt.Sprintf("%s.%s -> %s", s.Parent, s.Transition, s.Child)
}

// Port returns the child place bound to the given socket place of the parent.
func (s *Substitution) Port(socket string) string {
	if p, ok := s.Ports[socket]; ok {
		return p
	}
	return socket
}

type LinkOption func(s *Substitution)

// WithPort binds a socket place of the parent module to a port place of the child module.
func WithPort(socket, port string) LinkOption {
	return func(s *Substitution) {
		if s.Ports == nil {
			s.Ports = make(map[string]string)
		}
		s.Ports[socket] = port
	}
}

type transitionKey struct {
	module     string
	transition string
}

// SubstitutionTable maps (module, transition) pairs to the child module that realizes them.
type SubstitutionTable struct {
	registry *Registry
	links    []*Substitution
	index    map[transitionKey]*Substitution
	version  *uint64
}

func NewSubstitutionTable(r *Registry) *SubstitutionTable {
	return newSubstitutionTable(r, r.version)
}

func newSubstitutionTable(r *Registry, version *uint64) *SubstitutionTable {
	return &SubstitutionTable{
		registry: r,
		index:    make(map[transitionKey]*Substitution),
		version:  version,
	}
}

func (st *SubstitutionTable) Link(parent, transition, child string, opts ...LinkOption) error {
	pm, err := st.registry.Lookup(parent)
	if err != nil {
		return err
	}
	cm, err := st.registry.Lookup(child)
	if err != nil {
		return err
	}
	if !hasName(pm.Transitions(), transition) {
		return fmt.Errorf("%w: %s in module %s", ErrUnknownTransition, transition, parent)
	}
	key := transitionKey{module: parent, transition: transition}
	if existing, ok := st.index[key]; ok {
		return fmt.Errorf("%w: %s already substitutes %s", ErrDuplicateSubstitution, existing, existing.Child)
	}
	if st.reaches(child, parent) {
		return fmt.Errorf("%w: linking %s.%s to %s closes a cycle", ErrCyclicHierarchy, parent, transition, child)
	}
	s := &Substitution{
		Parent:     parent,
		Transition: transition,
		Child:      child,
	}
	for _, opt := range opts {
		opt(s)
	}
	for socket, port := range s.Ports {
		if !hasName(pm.Places(), socket) {
			return fmt.Errorf("%w: socket %s.%s", ErrUnknownPlace, parent, socket)
		}
		if !hasName(cm.Places(), port) {
			return fmt.Errorf("%w: port %s.%s", ErrUnknownPlace, child, port)
		}
	}
	st.links = append(st.links, s)
	st.index[key] = s
	*st.version++
	return nil
}

// Resolve returns the child module realizing the transition. ok is false for ordinary transitions.
func (st *SubstitutionTable) Resolve(parent, transition string) (child string, ok bool) {
	s, ok := st.index[transitionKey{module: parent, transition: transition}]
	if !ok {
		return "", false
	}
	return s.Child, true
}

func (st *SubstitutionTable) IsSubstitution(parent, transition string) bool {
	_, ok := st.index[transitionKey{module: parent, transition: transition}]
	return ok
}

func (st *SubstitutionTable) Get(parent, transition string) (*Substitution, bool) {
	s, ok := st.index[transitionKey{module: parent, transition: transition}]
	return s, ok
}

// Links returns every substitution in the order it was declared.
func (st *SubstitutionTable) Links() []*Substitution {
	ret := make([]*Substitution, len(st.links))
	copy(ret, st.links)
	return ret
}

// Children returns the distinct child modules of a module in declaration order.
func (st *SubstitutionTable) Children(module string) []string {
	var ret []string
	for _, s := range st.links {
		if s.Parent == module && !hasName(ret, s.Child) {
			ret = append(ret, s.Child)
		}
	}
	return ret
}

func (st *SubstitutionTable) reaches(from, to string) bool {
	if from == to {
		return true
	}
	g := substitutionGraph(st.registry, st.links)
	f, t := st.registry.index(from), st.registry.index(to)
	return topo.PathExistsIn(g, g.Node(f), g.Node(t))
}

// substitutionGraph builds the parent -> child graph. Node IDs are registry positions.
func substitutionGraph(r *Registry, links []*Substitution) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for i := range r.names {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, s := range links {
		p, c := r.index(s.Parent), r.index(s.Child)
		if p < 0 || c < 0 || p == c {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(p), g.Node(c)))
	}
	return g
}

// cycles lists every elementary cycle of the substitution graph as module names, first name repeated last.
func cycles(r *Registry, links []*Substitution) [][]string {
	var ret [][]string
	for _, s := range links {
		if s.Parent == s.Child && r.Has(s.Parent) {
			ret = append(ret, []string{s.Parent, s.Parent})
		}
	}
	g := substitutionGraph(r, links)
	for _, cyc := range topo.DirectedCyclesIn(g) {
		ret = append(ret, nodeNames(r, cyc))
	}
	return ret
}

func nodeNames(r *Registry, nodes []graph.Node) []string {
	ret := make([]string, len(nodes))
	for i, n := range nodes {
		ret[i] = r.names[n.ID()]
	}
	return ret
}

func cycleString(cyc []string) string {
	return strings.Join(cyc, " -> ")
}
