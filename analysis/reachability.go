package analysis

import (
	"context"
	"github.com/jt05610/hcpn"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"sort"
	"strings"
)

// StateSpace is the reachability graph of a module. Node IDs index Markings; the initial marking is node 0.
type StateSpace struct {
	*simple.DirectedGraph
	Markings []hcpn.Marking
	// Complete is false when exploration stopped at the marking limit.
	Complete bool
	// Growing lists markings whose token counts dominate one of their ancestors. A net with such markings may be
	// unbounded.
	Growing []int64
	keys    map[string]int64
	labels  map[[2]int64][]string
	out     map[int64]int
}

// Reachability explores the markings reachable from the engine's current marking, breadth first. Every enabled
// transition contributes one successor under the binding the engine chooses. At most limit markings are kept; a limit of
// zero or less explores everything. The engine's marking is restored before Reachability returns.
func Reachability(ctx context.Context, eng hcpn.Engine, limit int) (ss *StateSpace, err error) {
	initial := eng.Marking()
	defer func() {
		err = multierr.Append(err, eng.SetMarking(initial))
	}()
	net := &Net{Module: eng}
	ss = &StateSpace{
		DirectedGraph: simple.NewDirectedGraph(),
		Complete:      true,
		keys:          make(map[string]int64),
		labels:        make(map[[2]int64][]string),
		out:           make(map[int64]int),
	}
	parent := make(map[int64]int64)
	states := []State{net.State(initial)}
	ss.add(initial)
	queue := []int64{0}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := queue[0]
		queue = queue[1:]
		for _, t := range eng.Transitions() {
			if err := eng.SetMarking(ss.Markings[id]); err != nil {
				return nil, err
			}
			occ, err := eng.Bind(ctx, t)
			if err != nil {
				return nil, err
			}
			if occ == nil {
				continue
			}
			if err := eng.Fire(ctx, t); err != nil {
				return nil, err
			}
			next := eng.Marking()
			to, ok := ss.Lookup(next)
			if !ok {
				if limit > 0 && len(ss.Markings) >= limit {
					ss.Complete = false
					continue
				}
				to = ss.add(next)
				parent[to] = id
				states = append(states, net.State(next))
				for a, more := id, true; more; a, more = parent[a] {
					if states[to].Dominates(states[a]) {
						ss.Growing = append(ss.Growing, to)
						break
					}
				}
				queue = append(queue, to)
			}
			ss.link(id, to, t)
		}
	}
	return ss, nil
}

func (ss *StateSpace) add(m hcpn.Marking) int64 {
	id := int64(len(ss.Markings))
	ss.Markings = append(ss.Markings, m)
	ss.keys[markingKey(m)] = id
	ss.AddNode(simple.Node(id))
	return id
}

func (ss *StateSpace) link(from, to int64, transition string) {
	edge := [2]int64{from, to}
	ss.labels[edge] = append(ss.labels[edge], transition)
	ss.out[from]++
	if from != to && !ss.HasEdgeFromTo(from, to) {
		ss.SetEdge(ss.NewEdge(ss.Node(from), ss.Node(to)))
	}
}

func (ss *StateSpace) Len() int {
	return len(ss.Markings)
}

// Lookup finds the node of a marking. Token order within a place does not matter.
func (ss *StateSpace) Lookup(m hcpn.Marking) (int64, bool) {
	id, ok := ss.keys[markingKey(m)]
	return id, ok
}

// Transitions lists the transitions leading from one marking to another, including firings that leave the marking
// unchanged.
func (ss *StateSpace) Transitions(from, to int64) []string {
	return ss.labels[[2]int64{from, to}]
}

// Dead lists the markings that enable no transition.
func (ss *StateSpace) Dead() []int64 {
	var ret []int64
	for id := range ss.Markings {
		if ss.out[int64(id)] == 0 {
			ret = append(ret, int64(id))
		}
	}
	return ret
}

// Reachable reports whether marking to can be reached from marking from.
func (ss *StateSpace) Reachable(from, to int64) bool {
	if from == to {
		return true
	}
	f, t := ss.Node(from), ss.Node(to)
	if f == nil || t == nil {
		return false
	}
	return topo.PathExistsIn(ss.DirectedGraph, f, t)
}

// markingKey is a canonical text form of a marking: places sorted by name, tokens sorted within each place.
func markingKey(m hcpn.Marking) string {
	var b strings.Builder
	for _, place := range m.Places() {
		ms := m.Tokens(place)
		toks := make([]string, ms.Len())
		for i, tok := range ms {
			toks[i] = tok.String()
		}
		sort.Strings(toks)
		b.WriteString(place)
		b.WriteString("{")
		b.WriteString(strings.Join(toks, ","))
		b.WriteString("}")
	}
	return b.String()
}
