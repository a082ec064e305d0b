package viz

import (
	"fmt"
	"github.com/jt05610/hcpn"
	"go.uber.org/multierr"
)

type renderer struct {
	name  string
	style Style
	model *hcpn.Model
	graph *Graph
	// places and transitions map module -> name -> node ID.
	places      map[string]map[string]*Node
	transitions map[string]map[string]*Node
}

// Render builds the declarative graph of a hierarchy. markings holds the marking to show for each module; a missing
// module is drawn with an empty marking. Render reads its inputs only and returns the same graph for the same inputs.
// It fails when the model does not validate.
func Render(model *hcpn.Model, markings map[string]hcpn.Marking, opts ...Option) (*Graph, error) {
	var err error
	for _, v := range hcpn.Validate(model) {
		err = multierr.Append(err, v)
	}
	if err != nil {
		return nil, err
	}
	r := &renderer{
		name:        "hcpn",
		style:       DefaultStyle(),
		model:       model,
		places:      make(map[string]map[string]*Node),
		transitions: make(map[string]map[string]*Node),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.graph = &Graph{Name: r.name}
	for i, name := range model.Modules() {
		if err := r.module(i, name, markings[name]); err != nil {
			return nil, err
		}
	}
	for i, s := range model.Substitutions().Links() {
		r.substitution(i, s)
	}
	if r.style.ShowFusion {
		for i, fc := range model.Fusions().Classes() {
			r.fusion(i, fc)
		}
	}
	return r.graph, nil
}

func (r *renderer) module(i int, name string, marking hcpn.Marking) error {
	mod, err := r.model.Lookup(name)
	if err != nil {
		return err
	}
	c := &Cluster{
		ID:     fmt.Sprintf("cluster_m%d", i),
		Module: name,
		Label:  name,
	}
	r.places[name] = make(map[string]*Node)
	r.transitions[name] = make(map[string]*Node)
	for j, p := range mod.Places() {
		n := &Node{
			ID:    fmt.Sprintf("m%d_p%d", i, j),
			Label: placeLabel(p, marking.Tokens(p)),
			Kind:  PlaceNode,
			Style: r.style.Place,
		}
		c.Nodes = append(c.Nodes, n)
		r.places[name][p] = n
	}
	for j, t := range mod.Transitions() {
		n := &Node{
			ID:    fmt.Sprintf("m%d_t%d", i, j),
			Label: t,
			Kind:  TransitionNode,
			Style: r.style.Transition,
		}
		if r.model.IsSubstitution(name, t) {
			n.Kind = SubstitutionNode
			n.Style = r.style.Substitution
		}
		c.Nodes = append(c.Nodes, n)
		r.transitions[name][t] = n
	}
	if len(c.Nodes) == 0 {
		c.Nodes = append(c.Nodes, &Node{
			ID:    fmt.Sprintf("m%d_anchor", i),
			Kind:  AnchorNode,
			Style: NodeStyle{Shape: Point},
		})
	}
	r.graph.Clusters = append(r.graph.Clusters, c)
	for j, a := range mod.Arcs() {
		p, pok := r.places[name][a.Place]
		t, tok := r.transitions[name][a.Transition]
		if !pok || !tok {
			return fmt.Errorf("module %s: arc %s references a node the module does not declare", name, a)
		}
		e := &Edge{
			ID:    fmt.Sprintf("m%d_a%d", i, j),
			From:  p.ID,
			To:    t.ID,
			Label: a.Expression,
			Kind:  ArcEdge,
			Style: r.style.Arc,
		}
		if a.Dir == hcpn.Out {
			e.From, e.To = t.ID, p.ID
		}
		r.graph.Edges = append(r.graph.Edges, e)
	}
	return nil
}

func placeLabel(name string, ms hcpn.Multiset) string {
	if ms.Len() == 0 {
		return name
	}
	return name + "\n" + ms.String()
}

// substitution links the substitution transition to the child. A child with exactly one entry port gets the edge on
// that port; otherwise the edge ends on the child's cluster boundary.
func (r *renderer) substitution(i int, s *hcpn.Substitution) {
	from := r.transitions[s.Parent][s.Transition]
	child := r.graph.Cluster(s.Child)
	e := &Edge{
		ID:    fmt.Sprintf("s%d", i),
		From:  from.ID,
		Label: s.Child,
		Kind:  SubstitutionEdge,
		Style: r.style.SubstitutionLink,
	}
	entries := r.entryPorts(s)
	if len(entries) == 1 {
		e.To = entries[0].ID
	} else {
		e.To = child.Nodes[0].ID
		e.ToCluster = child.ID
	}
	r.graph.Edges = append(r.graph.Edges, e)
}

func (r *renderer) entryPorts(s *hcpn.Substitution) []*Node {
	parent, _ := r.model.Lookup(s.Parent)
	var ret []*Node
	for _, a := range hcpn.InputArcs(parent, s.Transition) {
		n, ok := r.places[s.Child][s.Port(a.Place)]
		if !ok {
			continue
		}
		dup := false
		for _, x := range ret {
			dup = dup || x == n
		}
		if !dup {
			ret = append(ret, n)
		}
	}
	return ret
}

// fusion colours the members of a class alike and chains them with undirected edges.
func (r *renderer) fusion(i int, fc *hcpn.FusionClass) {
	color := ""
	if len(r.style.FusionColors) > 0 {
		color = r.style.FusionColors[i%len(r.style.FusionColors)]
	}
	var prev *Node
	for j, ref := range fc.Members {
		n := r.places[ref.Module][ref.Place]
		if color != "" {
			n.Style.FillColor = color
		}
		if prev != nil {
			r.graph.Edges = append(r.graph.Edges, &Edge{
				ID:    fmt.Sprintf("f%d_%d", i, j),
				From:  prev.ID,
				To:    n.ID,
				Label: fc.ID,
				Kind:  FusionEdge,
				Style: r.style.FusionLink,
			})
		}
		prev = n
	}
}
