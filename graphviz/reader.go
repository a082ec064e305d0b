package graphviz

import (
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/jt05610/hcpn/viz"
	"io"
)

// Diagram is what Reader recovers from rendered dot: the nodes with their kinds and the edges between them. Cluster
// membership is not recovered.
type Diagram struct {
	Nodes []*viz.Node
	Edges []*viz.Edge
}

func (d *Diagram) Count(kind viz.NodeKind) int {
	n := 0
	for _, node := range d.Nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

func (d *Diagram) CountEdges(kind viz.EdgeKind) int {
	n := 0
	for _, e := range d.Edges {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reader loads dot written by Writer back for inspection.
type Reader struct {
	g     *cgraph.Graph
	nodes map[string]*viz.Node
}

func (r *Reader) Load(reader io.Reader) (*Diagram, error) {
	bytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	r.g, err = cgraph.ParseBytes(bytes)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.g.Close()
	}()
	d := &Diagram{}
	node := r.g.FirstNode()
	for node != nil {
		n := &viz.Node{
			ID:    node.Name(),
			Label: node.Get("label"),
			Kind:  nodeKind(node.Get("class")),
			Style: viz.NodeStyle{
				Shape:     viz.Shape(node.Get("shape")),
				Color:     node.Get("color"),
				FillColor: node.Get("fillcolor"),
			},
		}
		d.Nodes = append(d.Nodes, n)
		r.nodes[n.ID] = n
		node = r.g.NextNode(node)
	}
	for node = r.g.FirstNode(); node != nil; node = r.g.NextNode(node) {
		for edge := r.g.FirstOut(node); edge != nil; edge = r.g.NextOut(edge) {
			stroke := viz.Stroke(edge.Get("style"))
			d.Edges = append(d.Edges, &viz.Edge{
				ID:        edge.Name(),
				From:      node.Name(),
				To:        edge.Node().Name(),
				Label:     edge.Get("label"),
				Kind:      edgeKind(stroke),
				ToCluster: edge.Get("lhead"),
				Style: viz.EdgeStyle{
					Stroke:     stroke,
					Color:      edge.Get("color"),
					Undirected: edge.Get("dir") == "none",
				},
			})
		}
	}
	return d, nil
}

func nodeKind(class string) viz.NodeKind {
	for _, k := range []viz.NodeKind{viz.PlaceNode, viz.TransitionNode, viz.SubstitutionNode} {
		if k.String() == class {
			return k
		}
	}
	return viz.AnchorNode
}

func edgeKind(s viz.Stroke) viz.EdgeKind {
	switch s {
	case viz.Dashed:
		return viz.SubstitutionEdge
	case viz.Dotted:
		return viz.FusionEdge
	default:
		return viz.ArcEdge
	}
}

func Loader() *Reader {
	return &Reader{
		nodes: make(map[string]*viz.Node),
	}
}
