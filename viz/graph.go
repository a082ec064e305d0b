// Package viz turns a hierarchical net and a marking per module into a declarative graph: clusters, nodes, edges and
// styles. It carries no coordinates; laying the graph out is left to a rendering backend such as the graphviz package.
package viz

type NodeKind int

const (
	PlaceNode NodeKind = iota
	TransitionNode
	SubstitutionNode
	// AnchorNode stands in for an empty cluster so cross-cluster edges have something to attach to.
	AnchorNode
)

func (k NodeKind) String() string {
	switch k {
	case PlaceNode:
		return "place"
	case TransitionNode:
		return "transition"
	case SubstitutionNode:
		return "substitution"
	default:
		return "anchor"
	}
}

type EdgeKind int

const (
	ArcEdge EdgeKind = iota
	SubstitutionEdge
	FusionEdge
)

func (k EdgeKind) String() string {
	switch k {
	case ArcEdge:
		return "arc"
	case SubstitutionEdge:
		return "substitution"
	default:
		return "fusion"
	}
}

// Shape and Stroke values use graphviz vocabulary, which most backends understand.
type Shape string

const (
	Circle  Shape = "circle"
	Ellipse Shape = "ellipse"
	Box     Shape = "box"
	Point   Shape = "point"
)

type Stroke string

const (
	Solid  Stroke = "solid"
	Dashed Stroke = "dashed"
	Dotted Stroke = "dotted"
	Bold   Stroke = "bold"
)

// NodeStyle is how a node should look.
type NodeStyle struct {
	Shape     Shape  `yaml:"shape"`
	Color     string `yaml:"color"`
	FillColor string `yaml:"fillColor"`
}

// EdgeStyle is how an edge should look. Undirected edges are drawn without arrow heads.
type EdgeStyle struct {
	Stroke     Stroke `yaml:"stroke"`
	Color      string `yaml:"color"`
	Undirected bool   `yaml:"undirected"`
}

type Node struct {
	ID    string
	Label string
	Kind  NodeKind
	Style NodeStyle
}

type Cluster struct {
	ID     string
	Module string
	Label  string
	Nodes  []*Node
}

type Edge struct {
	ID    string
	From  string
	To    string
	Label string
	Kind  EdgeKind
	Style EdgeStyle
	// ToCluster is set when the edge points at a whole cluster rather than at To itself.
	ToCluster string
}

type Graph struct {
	Name     string
	Clusters []*Cluster
	Edges    []*Edge
}

func (g *Graph) Cluster(module string) *Cluster {
	for _, c := range g.Clusters {
		if c.Module == module {
			return c
		}
	}
	return nil
}

func (g *Graph) Node(id string) *Node {
	for _, c := range g.Clusters {
		for _, n := range c.Nodes {
			if n.ID == id {
				return n
			}
		}
	}
	return nil
}

func (g *Graph) EdgesOf(kind EdgeKind) []*Edge {
	var ret []*Edge
	for _, e := range g.Edges {
		if e.Kind == kind {
			ret = append(ret, e)
		}
	}
	return ret
}
