package graphviz

import (
	"errors"
	"fmt"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/jt05610/hcpn/viz"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writer draws a viz.Graph with graphviz. Each module becomes a cluster subgraph.
type Writer struct {
	*Config
	g       *cgraph.Graph
	mapping map[string]*cgraph.Node
}

func (w *Writer) writeCluster(c *viz.Cluster) error {
	sub := w.g.SubGraph(c.ID, 1)
	sub.SetLabel(c.Label)
	for _, n := range c.Nodes {
		if err := w.writeNode(sub, n); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeNode(sub *cgraph.Graph, n *viz.Node) error {
	node, err := sub.CreateNode(n.ID)
	if err != nil {
		return err
	}
	node.SetShape(cgraph.Shape(n.Style.Shape))
	node.SetLabel(n.Label)
	if n.Kind == viz.AnchorNode {
		node.SetLabel("")
	}
	if n.Style.Color != "" {
		node.SetColor(n.Style.Color)
	}
	if n.Style.FillColor != "" {
		node.SetStyle(cgraph.FilledNodeStyle)
		node.SetFillColor(n.Style.FillColor)
	}
	node.SafeSet("class", n.Kind.String(), "")
	node.SafeSet("fontname", string(w.Font), defaultFontName)
	w.mapping[n.ID] = node
	return nil
}

func (w *Writer) writeEdge(e *viz.Edge) error {
	src, ok := w.mapping[e.From]
	if !ok {
		return fmt.Errorf("edge %s: unknown node %s", e.ID, e.From)
	}
	dst, ok := w.mapping[e.To]
	if !ok {
		return fmt.Errorf("edge %s: unknown node %s", e.ID, e.To)
	}
	edge, err := w.g.CreateEdge(e.ID, src, dst)
	if err != nil {
		return err
	}
	if e.Label != "" {
		edge.SetLabel(e.Label)
	}
	if e.Style.Stroke != "" {
		edge.SetStyle(cgraph.EdgeStyle(e.Style.Stroke))
	}
	if e.Style.Color != "" {
		edge.SetColor(e.Style.Color)
	}
	if e.Style.Undirected {
		edge.SetDir(cgraph.NoneDir)
	}
	if e.ToCluster != "" {
		edge.SetLogicalHead(e.ToCluster)
	}
	edge.SafeSet("fontname", string(w.Font), defaultFontName)
	return nil
}

// Flush renders g to out in the configured format.
func (w *Writer) Flush(out io.Writer, g *viz.Graph) error {
	graph := graphviz.New()
	defer func() {
		_ = graph.Close()
	}()
	root, err := graph.Graph(graphviz.Name(w.Name))
	if err != nil {
		return err
	}
	defer func() {
		_ = root.Close()
	}()
	root.SetRankDir(cgraph.RankDir(w.RankDir))
	root.SetCompound(true)
	w.g = root
	w.mapping = make(map[string]*cgraph.Node)
	for _, c := range g.Clusters {
		if err := w.writeCluster(c); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		if err := w.writeEdge(e); err != nil {
			return err
		}
	}
	return graph.Render(w.g, graphviz.Format(w.Format), out)
}

// Save writes g to path. An unset format is taken from the file extension.
func (w *Writer) Save(path string, g *viz.Graph) error {
	if w.Format == "" {
		format, err := FormatOf(path)
		if err != nil {
			return err
		}
		w.Format = format
	}
	df, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Flush(df, g); err != nil {
		_ = df.Close()
		return err
	}
	return df.Close()
}

type Font string

// defaultFontName is graphviz's own fontname default, declared alongside the attribute.
const defaultFontName = "Times-Roman"

func (f Font) Or(other Font) Font {
	return f + "," + other
}

const (
	Helvetica  Font = "Helvetica"
	Arial      Font = "Arial"
	Roboto     Font = "Roboto"
	Montserrat Font = "Montserrat"
	SansSerif  Font = "sans-serif"
	Serif      Font = "Serif"
	Times      Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	RightToLeft RankDir = "RL"
	TopToBottom RankDir = "TB"
	BottomToTop RankDir = "BT"
)

type Format string

const (
	DOT Format = "dot"
	SVG Format = "svg"
	PNG Format = "png"
	JPG Format = "jpg"
)

var ErrUnknownFormat = errors.New("unknown output format")

// FormatOf picks the output format for a file name.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "dot", "gv", "xdot":
		return DOT, nil
	case "svg":
		return SVG, nil
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// ParseFormat accepts a format name as given on the command line.
func ParseFormat(s string) (Format, error) {
	return FormatOf("." + s)
}

type Config struct {
	Name string
	Font
	RankDir
	Format
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "hcpn"
	}
	if config.Font == "" {
		config.Font = Helvetica
	}
	if config.RankDir == "" {
		config.RankDir = LeftToRight
	}
	if config.Format == "" {
		config.Format = DOT
	}
	return &Writer{
		Config:  config,
		mapping: make(map[string]*cgraph.Node),
	}
}
