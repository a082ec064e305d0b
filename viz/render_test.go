package viz_test

import (
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/cpn"
	"github.com/jt05610/hcpn/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

var ints = cpn.Int("INT")

func relay(name string, extra ...string) *cpn.Net {
	in := cpn.NewPlace("In", ints)
	out := cpn.NewPlace("Out", ints)
	t := cpn.NewTransition("T")
	n := cpn.NewNet(name).WithPlaces(in, out).WithTransitions(t)
	n.WithArcs(cpn.NewArc(in, t, "x"), cpn.NewArc(t, out, "x"))
	for _, e := range extra {
		p := cpn.NewPlace(e, ints)
		n.WithPlaces(p).WithArcs(cpn.NewArc(p, t, "y"))
	}
	return n
}

func chain(t *testing.T) *hcpn.Model {
	m := hcpn.New()
	for _, name := range []string{"A", "B", "C", "D"} {
		require.NoError(t, m.Register(name, relay(name)))
	}
	require.NoError(t, m.Link("A", "T", "B"))
	require.NoError(t, m.Link("B", "T", "C"))
	require.NoError(t, m.Link("C", "T", "D"))
	return m
}

func TestRender_Chain(t *testing.T) {
	m := chain(t)
	g, err := viz.Render(m, nil)
	require.NoError(t, err)

	require.Len(t, g.Clusters, 4)
	for i, name := range []string{"A", "B", "C", "D"} {
		assert.Equal(t, name, g.Clusters[i].Module)
		assert.Equal(t, name, g.Clusters[i].Label)
	}
	assert.Len(t, g.EdgesOf(viz.ArcEdge), 8)

	subs := g.EdgesOf(viz.SubstitutionEdge)
	require.Len(t, subs, 3)
	for _, e := range subs {
		assert.Equal(t, viz.Dashed, e.Style.Stroke)
		assert.Empty(t, e.ToCluster, "single entry port is targeted directly")
	}
	assert.Equal(t, g.Cluster("A").Nodes[2].ID, subs[0].From)
	assert.Equal(t, "In", g.Node(subs[0].To).Label)
	assert.Equal(t, viz.PlaceNode, g.Node(subs[0].To).Kind)

	assert.Equal(t, viz.SubstitutionNode, g.Cluster("A").Nodes[2].Kind)
	assert.Equal(t, "orange", g.Cluster("A").Nodes[2].Style.FillColor)
	assert.Equal(t, viz.TransitionNode, g.Cluster("D").Nodes[2].Kind)
}

func TestRender_Deterministic(t *testing.T) {
	m := chain(t)
	markings := map[string]hcpn.Marking{"B": {"In": hcpn.NewMultiset(3, 1)}}
	a, err := viz.Render(m, markings)
	require.NoError(t, err)
	b, err := viz.Render(m, markings)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRender_AbsentMarkingIsEmpty(t *testing.T) {
	m := chain(t)
	absent, err := viz.Render(m, nil)
	require.NoError(t, err)
	empty, err := viz.Render(m, map[string]hcpn.Marking{"A": {}, "B": {"In": nil}})
	require.NoError(t, err)
	assert.Equal(t, absent, empty)
}

func TestRender_MarkingLabels(t *testing.T) {
	m := chain(t)
	g, err := viz.Render(m, map[string]hcpn.Marking{"A": {"In": hcpn.NewMultiset(1, 2)}})
	require.NoError(t, err)
	assert.Equal(t, "In\n{1, 2}", g.Cluster("A").Nodes[0].Label)
	assert.Equal(t, "Out", g.Cluster("A").Nodes[1].Label)
	assert.Equal(t, "In", g.Cluster("B").Nodes[0].Label)
}

func TestRender_Fusion(t *testing.T) {
	m := chain(t)
	_, err := m.Fuse(hcpn.PlaceRef{Module: "A", Place: "Out"}, hcpn.PlaceRef{Module: "D", Place: "In"})
	require.NoError(t, err)

	g, err := viz.Render(m, nil)
	require.NoError(t, err)
	fused := g.EdgesOf(viz.FusionEdge)
	require.Len(t, fused, 1)
	assert.Equal(t, g.Cluster("A").Nodes[1].ID, fused[0].From)
	assert.Equal(t, g.Cluster("D").Nodes[0].ID, fused[0].To)
	assert.True(t, fused[0].Style.Undirected)
	assert.Equal(t, viz.Dotted, fused[0].Style.Stroke)
	assert.Equal(t, g.Cluster("A").Nodes[1].Style.FillColor, g.Cluster("D").Nodes[0].Style.FillColor)
	assert.NotEqual(t, "lightblue", g.Cluster("A").Nodes[1].Style.FillColor)

	g, err = viz.Render(m, nil, viz.WithoutFusion())
	require.NoError(t, err)
	assert.Empty(t, g.EdgesOf(viz.FusionEdge))
	assert.Equal(t, "lightblue", g.Cluster("A").Nodes[1].Style.FillColor)
}

func TestRender_ClusterTargets(t *testing.T) {
	m := hcpn.New()
	require.NoError(t, m.Register("Top", relay("Top", "Aux")))
	require.NoError(t, m.Register("Sub", relay("Sub", "Aux")))
	require.NoError(t, m.Register("Empty", cpn.NewNet("Empty")))
	require.NoError(t, m.Link("Top", "T", "Sub"))

	g, err := viz.Render(m, nil, viz.WithName("two-entries"))
	require.NoError(t, err)
	assert.Equal(t, "two-entries", g.Name)
	subs := g.EdgesOf(viz.SubstitutionEdge)
	require.Len(t, subs, 1)
	assert.Equal(t, g.Cluster("Sub").ID, subs[0].ToCluster)
	assert.Equal(t, g.Cluster("Sub").Nodes[0].ID, subs[0].To)

	empty := g.Cluster("Empty")
	require.Len(t, empty.Nodes, 1)
	assert.Equal(t, viz.AnchorNode, empty.Nodes[0].Kind)
}

func TestRender_InvalidModel(t *testing.T) {
	m := hcpn.New()
	require.NoError(t, m.Register("Top", relay("Top", "Aux")))
	require.NoError(t, m.Register("Sub", relay("Sub")))
	require.NoError(t, m.Link("Top", "T", "Sub"))

	_, err := viz.Render(m, nil)
	assert.ErrorIs(t, err, hcpn.ErrUnboundPort)
}
