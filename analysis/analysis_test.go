package analysis_test

import (
	"fmt"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/analysis"
	"github.com/jt05610/hcpn/cpn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func net() *cpn.Net {
	ints := cpn.Int("INT")
	pp := make([]*cpn.Place, 4)
	for i := 0; i < 4; i++ {
		pp[i] = cpn.NewPlace(fmt.Sprintf("p%d", i+1), ints)
	}
	tt := make([]*cpn.Transition, 3)
	for i := 0; i < 3; i++ {
		tt[i] = cpn.NewTransition(fmt.Sprintf("t%d", i+1))
	}
	return cpn.NewNet("loop").
		WithPlaces(pp...).
		WithTransitions(tt...).
		WithArcs(
			cpn.NewArc(pp[0], tt[0], "x"),
			cpn.NewArc(tt[0], pp[1], "x"),
			cpn.NewArc(pp[1], tt[1], "x"),
			cpn.NewArc(tt[1], pp[2], "x"),
			cpn.NewArc(pp[2], tt[0], "y"),
			cpn.NewArc(tt[1], pp[3], "x"),
			cpn.NewArc(pp[3], tt[2], "x"),
			cpn.NewArc(tt[2], pp[0], "x"),
		)
}

func ExampleNet_Incidence() {
	aNet := &analysis.Net{Module: net()}
	inc := aNet.Incidence()
	places := aNet.Places()
	fmt.Printf("┌%s┐\n", strings.Repeat(" ", 3*len(places)-1))
	for i := range aNet.Transitions() {
		fmt.Print("│")
		s := " "
		for j := range places {
			if j == len(places)-1 {
				s = ""
			}
			fmt.Printf("%2d%s", int(inc.At(i, j)), s)
		}
		fmt.Print("│\n")
	}
	fmt.Printf("└%s┘", strings.Repeat(" ", 3*len(places)-1))
	// Output:
	// ┌           ┐
	// │-1  1 -1  0│
	// │ 0 -1  1  1│
	// │ 1  0  0 -1│
	// └           ┘
}

func TestNet_State(t *testing.T) {
	n := net()
	require.NoError(t, n.Mark("p1", 1))
	require.NoError(t, n.Mark("p3", 7, 8))
	aNet := &analysis.Net{Module: n}
	s := aNet.State(n.Marking())
	assert.Equal(t, analysis.State{1, 0, 2, 0}, s)

	assert.True(t, s.Dominates(analysis.State{1, 0, 1, 0}))
	assert.False(t, s.Dominates(s), "equal states do not dominate")
	assert.False(t, s.Dominates(analysis.State{0, 1, 0, 0}))
}

func relay(name string) *cpn.Net {
	ints := cpn.Int("INT")
	in := cpn.NewPlace("In", ints)
	out := cpn.NewPlace("Out", ints)
	t := cpn.NewTransition("T")
	u := cpn.NewTransition("U")
	return cpn.NewNet(name).
		WithPlaces(in, out).
		WithTransitions(t, u).
		WithArcs(cpn.NewArc(in, t, "x"), cpn.NewArc(t, out, "x"), cpn.NewArc(in, u, "x"), cpn.NewArc(u, out, "x"))
}

func hierarchy(t *testing.T) *hcpn.Model {
	m := hcpn.New()
	for _, name := range []string{"Top", "Mid", "Leaf", "Other"} {
		require.NoError(t, m.Register(name, relay(name)))
	}
	require.NoError(t, m.Link("Top", "T", "Mid"))
	require.NoError(t, m.Link("Mid", "T", "Leaf"))
	require.NoError(t, m.Link("Top", "U", "Leaf"))
	return m
}

func ExampleOrder() {
	m := hcpn.New()
	for _, name := range []string{"Top", "Mid", "Leaf"} {
		_ = m.Register(name, relay(name))
	}
	_ = m.Link("Top", "T", "Mid")
	_ = m.Link("Mid", "U", "Leaf")
	order, _ := analysis.Order(m)
	fmt.Println(order)
	// Output:
	// [Leaf Mid Top]
}

func TestLevels(t *testing.T) {
	m := hierarchy(t)
	levels, err := analysis.Levels(m)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Top": 0, "Mid": 1, "Leaf": 2, "Other": 0}, levels)

	roots, err := analysis.Roots(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Top", "Other"}, roots)

	order, err := analysis.Order(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Leaf", "Mid", "Top", "Other"}, order)
}
