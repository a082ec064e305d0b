package hcpn_test

import (
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/cpn"
	"github.com/stretchr/testify/require"
	"testing"
)

var ints = cpn.Int("INT")

// relay is a module In -> T -> Out where T's output arc is out.
func relay(name, guard, out string) *cpn.Net {
	in := cpn.NewPlace("In", ints)
	o := cpn.NewPlace("Out", ints)
	t := cpn.NewTransition("T", guard)
	return cpn.NewNet(name).
		WithPlaces(in, o).
		WithTransitions(t).
		WithArcs(cpn.NewArc(in, t, "x"), cpn.NewArc(t, o, out))
}

func ref(module, place string) hcpn.PlaceRef {
	return hcpn.PlaceRef{Module: module, Place: place}
}

// chain registers relays named by names and links each one's T to the next module.
func chain(t *testing.T, names ...string) *hcpn.Model {
	t.Helper()
	m := hcpn.New()
	for _, name := range names {
		require.NoError(t, m.Register(name, relay(name, "", "x")))
	}
	for i := 0; i+1 < len(names); i++ {
		require.NoError(t, m.Link(names[i], "T", names[i+1]))
	}
	return m
}

func tokens(t *testing.T, m *hcpn.Model, module, place string) hcpn.Multiset {
	t.Helper()
	ms, err := m.Tokens(ref(module, place))
	require.NoError(t, err)
	return ms
}
