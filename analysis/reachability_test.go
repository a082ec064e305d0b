package analysis_test

import (
	"context"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/analysis"
	"github.com/jt05610/hcpn/cpn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// counter counts P up to 3.
func counter(t *testing.T) *cpn.Net {
	p := cpn.NewPlace("P", cpn.Int("INT"))
	inc := cpn.NewTransition("Inc", "x < 3")
	n := cpn.NewNet("counter").WithPlaces(p).WithTransitions(inc).
		WithArcs(cpn.NewArc(p, inc, "x"), cpn.NewArc(inc, p, "x + 1"))
	require.NoError(t, n.Mark("P", 0))
	return n
}

func TestReachability(t *testing.T) {
	n := counter(t)
	ss, err := analysis.Reachability(context.Background(), n, 0)
	require.NoError(t, err)

	assert.True(t, ss.Complete)
	assert.Equal(t, 4, ss.Len())
	assert.Empty(t, ss.Growing)
	for i, want := range []int{0, 1, 2, 3} {
		assert.True(t, ss.Markings[i].Tokens("P").Equal(hcpn.NewMultiset(want)), "marking %d", i)
	}
	assert.Equal(t, []string{"Inc"}, ss.Transitions(0, 1))
	assert.Empty(t, ss.Transitions(0, 2))
	assert.Equal(t, []int64{3}, ss.Dead())
	assert.True(t, ss.Reachable(0, 3))
	assert.False(t, ss.Reachable(3, 0))

	id, ok := ss.Lookup(hcpn.Marking{"P": hcpn.NewMultiset(2)})
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
	assert.True(t, n.Marking().Tokens("P").Equal(hcpn.NewMultiset(0)), "engine marking restored")
}

func TestReachability_Limit(t *testing.T) {
	p := cpn.NewPlace("P", cpn.Int("INT"))
	dup := cpn.NewTransition("Dup")
	n := cpn.NewNet("dup").WithPlaces(p).WithTransitions(dup).
		WithArcs(cpn.NewArc(p, dup, "x"), cpn.NewArc(dup, p, "[x, x]"))
	require.NoError(t, n.Mark("P", 1))

	ss, err := analysis.Reachability(context.Background(), n, 4)
	require.NoError(t, err)
	assert.False(t, ss.Complete)
	assert.Equal(t, 4, ss.Len())
	assert.Equal(t, []int64{1, 2, 3}, ss.Growing)
	assert.True(t, ss.Markings[3].Tokens("P").Equal(hcpn.NewMultiset(1, 1, 1, 1)))
	assert.True(t, n.Marking().Tokens("P").Equal(hcpn.NewMultiset(1)))
}

func TestReachability_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analysis.Reachability(ctx, counter(t), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
