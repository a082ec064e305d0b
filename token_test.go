package hcpn_test

import (
	"fmt"
	"github.com/jt05610/hcpn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func ExampleMarking_String() {
	m := hcpn.Marking{
		"Queue": hcpn.NewMultiset("a", "b"),
		"Count": hcpn.NewMultiset(2),
		"Idle":  nil,
	}
	fmt.Println(m)
	// Output:
	// Count: {2}
	// Queue: {"a", "b"}
}

func TestMultiset_Remove(t *testing.T) {
	ms := hcpn.NewMultiset(1, 2, 2, 3)
	left, err := ms.Remove(2, 3)
	require.NoError(t, err)
	assert.True(t, left.Equal(hcpn.NewMultiset(2, 1)))
	assert.Equal(t, 4, ms.Len(), "receiver is not modified")

	_, err = ms.Remove(4)
	assert.ErrorIs(t, err, hcpn.ErrNotEnoughTokens)
	_, err = ms.Remove(3, 3)
	assert.ErrorIs(t, err, hcpn.ErrNotEnoughTokens)
}

func TestMultiset_Add(t *testing.T) {
	base := make(hcpn.Multiset, 0, 8).Add(1)
	a := base.Add(2)
	b := base.Add(3)
	assert.True(t, a.Equal(hcpn.NewMultiset(1, 2)))
	assert.True(t, b.Equal(hcpn.NewMultiset(1, 3)))
}

func TestMultiset_Equal(t *testing.T) {
	assert.True(t, hcpn.NewMultiset(1, 1, 2).Equal(hcpn.NewMultiset(2, 1, 1)))
	assert.False(t, hcpn.NewMultiset(1, 1, 2).Equal(hcpn.NewMultiset(1, 2, 2)))
	assert.True(t, hcpn.NewMultiset(1, 1, 2).Contains(hcpn.NewMultiset(1, 2)))
	assert.Equal(t, 2, hcpn.NewMultiset(1, 1, 2).Count(1))
	assert.True(t, hcpn.NewMultiset(decimal.RequireFromString("1.50")).
		Equal(hcpn.NewMultiset(decimal.RequireFromString("1.5"))))
	assert.True(t, hcpn.NewMultiset(nil).Equal(hcpn.NewMultiset(nil)))
}

func TestMultiset_Diff(t *testing.T) {
	a := hcpn.NewMultiset(1, 1, 2, 3)
	b := hcpn.NewMultiset(1, 3, 4)
	assert.True(t, a.Diff(b).Equal(hcpn.NewMultiset(1, 2)))
	assert.True(t, b.Diff(a).Equal(hcpn.NewMultiset(4)))
	assert.Zero(t, a.Diff(a).Len())
	assert.True(t, a.Equal(hcpn.NewMultiset(1, 1, 2, 3)), "receiver untouched")
}

func TestMarking_Equal(t *testing.T) {
	a := hcpn.Marking{"P": hcpn.NewMultiset(1), "Q": nil}
	b := hcpn.Marking{"P": hcpn.NewMultiset(1)}
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(hcpn.Marking{}))
	assert.Equal(t, []string{"P"}, a.Places())
}
