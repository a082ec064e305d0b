package hcpn

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// stub is a module without an engine.
type stub struct {
	places      []string
	transitions []string
	arcs        []Arc
	marking     Marking
}

func (s *stub) Places() []string             { return s.places }
func (s *stub) Transitions() []string        { return s.transitions }
func (s *stub) Arcs() []Arc                  { return s.arcs }
func (s *stub) Domain(string) (Domain, bool) { return nil, false }
func (s *stub) Marking() Marking             { return s.marking.Clone() }

func (s *stub) SetMarking(m Marking) error {
	s.marking = m.Clone()
	return nil
}

func newStub() *stub {
	return &stub{
		places:      []string{"In", "Out"},
		transitions: []string{"T"},
		arcs: []Arc{
			{Place: "In", Transition: "T", Expression: "x", Dir: In},
			{Place: "Out", Transition: "T", Expression: "x", Dir: Out},
		},
	}
}

func TestValidate_InjectedCycles(t *testing.T) {
	m := New()
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, m.Register(name, newStub()))
	}
	require.NoError(t, m.Link("A", "T", "B"))
	require.NoError(t, m.Link("B", "T", "C"))
	m.subs.links = append(m.subs.links, &Substitution{Parent: "C", Transition: "T", Child: "A"})
	m.subs.links = append(m.subs.links, &Substitution{Parent: "C", Transition: "T", Child: "C"})

	var cyclic []*Violation
	for _, v := range Validate(m) {
		if errors.Is(v, ErrCyclicHierarchy) {
			cyclic = append(cyclic, v)
		}
	}
	require.Len(t, cyclic, 2)
	for _, v := range cyclic {
		assert.NotEmpty(t, v.Detail)
	}
	assert.ErrorIs(t, m.Validate(), ErrCyclicHierarchy)
}

func TestValidate_InjectedDanglingReferences(t *testing.T) {
	m := New()
	require.NoError(t, m.Register("A", newStub()))
	m.subs.links = append(m.subs.links,
		&Substitution{Parent: "A", Transition: "Nope", Child: "A"},
		&Substitution{Parent: "Gone", Transition: "T", Child: "Missing"},
	)
	m.fusion.classes = append(m.fusion.classes, &FusionClass{
		ID:      "fusion9",
		Members: []PlaceRef{{Module: "A", Place: "In"}, {Module: "A", Place: "Ghost"}, {Module: "Gone", Place: "In"}},
	})

	got := make(map[error]int)
	for _, v := range Validate(m) {
		got[v.Err]++
	}
	assert.Equal(t, 1, got[ErrUnknownTransition])
	assert.Equal(t, 3, got[ErrUnknownModule])
	assert.Equal(t, 1, got[ErrUnknownPlace])
}

func TestExecutor_NotExecutable(t *testing.T) {
	m := New()
	require.NoError(t, m.Register("A", newStub()))
	_, err := NewExecutor(m).Fire(context.Background(), "A", "T")
	assert.ErrorIs(t, err, ErrNotExecutable)
}
