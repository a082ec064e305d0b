// Package hcpn composes independently defined coloured Petri net modules into a hierarchy. A substitution transition
// in a parent module stands in for a whole child module, and fusion sets let places in different modules share one
// marking.
//
// Modules are opaque: the hierarchy only needs their place and transition names, their arcs and a way to read and
// write their marking. Executing a hierarchy additionally needs each module to be an Engine.
package hcpn

import (
	"fmt"
	"go.uber.org/multierr"
	"strings"
)

// Model is a hierarchical net: a module registry, a substitution table and a set of fusion classes.
type Model struct {
	version   uint64
	validated uint64
	valid     bool
	registry  *Registry
	subs      *SubstitutionTable
	fusion    *FusionSets
}

func New() *Model {
	m := &Model{}
	m.registry = newRegistry(&m.version)
	m.subs = newSubstitutionTable(m.registry, &m.version)
	m.fusion = newFusionSets(m.registry, &m.version)
	return m
}

func (m *Model) Registry() *Registry                    { return m.registry }
func (m *Model) Substitutions() *SubstitutionTable      { return m.subs }
func (m *Model) Fusions() *FusionSets                   { return m.fusion }
func (m *Model) Register(name string, mod Module) error { return m.registry.Register(name, mod) }
func (m *Model) Lookup(name string) (Module, error)     { return m.registry.Lookup(name) }
func (m *Model) Modules() []string                      { return m.registry.Modules() }

func (m *Model) Link(parent, transition, child string, opts ...LinkOption) error {
	return m.subs.Link(parent, transition, child, opts...)
}

func (m *Model) Resolve(parent, transition string) (string, bool) {
	return m.subs.Resolve(parent, transition)
}

func (m *Model) IsSubstitution(parent, transition string) bool {
	return m.subs.IsSubstitution(parent, transition)
}

func (m *Model) Fuse(refs ...PlaceRef) (*FusionClass, error) {
	return m.fusion.Fuse(refs...)
}

func (m *Model) ClassOf(module, place string) (*FusionClass, bool) {
	return m.fusion.ClassOf(module, place)
}

func (m *Model) MergedMarking(fc *FusionClass) Multiset {
	return m.fusion.MergedMarking(fc)
}

// Validate checks the whole hierarchy and returns every violation combined into one error.
func (m *Model) Validate() error {
	var err error
	for _, v := range Validate(m) {
		err = multierr.Append(err, v)
	}
	m.validated = m.version
	m.valid = err == nil
	return err
}

// ensureValid revalidates only when the structure changed since the last successful validation.
func (m *Model) ensureValid() error {
	if m.valid && m.validated == m.version {
		return nil
	}
	return m.Validate()
}

// Marking returns the marking of a module with fused places read from their fusion class.
func (m *Model) Marking(module string) (Marking, error) {
	mod, err := m.registry.Lookup(module)
	if err != nil {
		return nil, err
	}
	mk := mod.Marking().Clone()
	if mk == nil {
		mk = make(Marking)
	}
	for _, place := range m.fusion.Fused(module) {
		fc, _ := m.fusion.ClassOf(module, place)
		mk[place] = fc.marking.Clone()
	}
	return mk, nil
}

// Markings returns the marking of every module keyed by module name.
func (m *Model) Markings() map[string]Marking {
	ret := make(map[string]Marking, m.registry.Len())
	for _, name := range m.registry.names {
		mk, _ := m.Marking(name)
		ret[name] = mk
	}
	return ret
}

func (m *Model) Tokens(ref PlaceRef) (Multiset, error) {
	mod, err := m.place(ref)
	if err != nil {
		return nil, err
	}
	if fc, ok := m.fusion.ClassOf(ref.Module, ref.Place); ok {
		return fc.marking.Clone(), nil
	}
	return mod.Marking().Tokens(ref.Place).Clone(), nil
}

// SetTokens replaces the tokens of a place. Writes to a fused place go to its class and reach every member.
func (m *Model) SetTokens(ref PlaceRef, ms Multiset) error {
	mod, err := m.place(ref)
	if err != nil {
		return err
	}
	if fc, ok := m.fusion.ClassOf(ref.Module, ref.Place); ok {
		m.fusion.set(fc, ms)
		return m.fusion.writeBack(fc)
	}
	mk := mod.Marking().Clone()
	if mk == nil {
		mk = make(Marking)
	}
	mk[ref.Place] = ms.Clone()
	return mod.SetMarking(mk)
}

func (m *Model) AddTokens(ref PlaceRef, values ...any) error {
	ms, err := m.Tokens(ref)
	if err != nil {
		return err
	}
	return m.SetTokens(ref, ms.Add(values...))
}

func (m *Model) RemoveTokens(ref PlaceRef, values ...any) error {
	ms, err := m.Tokens(ref)
	if err != nil {
		return err
	}
	ms, err = ms.Remove(values...)
	if err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}
	return m.SetTokens(ref, ms)
}

func (m *Model) place(ref PlaceRef) (Module, error) {
	mod, err := m.registry.Lookup(ref.Module)
	if err != nil {
		return nil, err
	}
	if !hasName(mod.Places(), ref.Place) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlace, ref)
	}
	return mod, nil
}

// syncIn pushes the shared markings of fused places into a module before its engine looks at them.
func (m *Model) syncIn(module string) error {
	fused := m.fusion.Fused(module)
	if len(fused) == 0 {
		return nil
	}
	mod, err := m.registry.Lookup(module)
	if err != nil {
		return err
	}
	mk := mod.Marking().Clone()
	if mk == nil {
		mk = make(Marking)
	}
	for _, place := range fused {
		fc, _ := m.fusion.ClassOf(module, place)
		mk[place] = fc.marking.Clone()
	}
	return mod.SetMarking(mk)
}

// syncOut folds the changes an engine made to its fused places back into the owning classes. Every member view
// started from the class marking, so each member contributes what it lost and what it gained relative to that
// marking. Several members of one class in the same module all count. Nothing is written when a class cannot give up
// the tokens its members consumed.
func (m *Model) syncOut(module string) error {
	mod, err := m.registry.Lookup(module)
	if err != nil {
		return err
	}
	mk := mod.Marking()
	next := make(map[*FusionClass]Multiset)
	var order []*FusionClass
	for _, fc := range m.fusion.classes {
		changed := false
		ms := fc.marking.Clone()
		for _, ref := range fc.Members {
			if ref.Module != module {
				continue
			}
			post := mk.Tokens(ref.Place)
			lost := fc.marking.Diff(post)
			gained := post.Diff(fc.marking)
			if lost.Len() == 0 && gained.Len() == 0 {
				continue
			}
			changed = true
			if ms, err = ms.Subtract(lost); err != nil {
				return fmt.Errorf("%s: %w", fc.ID, err)
			}
			ms = ms.Union(gained)
		}
		if changed {
			next[fc] = ms
			order = append(order, fc)
		}
	}
	for _, fc := range order {
		m.fusion.set(fc, next[fc])
		if err := m.fusion.writeBack(fc); err != nil {
			return err
		}
	}
	return nil
}

type snapshot struct {
	modules map[string]Marking
	classes map[*FusionClass]Multiset
}

func (m *Model) snapshot() *snapshot {
	s := &snapshot{
		modules: make(map[string]Marking, m.registry.Len()),
		classes: make(map[*FusionClass]Multiset, len(m.fusion.classes)),
	}
	for _, name := range m.registry.names {
		s.modules[name] = m.registry.modules[name].Marking().Clone()
	}
	for _, fc := range m.fusion.classes {
		s.classes[fc] = fc.marking.Clone()
	}
	return s
}

func (m *Model) restore(s *snapshot) error {
	var err error
	for _, name := range m.registry.names {
		mk, ok := s.modules[name]
		if !ok {
			continue
		}
		err = multierr.Append(err, m.registry.modules[name].SetMarking(mk.Clone()))
	}
	for fc, ms := range s.classes {
		fc.marking = ms.Clone()
	}
	return err
}

func (m *Model) String() string {
	lines := []string{"HCPN:"}
	for _, name := range m.registry.names {
		mod := m.registry.modules[name]
		lines = append(lines, fmt.Sprintf("  Module '%s': %d places, %d transitions, %d arcs",
			name, len(mod.Places()), len(mod.Transitions()), len(mod.Arcs())))
	}
	lines = append(lines, "Substitutions:")
	for _, s := range m.subs.links {
		lines = append(lines, "  "+s.String())
	}
	if len(m.fusion.classes) > 0 {
		lines = append(lines, "Fusion sets:")
		for _, fc := range m.fusion.classes {
			lines = append(lines, "  "+fc.String())
		}
	}
	return strings.Join(lines, "\n")
}
