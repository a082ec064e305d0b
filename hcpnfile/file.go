// Package hcpnfile reads and writes whole hierarchies as YAML: colour sets, modules with their initial marking,
// substitutions with port bindings and fusion sets.
package hcpnfile

import (
	"errors"
	"fmt"
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/cpn"
	"github.com/shopspring/decimal"
)

type Version string

const (
	V1 Version = "v1"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported file version")
	ErrUnknownColorSet    = errors.New("unknown colour set")
	ErrUnknownNode        = errors.New("arc end is neither a place nor a transition")
	ErrNotSerializable    = errors.New("module cannot be written to a file")
	ErrUnresolvedInclude  = errors.New("file includes other files")
	ErrConflictingColor   = errors.New("colour set defined twice with different kinds")
)

type ColorSet struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Values []string `yaml:"values,omitempty"`
}

type Place struct {
	Name     string `yaml:"name"`
	ColorSet string `yaml:"colorset"`
	Tokens   []any  `yaml:"tokens,omitempty"`
}

type Transition struct {
	Name      string   `yaml:"name"`
	Guard     string   `yaml:"guard,omitempty"`
	Variables []string `yaml:"variables,omitempty"`
}

type Arc struct {
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	Expression string `yaml:"expression"`
}

type Module struct {
	Name        string        `yaml:"name"`
	Places      []*Place      `yaml:"places,omitempty"`
	Transitions []*Transition `yaml:"transitions,omitempty"`
	Arcs        []*Arc        `yaml:"arcs,omitempty"`
}

type Substitution struct {
	Parent     string            `yaml:"parent"`
	Transition string            `yaml:"transition"`
	Child      string            `yaml:"child"`
	Ports      map[string]string `yaml:"ports,omitempty"`
}

// File is the document layout. Fusions lists the members of each fusion set. Include names other files whose
// contents are merged in before this file's own; see the builder package.
type File struct {
	Version       Version           `yaml:"version"`
	Include       []string          `yaml:"include,omitempty"`
	ColorSets     []*ColorSet       `yaml:"colorsets,omitempty"`
	Modules       []*Module         `yaml:"modules"`
	Substitutions []*Substitution   `yaml:"substitutions,omitempty"`
	Fusions       [][]hcpn.PlaceRef `yaml:"fusions,omitempty"`
}

// Model builds the hierarchy the file describes. Modules are registered in file order, then linked, then fused.
func (f *File) Model() (*hcpn.Model, error) {
	if f.Version != "" && f.Version != V1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, f.Version)
	}
	if len(f.Include) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvedInclude, f.Include)
	}
	colorSets := make(map[string]*cpn.ColorSet, len(f.ColorSets))
	for _, cs := range f.ColorSets {
		kind, err := cpn.ParseKind(cs.Kind)
		if err != nil {
			return nil, fmt.Errorf("colour set %s: %w", cs.Name, err)
		}
		colorSets[cs.Name] = cpn.NewColorSet(cs.Name, kind, cs.Values...)
	}
	m := hcpn.New()
	for _, mod := range f.Modules {
		net, err := mod.net(colorSets)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", mod.Name, err)
		}
		if err := m.Register(mod.Name, net); err != nil {
			return nil, err
		}
	}
	for _, s := range f.Substitutions {
		var opts []hcpn.LinkOption
		for socket, port := range s.Ports {
			opts = append(opts, hcpn.WithPort(socket, port))
		}
		if err := m.Link(s.Parent, s.Transition, s.Child, opts...); err != nil {
			return nil, err
		}
	}
	for _, refs := range f.Fusions {
		if _, err := m.Fuse(refs...); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Merge appends the contents of other to f. Colour sets already defined in f are kept; redefining one with another
// kind is an error.
func (f *File) Merge(other *File) error {
	for _, cs := range other.ColorSets {
		var existing *ColorSet
		for _, mine := range f.ColorSets {
			if mine.Name == cs.Name {
				existing = mine
				break
			}
		}
		if existing == nil {
			f.ColorSets = append(f.ColorSets, cs)
			continue
		}
		if existing.Kind != cs.Kind {
			return fmt.Errorf("%w: %s is %s and %s", ErrConflictingColor, cs.Name, existing.Kind, cs.Kind)
		}
	}
	f.Modules = append(f.Modules, other.Modules...)
	f.Substitutions = append(f.Substitutions, other.Substitutions...)
	f.Fusions = append(f.Fusions, other.Fusions...)
	return nil
}

func (mod *Module) net(colorSets map[string]*cpn.ColorSet) (*cpn.Net, error) {
	net := cpn.NewNet(mod.Name)
	for _, p := range mod.Places {
		var cs *cpn.ColorSet
		if p.ColorSet != "" {
			var ok bool
			if cs, ok = colorSets[p.ColorSet]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownColorSet, p.ColorSet)
			}
		}
		net.WithPlaces(cpn.NewPlace(p.Name, cs))
	}
	for _, t := range mod.Transitions {
		net.WithTransitions(cpn.NewTransition(t.Name, t.Guard).WithVariables(t.Variables...))
	}
	for _, a := range mod.Arcs {
		from, to := node(net, a.From), node(net, a.To)
		if from == nil || to == nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownNode, a.From, a.To)
		}
		if _, err := net.AddArc(from, to, a.Expression); err != nil {
			return nil, fmt.Errorf("arc %s -> %s: %w", a.From, a.To, err)
		}
	}
	for _, p := range mod.Places {
		if len(p.Tokens) == 0 {
			continue
		}
		values, err := parse(net.Place(p.Name).ColorSet, p.Tokens)
		if err != nil {
			return nil, fmt.Errorf("place %s: %w", p.Name, err)
		}
		if err := net.Mark(p.Name, values...); err != nil {
			return nil, err
		}
	}
	return net, nil
}

func node(net *cpn.Net, name string) cpn.Node {
	if p := net.Place(name); p != nil {
		return p
	}
	if t := net.Transition(name); t != nil {
		return t
	}
	return nil
}

func parse(cs *cpn.ColorSet, values []any) ([]any, error) {
	if cs == nil {
		return values, nil
	}
	ret := make([]any, len(values))
	for i, v := range values {
		parsed, err := cs.Parse(v)
		if err != nil {
			return nil, err
		}
		ret[i] = parsed
	}
	return ret, nil
}

// FromModel describes m as a file. Every module must be a *cpn.Net. Fused places carry the marking of their fusion set.
func FromModel(m *hcpn.Model) (*File, error) {
	f := &File{Version: V1}
	seen := make(map[string]bool)
	for _, name := range m.Modules() {
		mod, err := m.Lookup(name)
		if err != nil {
			return nil, err
		}
		net, ok := mod.(*cpn.Net)
		if !ok {
			return nil, fmt.Errorf("%w: %s is a %T", ErrNotSerializable, name, mod)
		}
		marking, err := m.Marking(name)
		if err != nil {
			return nil, err
		}
		fm := &Module{Name: name}
		for _, pn := range net.Places() {
			p := net.Place(pn)
			fp := &Place{Name: pn, Tokens: encode(marking.Tokens(pn))}
			if p.ColorSet != nil {
				fp.ColorSet = p.ColorSet.Name()
				if !seen[fp.ColorSet] {
					seen[fp.ColorSet] = true
					f.ColorSets = append(f.ColorSets, &ColorSet{
						Name:   p.ColorSet.Name(),
						Kind:   string(p.ColorSet.Kind()),
						Values: p.ColorSet.Values(),
					})
				}
			}
			fm.Places = append(fm.Places, fp)
		}
		for _, tn := range net.Transitions() {
			t := net.Transition(tn)
			fm.Transitions = append(fm.Transitions, &Transition{Name: tn, Guard: t.Guard, Variables: t.Variables})
		}
		for _, a := range net.Arcs() {
			fm.Arcs = append(fm.Arcs, &Arc{From: a.Src(), To: a.Dest(), Expression: a.Expression})
		}
		f.Modules = append(f.Modules, fm)
	}
	for _, s := range m.Substitutions().Links() {
		f.Substitutions = append(f.Substitutions, &Substitution{
			Parent:     s.Parent,
			Transition: s.Transition,
			Child:      s.Child,
			Ports:      s.Ports,
		})
	}
	for _, fc := range m.Fusions().Classes() {
		f.Fusions = append(f.Fusions, fc.Members)
	}
	return f, nil
}

func encode(ms hcpn.Multiset) []any {
	if ms.Len() == 0 {
		return nil
	}
	ret := make([]any, 0, ms.Len())
	for _, v := range ms.Values() {
		if d, ok := v.(decimal.Decimal); ok {
			v = d.String()
		}
		ret = append(ret, v)
	}
	return ret
}
