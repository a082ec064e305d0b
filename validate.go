package hcpn

import (
	"fmt"
	"sort"
)

// Validate checks the referential integrity and acyclicity of a hierarchy. It does not stop at the first problem:
// every violation is returned, ordered by substitution links, then cycles, then fusion classes. A nil result means the
// model is valid. Validate does not modify the model.
func Validate(m *Model) []*Violation {
	var ret []*Violation
	for _, s := range m.subs.links {
		ret = append(ret, validateLink(m.registry, s)...)
	}
	ret = append(ret, validateCycles(m.registry, m.subs.links)...)
	ret = append(ret, validateFusions(m.registry, m.fusion.classes)...)
	return ret
}

func validateLink(r *Registry, s *Substitution) []*Violation {
	var ret []*Violation
	parent, perr := r.Lookup(s.Parent)
	if perr != nil {
		ret = append(ret, &Violation{Err: ErrUnknownModule, Module: s.Parent, Detail: "parent of " + s.String()})
	}
	child, cerr := r.Lookup(s.Child)
	if cerr != nil {
		ret = append(ret, &Violation{Err: ErrUnknownModule, Module: s.Child, Detail: "child of " + s.String()})
	}
	if perr != nil {
		return ret
	}
	if !hasName(parent.Transitions(), s.Transition) {
		ret = append(ret, &Violation{Err: ErrUnknownTransition, Module: s.Parent, Transition: s.Transition})
		return ret
	}
	if cerr != nil {
		return ret
	}
	sockets := make([]string, 0, len(s.Ports))
	for socket := range s.Ports {
		sockets = append(sockets, socket)
	}
	sort.Strings(sockets)
	for _, socket := range sockets {
		if !hasName(parent.Places(), socket) {
			ret = append(ret, &Violation{Err: ErrUnknownPlace, Module: s.Parent, Place: socket, Detail: "socket of " + s.String()})
		}
		if port := s.Ports[socket]; !hasName(child.Places(), port) {
			ret = append(ret, &Violation{Err: ErrUnknownPlace, Module: s.Child, Place: port, Detail: "port of " + s.String()})
		}
	}
	for _, a := range parent.Arcs() {
		if a.Transition != s.Transition {
			continue
		}
		port := s.Port(a.Place)
		if !hasName(child.Places(), port) {
			if _, explicit := s.Ports[a.Place]; !explicit {
				ret = append(ret, &Violation{
					Err:        ErrUnboundPort,
					Module:     s.Parent,
					Transition: s.Transition,
					Place:      a.Place,
					Detail:     fmt.Sprintf("module %s has no place %s", s.Child, port),
				})
			}
			continue
		}
		sd, sok := parent.Domain(a.Place)
		pd, pok := child.Domain(port)
		if !compatible(sd, sok, pd, pok) {
			ret = append(ret, &Violation{
				Err:        ErrDomainMismatch,
				Module:     s.Parent,
				Transition: s.Transition,
				Place:      a.Place,
				Detail:     fmt.Sprintf("socket is %s but port %s.%s is %s", domainName(sd, sok), s.Child, port, domainName(pd, pok)),
			})
		}
	}
	return ret
}

func validateCycles(r *Registry, links []*Substitution) []*Violation {
	cc := cycles(r, links)
	sort.Slice(cc, func(i, j int) bool {
		return cycleString(cc[i]) < cycleString(cc[j])
	})
	ret := make([]*Violation, 0, len(cc))
	for _, cyc := range cc {
		ret = append(ret, &Violation{Err: ErrCyclicHierarchy, Module: cyc[0], Detail: cycleString(cyc)})
	}
	return ret
}

func validateFusions(r *Registry, classes []*FusionClass) []*Violation {
	var ret []*Violation
	seen := make(map[PlaceRef]string)
	for _, fc := range classes {
		var (
			domain   Domain
			declared bool
			first    *PlaceRef
		)
		for _, ref := range fc.Members {
			if other, ok := seen[ref]; ok {
				ret = append(ret, &Violation{Err: ErrPlaceAlreadyFused, Module: ref.Module, Place: ref.Place, Detail: fc.ID + " and " + other})
			}
			seen[ref] = fc.ID
			m, err := r.Lookup(ref.Module)
			if err != nil {
				ret = append(ret, &Violation{Err: ErrUnknownModule, Module: ref.Module, Detail: "member of " + fc.ID})
				continue
			}
			if !hasName(m.Places(), ref.Place) {
				ret = append(ret, &Violation{Err: ErrUnknownPlace, Module: ref.Module, Place: ref.Place, Detail: "member of " + fc.ID})
				continue
			}
			d, ok := m.Domain(ref.Place)
			if first == nil {
				ref := ref
				first, domain, declared = &ref, d, ok
				continue
			}
			if !compatible(domain, declared, d, ok) {
				ret = append(ret, &Violation{
					Err:    ErrDomainMismatch,
					Module: ref.Module,
					Place:  ref.Place,
					Detail: fmt.Sprintf("%s is %s but %s is %s", first, domainName(domain, declared), ref, domainName(d, ok)),
				})
			}
		}
	}
	return ret
}
