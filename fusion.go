package hcpn

import (
	"fmt"
	"strings"
)

// FusionClass is a set of places, possibly in different modules, that share one marking. The class owns that marking;
// its members only refer to it.
type FusionClass struct {
	ID      string
	Members []PlaceRef
	Domain  Domain
	marking Multiset
}

func (fc *FusionClass) String() string {
	parts := make([]string, len(fc.Members))
	for i, m := range fc.Members {
		parts[i] = m.String()
	}
	return fc.ID + "{" + strings.Join(parts, ", ") + "}"
}

func (fc *FusionClass) Has(ref PlaceRef) bool {
	for _, m := range fc.Members {
		if m == ref {
			return true
		}
	}
	return false
}

// FusionSets groups fused places and holds their shared markings.
type FusionSets struct {
	registry *Registry
	classes  []*FusionClass
	byPlace  map[PlaceRef]*FusionClass
	version  *uint64
}

func NewFusionSets(r *Registry) *FusionSets {
	return newFusionSets(r, r.version)
}

func newFusionSets(r *Registry, version *uint64) *FusionSets {
	return &FusionSets{
		registry: r,
		byPlace:  make(map[PlaceRef]*FusionClass),
		version:  version,
	}
}

// Fuse creates a fusion class from at least two distinct places. The shared marking starts as the current marking of
// the first member and is written back to every member module.
func (fs *FusionSets) Fuse(refs ...PlaceRef) (*FusionClass, error) {
	members := make([]PlaceRef, 0, len(refs))
	for _, ref := range refs {
		if !hasRef(members, ref) {
			members = append(members, ref)
		}
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrFusionTooSmall, len(members))
	}
	var (
		domain   Domain
		declared bool
	)
	for i, ref := range members {
		m, err := fs.registry.Lookup(ref.Module)
		if err != nil {
			return nil, err
		}
		if !hasName(m.Places(), ref.Place) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlace, ref)
		}
		if other, ok := fs.byPlace[ref]; ok {
			return nil, fmt.Errorf("%w: %s belongs to %s", ErrPlaceAlreadyFused, ref, other.ID)
		}
		d, ok := m.Domain(ref.Place)
		if i == 0 {
			domain, declared = d, ok
			continue
		}
		if !compatible(domain, declared, d, ok) {
			return nil, fmt.Errorf("%w: %s (%s) and %s (%s)", ErrDomainMismatch, members[0], domainName(domain, declared), ref, domainName(d, ok))
		}
	}
	first, _ := fs.registry.Lookup(members[0].Module)
	fc := &FusionClass{
		ID:      fmt.Sprintf("fusion%d", len(fs.classes)+1),
		Members: members,
		Domain:  domain,
		marking: first.Marking().Tokens(members[0].Place).Clone(),
	}
	if err := fs.writeBack(fc); err != nil {
		return nil, err
	}
	fs.classes = append(fs.classes, fc)
	for _, ref := range members {
		fs.byPlace[ref] = fc
	}
	*fs.version++
	return fc, nil
}

// ClassOf returns the class a place belongs to. ok is false for unfused places.
func (fs *FusionSets) ClassOf(module, place string) (*FusionClass, bool) {
	fc, ok := fs.byPlace[PlaceRef{Module: module, Place: place}]
	return fc, ok
}

// MergedMarking returns the single marking shared by every member of the class.
func (fs *FusionSets) MergedMarking(fc *FusionClass) Multiset {
	return fc.marking.Clone()
}

func (fs *FusionSets) Classes() []*FusionClass {
	ret := make([]*FusionClass, len(fs.classes))
	copy(ret, fs.classes)
	return ret
}

// Fused lists the fused places of a module.
func (fs *FusionSets) Fused(module string) []string {
	var ret []string
	for _, fc := range fs.classes {
		for _, ref := range fc.Members {
			if ref.Module == module && !hasName(ret, ref.Place) {
				ret = append(ret, ref.Place)
			}
		}
	}
	return ret
}

// set replaces the shared marking of a class.
func (fs *FusionSets) set(fc *FusionClass, ms Multiset) {
	fc.marking = ms.Clone()
}

// writeBack copies the shared marking into every member module so engines that only see their own marking agree with
// the class.
func (fs *FusionSets) writeBack(fc *FusionClass) error {
	for _, ref := range fc.Members {
		m, err := fs.registry.Lookup(ref.Module)
		if err != nil {
			return err
		}
		mk := m.Marking().Clone()
		if mk == nil {
			mk = make(Marking)
		}
		mk[ref.Place] = fc.marking.Clone()
		if err := m.SetMarking(mk); err != nil {
			return err
		}
	}
	return nil
}

func compatible(a Domain, aok bool, b Domain, bok bool) bool {
	if !aok || !bok {
		return aok == bok
	}
	return a.Equal(b)
}

func domainName(d Domain, ok bool) string {
	if !ok || d == nil {
		return "untyped"
	}
	return d.Name()
}

func hasRef(refs []PlaceRef, ref PlaceRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
