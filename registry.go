package hcpn

import (
	"fmt"
)

// Registry stores modules by name. Insertion order is kept; it drives rendering order.
type Registry struct {
	names   []string
	modules map[string]Module
	version *uint64
}

func NewRegistry() *Registry {
	var v uint64
	return newRegistry(&v)
}

func newRegistry(version *uint64) *Registry {
	return &Registry{
		modules: make(map[string]Module),
		version: version,
	}
}

func (r *Registry) Register(name string, m Module) error {
	if name == "" {
		return fmt.Errorf("%w: module name must not be empty", ErrInvalidName)
	}
	if m == nil {
		return fmt.Errorf("%w: module %s is nil", ErrInvalidName, name)
	}
	if _, ok := r.modules[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	r.modules[name] = m
	r.names = append(r.names, name)
	*r.version++
	return nil
}

func (r *Registry) Lookup(name string) (Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return m, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.modules[name]
	return ok
}

// Modules lists module names in registration order.
func (r *Registry) Modules() []string {
	ret := make([]string, len(r.names))
	copy(ret, r.names)
	return ret
}

func (r *Registry) Len() int {
	return len(r.names)
}

func (r *Registry) index(name string) int64 {
	for i, n := range r.names {
		if n == name {
			return int64(i)
		}
	}
	return -1
}
