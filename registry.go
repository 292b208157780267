package zodgen

// Registry resolves Named references by type name. Register is not safe for
// concurrent use; lookups are, once registration is done.
type Registry struct {
	types map[string]TypeDescriptor
	order []string
}

// NewRegistry creates a registry holding ds.
func NewRegistry(ds ...TypeDescriptor) *Registry {
	r := &Registry{types: make(map[string]TypeDescriptor, len(ds))}
	for _, d := range ds {
		r.Register(d)
	}
	return r
}

// Register adds d under its TypeName. A later registration with the same
// name replaces the earlier one and keeps its position.
func (r *Registry) Register(d TypeDescriptor) {
	if d == nil {
		return
	}
	name := d.TypeName()
	if _, ok := r.types[name]; !ok {
		r.order = append(r.order, name)
	}
	r.types[name] = d
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (TypeDescriptor, bool) {
	if r == nil {
		return nil, false
	}
	d, ok := r.types[name]
	return d, ok
}

// Names returns registered names in first-registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
