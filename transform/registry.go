package transform

import (
	"fmt"

	"github.com/isrbind/isrbind/vector"
)

// Registry holds one transformer per vector of a table, keyed by entry point
// name.
type Registry struct {
	table  *vector.Table
	byName map[string]*Transformer
	names  []string
}

// EntryPoints builds the entry points of every vector in t.
func EntryPoints(t *vector.Table, opts ...Option) *Registry {
	r := &Registry{
		table:  t,
		byName: make(map[string]*Transformer, t.Len()),
	}
	for _, v := range t.Vectors() {
		tr := New(v, opts...)
		r.byName[tr.Name()] = tr
		r.names = append(r.names, tr.Name())
	}
	return r
}

// Table returns the vector table the registry was built from.
func (r *Registry) Table() *vector.Table { return r.table }

// Lookup returns the transformer of the entry point name.
func (r *Registry) Lookup(name string) (*Transformer, error) {
	tr, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q for %s", ErrUnknownEntryPoint, name, r.table.Device())
	}
	return tr, nil
}

// Names returns all entry point names in vector order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
