// Package dataset holds the descriptors of every loadable dataset: target
// table, canonical fields, header synonyms and write policy.
package dataset

import (
	"fmt"

	"lcaload/internal/domain"
)

// Registry resolves dataset descriptors by name.
type Registry struct {
	byName map[domain.DatasetName]*domain.Dataset
}

// NewRegistry returns a Registry holding the given descriptors.
func NewRegistry(sets ...*domain.Dataset) *Registry {
	r := &Registry{byName: make(map[domain.DatasetName]*domain.Dataset, len(sets))}
	for _, d := range sets {
		r.byName[d.Name] = d
	}
	return r
}

// Default returns the registry of loadable datasets.
func Default() *Registry {
	return NewRegistry(Disclosure(), Wage())
}

// Get returns the descriptor for name.
func (r *Registry) Get(name domain.DatasetName) (*domain.Dataset, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDataset, name)
	}
	return d, nil
}
