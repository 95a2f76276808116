package dataset

import "fmt"

// Source produces iterators for the named splits of one dataset.
type Source interface {
	Split(name string) (Iterator, error)
}

// Repository maps dataset identifiers to their sources. It mirrors the
// registry calling convention: register under a string key, fetch by key
// plus split name.
type Repository struct {
	sources map[string]Source
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{sources: make(map[string]Source)}
}

// Register stores a source under the dataset identifier, overwriting any
// previous registration.
func (r *Repository) Register(identifier string, source Source) {
	r.sources[identifier] = source
}

// Get returns the iterator for one split of a registered dataset.
func (r *Repository) Get(identifier, split string) (Iterator, error) {
	source, ok := r.sources[identifier]
	if !ok {
		return nil, fmt.Errorf("no dataset registered under identifier %q", identifier)
	}
	it, err := source.Split(split)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", identifier, err)
	}
	return it, nil
}
