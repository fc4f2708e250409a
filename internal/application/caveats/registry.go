// Package caveats implements the caveat registry and the two built-in
// caveat-function generators, filterParams and filterResponse, that the
// restricted-method executor composes into a one-shot request pipeline.
package caveats

import (
	"sync"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// Generator builds the middleware-shaped function a stored caveat becomes
// once it sits inline in a request pipeline.
type Generator func(caveat domain.Caveat) (domain.MiddlewareFunc, error)

// Registry is a process-wide, replaceable mapping from caveat type to
// Generator. An unregistered type is not a no-op: the executor is expected
// to fail the dispatch closed when Generator's second return is false.
type Registry interface {
	Generator(caveatType string) (Generator, bool)
	Register(caveatType string, gen Generator)
}

type registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry returns a Registry pre-populated with filterParams and
// filterResponse.
func NewRegistry() Registry {
	r := &registry{generators: make(map[string]Generator)}
	r.Register("filterParams", filterParamsGenerator)
	r.Register("filterResponse", filterResponseGenerator)
	return r
}

func (r *registry) Generator(caveatType string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[caveatType]
	return gen, ok
}

func (r *registry) Register(caveatType string, gen Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[caveatType] = gen
}
