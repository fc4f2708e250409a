package application

import (
	"github.com/opena2a/rpc-capabilities/internal/application/caveats"
	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// Executor composes the caveat pipeline for one authorized call and runs it
// against the target restricted method.
type Executor struct {
	registry caveats.Registry
	methods  map[string]domain.RestrictedMethodEntry
}

// NewExecutor wraps registry and the restricted-method table methods is
// resolved against.
func NewExecutor(registry caveats.Registry, methods map[string]domain.RestrictedMethodEntry) *Executor {
	return &Executor{registry: registry, methods: methods}
}

// Execute dispatches req through the caveat pipeline stored on perm, then
// into the restricted method resolved by methodKey. An empty methodKey or
// an unresolved entry fails closed with METHOD_NOT_FOUND; an unregistered
// caveat type fails closed with invalid params before the target method
// ever runs.
func (e *Executor) Execute(methodKey string, perm domain.Capability, req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
	entry, ok := e.methods[methodKey]
	if methodKey == "" || !ok {
		end(domain.ErrMethodNotFound())
		return
	}

	stages := make([]domain.MiddlewareFunc, 0, len(perm.Caveats)+1)
	for _, caveat := range perm.Caveats {
		gen, ok := e.registry.Generator(caveat.Type)
		if !ok {
			end(domain.ErrInvalidParams())
			return
		}
		mw, err := gen(caveat)
		if err != nil {
			end(domain.AsProtocolError(err))
			return
		}
		stages = append(stages, mw)
	}
	stages = append(stages, entry.Method)

	// The executor is a terminal dispatch within the router's own pipeline:
	// whatever the caveat chain decides (success or failure) finalizes the
	// whole call, so completion always reaches the router's end, never its
	// next. RunPipeline has already written any error onto res.Error.
	domain.RunPipeline(stages, req, res, func() {
		end(nil)
	})
}
