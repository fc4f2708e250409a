package caveats

import (
	"encoding/json"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// filterParamsGenerator admits a request iff req.Params is structurally
// included in caveat.Value; otherwise it fails closed with invalid params
// before the terminal restricted method ever runs.
func filterParamsGenerator(caveat domain.Caveat) (domain.MiddlewareFunc, error) {
	allowed := caveat.Value
	return func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
		if !structurallyIncluded(any(req.Params), allowed) {
			end(domain.ErrInvalidParams())
			return
		}
		next()
	}, nil
}

// filterResponseGenerator runs the terminal method (and every caveat
// downstream of it) first, then — if the call succeeded — replaces
// res.Result with its structural intersection against caveat.Value. The
// mutation happens in a ReturnHandler so it still applies when the terminal
// method is asynchronous and calls end from another goroutine.
func filterResponseGenerator(caveat domain.Caveat) (domain.MiddlewareFunc, error) {
	allowed := caveat.Value
	return func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
		next(func() {
			if res.Error == nil && res.Result != nil {
				// Round-trip through JSON so typed Go results ([]string,
				// map[string]string, ...) take the []any / map[string]any
				// shapes intersectValue prunes.
				result := res.Result
				if b, err := json.Marshal(result); err == nil {
					var decoded any
					if json.Unmarshal(b, &decoded) == nil {
						result = decoded
					}
				}
				res.Result = intersectValue(result, allowed)
			}
		})
	}, nil
}
