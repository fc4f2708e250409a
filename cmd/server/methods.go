package main

import (
	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// exampleRestrictedMethods returns a small set of restricted-method
// implementations to make the server runnable end to end. Restricted
// methods are ordinarily host-supplied and opaque to the middleware; these
// three mirror the worked examples in the middleware's own test scenarios
// (a plain capability-gated read, a filterResponse-constrained read, and a
// trailing-underscore namespace).
func exampleRestrictedMethods() map[string]domain.RestrictedMethodEntry {
	return map[string]domain.RestrictedMethodEntry{
		"readContacts": {
			Description: "Read the caller's contact list.",
			Method: func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
				res.Result = []string{"alice@example.com", "bob@example.com"}
				next()
			},
		},
		"readAccounts": {
			Description: "Read the caller's linked account identifiers.",
			Method: func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
				res.Result = []string{"0xA", "0xB", "0xC"}
				next()
			},
		},
		"plugin_": {
			Description: "Dispatch to a host plugin method behind the plugin_ namespace.",
			Method: func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
				res.Result = map[string]string{"dispatched": req.Method}
				next()
			},
		},
	}
}
