// Package store implements the state container the permission store is
// built on: the abstract key/value store with an update operation and an
// observable current state that spec.md treats as an external collaborator.
// Nothing external is supplied to this module, so MemoryStateContainer is
// the primary, in-process implementation; RedisMirror is a purely ambient
// best-effort read cache layered on top, never the source of truth.
package store

import (
	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// State is the permission store's full persisted shape: per-origin
// capability tables, the pending permission-request queue, and the
// human-readable descriptions derived once from the restricted-method
// registry at controller construction time.
type State struct {
	Domains                  map[domain.Origin]domain.DomainEntry
	PermissionsRequests      []domain.PermissionRequest
	PermissionsDescriptions  map[string]string
}

// EmptyState returns a State with initialized, non-nil collections.
func EmptyState() State {
	return State{
		Domains:                 make(map[domain.Origin]domain.DomainEntry),
		PermissionsRequests:     []domain.PermissionRequest{},
		PermissionsDescriptions: make(map[string]string),
	}
}

func cloneState(s State) State {
	out := State{
		Domains:                 make(map[domain.Origin]domain.DomainEntry, len(s.Domains)),
		PermissionsRequests:     make([]domain.PermissionRequest, len(s.PermissionsRequests)),
		PermissionsDescriptions: make(map[string]string, len(s.PermissionsDescriptions)),
	}
	for origin, entry := range s.Domains {
		perms := make([]domain.Capability, len(entry.Permissions))
		copy(perms, entry.Permissions)
		out.Domains[origin] = domain.DomainEntry{Permissions: perms}
	}
	copy(out.PermissionsRequests, s.PermissionsRequests)
	for k, v := range s.PermissionsDescriptions {
		out.PermissionsDescriptions[k] = v
	}
	return out
}

// StateContainer is the abstract key/value store the permission store is
// built on: Get reads the current state, Update atomically replaces it via
// a pure transform, and Subscribe publishes every subsequent state.
type StateContainer interface {
	Get() State
	Update(fn func(State) State) State
	Subscribe() (<-chan State, func())
}
