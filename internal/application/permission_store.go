// Package application hosts the capability-middleware components that sit
// above the caveat registry and the state container: the permission store,
// the method router, the restricted-method executor, the permission-request
// workflow, and the controller that wires them into a single middleware.
package application

import (
	"context"
	"log"

	"github.com/opena2a/rpc-capabilities/internal/domain"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/store"
)

// PermissionStore is the sole owner of the state container: every read and
// write the rest of the application package needs goes through it. mirror is
// optional and is only ever used to opportunistically warm or drop a cache
// entry; a nil mirror degrades silently to "no cache".
type PermissionStore struct {
	container store.StateContainer
	mirror    *store.RedisMirror
}

// NewPermissionStore wraps container. mirror may be nil.
func NewPermissionStore(container store.StateContainer, mirror *store.RedisMirror) *PermissionStore {
	return &PermissionStore{container: container, mirror: mirror}
}

func (s *PermissionStore) mirrorDomain(origin domain.Origin, entry domain.DomainEntry) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.MirrorDomain(context.Background(), origin, entry); err != nil {
		log.Printf("permission store: mirror write failed for %s: %v", origin, err)
	}
}

func (s *PermissionStore) invalidateMirror(origin domain.Origin) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Invalidate(context.Background(), origin); err != nil {
		log.Printf("permission store: mirror invalidate failed for %s: %v", origin, err)
	}
}

// GetDomains returns every origin currently holding at least one capability.
func (s *PermissionStore) GetDomains() map[domain.Origin]domain.DomainEntry {
	return s.container.Get().Domains
}

// GetPermissionsForDomain returns origin's capability list, or nil if origin
// holds none.
func (s *PermissionStore) GetPermissionsForDomain(origin domain.Origin) []domain.Capability {
	entry, ok := s.container.Get().Domains[origin]
	if !ok {
		return nil
	}
	return entry.Permissions
}

// GetPermission returns the capability origin holds for parentCapability, if
// any.
func (s *PermissionStore) GetPermission(origin domain.Origin, parentCapability string) (domain.Capability, bool) {
	for _, cap := range s.GetPermissionsForDomain(origin) {
		if cap.ParentCapability == parentCapability {
			return cap, true
		}
	}
	return domain.Capability{}, false
}

// HasPermissions reports whether, for every method in requested, origin
// holds a capability for that method whose caveats are equal as multisets
// to the requested caveats. Callers must canonicalize requested caveats
// first; HasPermissions does not re-sort input.
func (s *PermissionStore) HasPermissions(origin domain.Origin, requested map[string]domain.RequestedPermission) bool {
	held := s.GetPermissionsForDomain(origin)
	for method, want := range requested {
		cap, ok := findCapabilityFor(held, method)
		if !ok {
			return false
		}
		if !domain.CaveatsCanonicalEqual(want.Caveats, cap.Caveats) {
			return false
		}
	}
	return true
}

func findCapabilityFor(held []domain.Capability, method string) (domain.Capability, bool) {
	for _, cap := range held {
		if cap.ParentCapability == method {
			return cap, true
		}
	}
	return domain.Capability{}, false
}

// AddPermissionsFor grants newPermissions to origin: for each method, any
// existing capability for that method is removed before the freshly
// constructed capability is appended. Other capabilities are untouched.
func (s *PermissionStore) AddPermissionsFor(origin domain.Origin, newPermissions map[string]domain.Capability) {
	var updated domain.DomainEntry
	s.container.Update(func(st store.State) store.State {
		entry := st.Domains[origin]
		kept := make([]domain.Capability, 0, len(entry.Permissions)+len(newPermissions))
		for _, existing := range entry.Permissions {
			if _, replaced := newPermissions[existing.ParentCapability]; !replaced {
				kept = append(kept, existing)
			}
		}
		for _, cap := range newPermissions {
			kept = append(kept, cap)
		}
		entry.Permissions = kept
		applyDomain(st, origin, entry)
		updated = entry
		return st
	})
	s.mirrorDomain(origin, updated)
}

// RemovePermissionsFor filters out every capability on origin whose
// parentCapability appears in methods.
func (s *PermissionStore) RemovePermissionsFor(origin domain.Origin, methods []string) {
	drop := make(map[string]bool, len(methods))
	for _, m := range methods {
		drop[m] = true
	}
	var updated domain.DomainEntry
	s.container.Update(func(st store.State) store.State {
		entry := st.Domains[origin]
		kept := make([]domain.Capability, 0, len(entry.Permissions))
		for _, existing := range entry.Permissions {
			if !drop[existing.ParentCapability] {
				kept = append(kept, existing)
			}
		}
		entry.Permissions = kept
		applyDomain(st, origin, entry)
		updated = entry
		return st
	})
	if len(updated.Permissions) == 0 {
		s.invalidateMirror(origin)
		return
	}
	s.mirrorDomain(origin, updated)
}

// applyDomain stores entry under origin, or removes the key entirely if
// entry has no permissions left — no empty domain entry ever persists.
func applyDomain(st store.State, origin domain.Origin, entry domain.DomainEntry) {
	if len(entry.Permissions) == 0 {
		delete(st.Domains, origin)
		return
	}
	st.Domains[origin] = entry
}

// SetDomain overwrites origin's entire capability list, or removes the
// domain key entirely if entry.Permissions is empty.
func (s *PermissionStore) SetDomain(origin domain.Origin, entry domain.DomainEntry) {
	s.container.Update(func(st store.State) store.State {
		if len(entry.Permissions) == 0 {
			delete(st.Domains, origin)
		} else {
			st.Domains[origin] = entry
		}
		return st
	})
	if len(entry.Permissions) == 0 {
		s.invalidateMirror(origin)
		return
	}
	s.mirrorDomain(origin, entry)
}

// ClearDomains replaces the entire domain registry with the empty mapping.
func (s *PermissionStore) ClearDomains() {
	var cleared []domain.Origin
	s.container.Update(func(st store.State) store.State {
		for origin := range st.Domains {
			cleared = append(cleared, origin)
		}
		st.Domains = make(map[domain.Origin]domain.DomainEntry)
		return st
	})
	for _, origin := range cleared {
		s.invalidateMirror(origin)
	}
}

// AddPermissionsRequest enqueues a pending permission request and returns
// the stored copy (with RequestedAt populated by the caller beforehand).
func (s *PermissionStore) AddPermissionsRequest(req domain.PermissionRequest) domain.PermissionRequest {
	s.container.Update(func(st store.State) store.State {
		st.PermissionsRequests = append(st.PermissionsRequests, req)
		return st
	})
	return req
}

// RemovePermissionsRequest drops the pending request carrying metadata.id.
// It is always called from a defer, regardless of how the approval
// resolved, so the queue never accumulates stale entries.
func (s *PermissionStore) RemovePermissionsRequest(id string) {
	s.container.Update(func(st store.State) store.State {
		kept := make([]domain.PermissionRequest, 0, len(st.PermissionsRequests))
		for _, r := range st.PermissionsRequests {
			if r.Metadata.ID != id {
				kept = append(kept, r)
			}
		}
		st.PermissionsRequests = kept
		return st
	})
}

// GetPermissionsRequests returns every pending permission request.
func (s *PermissionStore) GetPermissionsRequests() []domain.PermissionRequest {
	return s.container.Get().PermissionsRequests
}

// PublishDescriptions seeds the store's human-readable method descriptions,
// called once at controller construction time from the restricted-method
// registry.
func (s *PermissionStore) PublishDescriptions(descriptions map[string]string) {
	s.container.Update(func(st store.State) store.State {
		st.PermissionsDescriptions = descriptions
		return st
	})
}

// PermissionsDescriptions returns the method-key to human-readable
// description mapping.
func (s *PermissionStore) PermissionsDescriptions() map[string]string {
	return s.container.Get().PermissionsDescriptions
}

// Subscribe exposes the underlying container's change feed, e.g. for an
// admin UI pushing live updates.
func (s *PermissionStore) Subscribe() (<-chan store.State, func()) {
	return s.container.Subscribe()
}
