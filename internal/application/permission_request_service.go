package application

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// PermissionRequestService implements the two internal methods exposed
// under the controller's configured prefix: getPermissions and
// requestPermissions.
type PermissionRequestService struct {
	store     *PermissionStore
	approve   domain.ApprovalFunc
	audit     domain.AuditRecorder
	metrics   domain.MetricsRecorder
	restricted map[string]bool
}

// NewPermissionRequestService wraps the permission store and the
// host-supplied approval function. audit and metrics default to no-ops if
// nil.
func NewPermissionRequestService(store *PermissionStore, approve domain.ApprovalFunc, restricted map[string]bool, audit domain.AuditRecorder, metrics domain.MetricsRecorder) *PermissionRequestService {
	if audit == nil {
		audit = domain.NoopAuditRecorder{}
	}
	if metrics == nil {
		metrics = domain.NoopMetricsRecorder{}
	}
	return &PermissionRequestService{store: store, approve: approve, audit: audit, metrics: metrics, restricted: restricted}
}

// GetPermissions is the getPermissions internal handler: no side effects,
// it only reads the store.
func (s *PermissionRequestService) GetPermissions(meta domain.OriginMetadata) domain.MiddlewareFunc {
	return func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
		res.Result = s.store.GetPermissionsForDomain(meta.Origin)
		end(nil)
	}
}

// RequestPermissions is the requestPermissions internal handler: the
// validate / canonicalize / enrich / fast-path / enqueue / prompt handshake.
func (s *PermissionRequestService) RequestPermissions(meta domain.OriginMetadata) domain.MiddlewareFunc {
	return func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
		requested, ok := parseRequestedPermissions(req)
		if !ok {
			end(domain.ErrInvalidRequest(req))
			return
		}
		for method, rp := range requested {
			rp.Caveats = domain.SortCaveats(rp.Caveats)
			requested[method] = rp
		}

		reqMeta := mergeOriginMetadata(meta, req)

		if s.store.HasPermissions(meta.Origin, requested) {
			res.Result = s.store.GetPermissionsForDomain(meta.Origin)
			s.metrics.ObservePermissionRequest("fast_path")
			end(nil)
			return
		}

		pending := domain.PermissionRequest{
			Origin:      meta.Origin,
			Metadata:    reqMeta,
			Permissions: requested,
			RequestedAt: time.Now(),
		}
		s.store.AddPermissionsRequest(pending)
		defer s.store.RemovePermissionsRequest(reqMeta.ID)

		approved, err := s.approve(context.Background(), pending)
		if err != nil {
			s.metrics.ObservePermissionRequest("error")
			end(domain.AsProtocolError(err))
			return
		}
		if len(approved) == 0 {
			s.metrics.ObservePermissionRequest("rejected")
			s.recordAudit(meta.Origin, "requestPermissions", "rejected", "")
			end(domain.ErrUserRejected())
			return
		}

		for method := range approved {
			if GetMethodKeyFor(method, s.restricted) == "" {
				s.metrics.ObservePermissionRequest("invalid_method")
				end(domain.ErrMethodNotFound())
				return
			}
		}

		grants := make(map[string]domain.Capability, len(approved))
		for method, rp := range approved {
			grants[method] = domain.NewCapability(method, meta.Origin, rp.Caveats)
		}
		s.store.AddPermissionsFor(meta.Origin, grants)

		s.metrics.ObservePermissionRequest("granted")
		s.recordAudit(meta.Origin, "requestPermissions", "granted", "")

		res.Result = s.store.GetPermissionsForDomain(meta.Origin)
		end(nil)
	}
}

func (s *PermissionRequestService) recordAudit(origin domain.Origin, method, decision, detail string) {
	err := s.audit.Record(context.Background(), domain.AuditEvent{
		Origin:     origin,
		Method:     method,
		Decision:   decision,
		Detail:     detail,
		OccurredAt: time.Now(),
	})
	if err != nil {
		log.Printf("permission request: audit write failed for %s: %v", origin, err)
	}
}

// parseRequestedPermissions validates req.Params[0] and converts it into
// the method-name to RequestedPermission mapping the rest of the workflow
// operates on. The first positional param must be a non-array, non-empty
// object.
func parseRequestedPermissions(req *domain.Request) (map[string]domain.RequestedPermission, bool) {
	if len(req.Params) == 0 {
		return nil, false
	}
	raw, ok := req.Params[0].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}

	out := make(map[string]domain.RequestedPermission, len(raw))
	for method, descriptor := range raw {
		rp := domain.RequestedPermission{}
		if descMap, ok := descriptor.(map[string]any); ok {
			if rawCaveats, ok := descMap["caveats"].([]any); ok {
				for _, rc := range rawCaveats {
					cm, ok := rc.(map[string]any)
					if !ok {
						continue
					}
					ctype, _ := cm["type"].(string)
					rp.Caveats = append(rp.Caveats, domain.Caveat{Type: ctype, Value: cm["value"]})
				}
			}
		}
		out[method] = rp
	}
	return out, true
}

// mergeOriginMetadata shallow-merges an optional metadata object carried as
// the second positional param under originMetadata, with originMetadata's
// own fields winning on conflict, and synthesizes metadata.id if absent
// from both sources.
func mergeOriginMetadata(originMetadata domain.OriginMetadata, req *domain.Request) domain.OriginMetadata {
	merged := originMetadata
	if len(req.Params) > 1 {
		if second, ok := req.Params[1].(map[string]any); ok {
			if md, ok := second["metadata"].(map[string]any); ok {
				if origin, ok := md["origin"].(string); ok && merged.Origin == "" {
					merged.Origin = domain.Origin(origin)
				}
				if id, ok := md["id"].(string); ok && merged.ID == "" {
					merged.ID = id
				}
			}
		}
	}
	if merged.ID == "" {
		merged.ID = uuid.NewString()
	}
	return merged
}
