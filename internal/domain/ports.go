package domain

import (
	"context"
	"time"
)

// RestrictedMethodEntry is one entry of the host-supplied restrictedMethods
// config: a human-readable description exposed via permissionsDescriptions,
// and the middleware-shaped function that implements the method.
type RestrictedMethodEntry struct {
	Description string
	Method      MiddlewareFunc
}

// ApprovalFunc is the user-approval prompt: given a pending request it
// resolves with the map of approved permissions, or an error if the host
// could not obtain a decision (distinct from an empty map, which means the
// user explicitly rejected everything).
type ApprovalFunc func(ctx context.Context, request PermissionRequest) (map[string]RequestedPermission, error)

// AuditRecorder is the sink for grant/deny/revoke/request decisions. It is
// ambient observability, never consulted to make an authorization decision.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}

// AuditEvent is one decision worth recording.
type AuditEvent struct {
	Origin     Origin
	Method     string
	Decision   string
	Detail     string
	OccurredAt time.Time
}

// MetricsRecorder is the ambient counters/histograms sink for the
// authorization middleware. Like AuditRecorder it never influences a
// decision, only observes it.
type MetricsRecorder interface {
	ObserveAuthorization(method string, allowed bool)
	ObserveCaveatFailure(caveatType string)
	ObservePermissionRequest(result string)
}

// NoopAuditRecorder discards every event. It is the Controller's default
// when no AuditRecorder is configured.
type NoopAuditRecorder struct{}

func (NoopAuditRecorder) Record(context.Context, AuditEvent) error { return nil }

// NoopMetricsRecorder discards every observation. It is the Controller's
// default when no MetricsRecorder is configured.
type NoopMetricsRecorder struct{}

func (NoopMetricsRecorder) ObserveAuthorization(string, bool)  {}
func (NoopMetricsRecorder) ObserveCaveatFailure(string)        {}
func (NoopMetricsRecorder) ObservePermissionRequest(string)    {}
