package application

import (
	"errors"

	"github.com/opena2a/rpc-capabilities/internal/application/caveats"
	"github.com/opena2a/rpc-capabilities/internal/domain"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/store"
)

// Config wires a Controller: safe and restricted methods, the internal
// method prefix, the required user-approval function, and optional
// observability sinks. Store and Registry are optional; a Controller
// constructs its own in-memory defaults when they are nil.
type Config struct {
	SafeMethods         []string
	RestrictedMethods   map[string]domain.RestrictedMethodEntry
	MethodPrefix        string
	RequestUserApproval domain.ApprovalFunc
	AuditRecorder       domain.AuditRecorder
	MetricsRecorder     domain.MetricsRecorder
	Store               *PermissionStore
	Registry            caveats.Registry
}

// Controller is the façade wiring the permission store, method router,
// executor, and permission-request workflow into a single middleware entry
// point, plus the admin operations layered on top of the store.
type Controller struct {
	safeMethods             map[string]bool
	restrictedMethods       map[string]bool
	getPermissionsName      string
	requestPermissionsName  string
	store                   *PermissionStore
	executor                *Executor
	requests                *PermissionRequestService
	metrics                 domain.MetricsRecorder
	audit                   domain.AuditRecorder
}

// NewController validates cfg and wires every component. It fails if
// RequestUserApproval is absent: the controller cannot dispatch
// requestPermissions without it.
func NewController(cfg Config) (*Controller, error) {
	if cfg.RequestUserApproval == nil {
		return nil, errors.New("application: Config.RequestUserApproval is required")
	}

	safe := make(map[string]bool, len(cfg.SafeMethods))
	for _, m := range cfg.SafeMethods {
		safe[m] = true
	}
	restricted := make(map[string]bool, len(cfg.RestrictedMethods))
	descriptions := make(map[string]string, len(cfg.RestrictedMethods))
	for name, entry := range cfg.RestrictedMethods {
		restricted[name] = true
		descriptions[name] = entry.Description
	}

	audit := cfg.AuditRecorder
	if audit == nil {
		audit = domain.NoopAuditRecorder{}
	}
	metrics := cfg.MetricsRecorder
	if metrics == nil {
		metrics = domain.NoopMetricsRecorder{}
	}

	registry := cfg.Registry
	if registry == nil {
		registry = caveats.NewRegistry()
	}

	permStore := cfg.Store
	if permStore == nil {
		permStore = NewPermissionStore(store.NewMemoryStateContainer(store.EmptyState()), nil)
	}
	permStore.PublishDescriptions(descriptions)

	getName, reqName := InternalMethodNames(cfg.MethodPrefix)

	c := &Controller{
		safeMethods:            safe,
		restrictedMethods:      restricted,
		getPermissionsName:     getName,
		requestPermissionsName: reqName,
		store:                  permStore,
		executor:               NewExecutor(registry, cfg.RestrictedMethods),
		requests:               NewPermissionRequestService(permStore, cfg.RequestUserApproval, restricted, audit, metrics),
		metrics:                metrics,
		audit:                  audit,
	}
	return c, nil
}

// Middleware returns the top-level request handler for one origin: a caller
// binds it once per incoming connection/session with that origin's
// metadata, then calls it for every request that origin sends.
func (c *Controller) Middleware(meta domain.OriginMetadata) domain.MiddlewareFunc {
	getPermissions := c.requests.GetPermissions(meta)
	requestPermissions := c.requests.RequestPermissions(meta)

	return func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
		if c.safeMethods[req.Method] {
			next()
			return
		}

		switch req.Method {
		case c.getPermissionsName:
			getPermissions(req, res, next, end)
			return
		case c.requestPermissionsName:
			requestPermissions(req, res, next, end)
			return
		}

		methodKey := GetMethodKeyFor(req.Method, c.restrictedMethods)
		if methodKey == "" {
			c.metrics.ObserveAuthorization(req.Method, false)
			end(domain.ErrUnauthorized(req))
			return
		}

		perm, ok := c.store.GetPermission(meta.Origin, methodKey)
		if !ok {
			c.metrics.ObserveAuthorization(methodKey, false)
			end(domain.ErrUnauthorized(req))
			return
		}

		c.metrics.ObserveAuthorization(methodKey, true)
		c.executor.Execute(methodKey, perm, req, res, next, end)
	}
}

// Store exposes the underlying PermissionStore for admin operations: listing
// domains, inspecting or overwriting a domain's capability table, revoking a
// domain entirely, and inspecting the pending-request queue.
func (c *Controller) Store() *PermissionStore {
	return c.store
}
