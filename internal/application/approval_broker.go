package application

import (
	"context"
	"sync"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// approvalResult is what a resolved pending approval carries back to the
// goroutine blocked in Await: either the approved subset of permissions, or
// an error (distinct from an empty, explicitly-rejected map).
type approvalResult struct {
	approved map[string]domain.RequestedPermission
	err      error
}

// pendingApproval is one outstanding requestPermissions call waiting on a
// human decision delivered through the admin HTTP surface.
type pendingApproval struct {
	request domain.PermissionRequest
	resolve chan approvalResult
}

// ApprovalBroker realizes domain.ApprovalFunc without a UI: it parks the
// calling goroutine on a channel keyed by the request's metadata id until an
// admin resolves it through Approve/Reject, or the caller's context is
// cancelled (typically by a timeout applied at the call site).
type ApprovalBroker struct {
	mu      sync.Mutex
	pending map[string]*pendingApproval
}

// NewApprovalBroker returns an empty broker.
func NewApprovalBroker() *ApprovalBroker {
	return &ApprovalBroker{pending: make(map[string]*pendingApproval)}
}

// Await blocks until request.Metadata.ID is resolved via Approve or Reject,
// or ctx is done. It implements domain.ApprovalFunc.
func (b *ApprovalBroker) Await(ctx context.Context, request domain.PermissionRequest) (map[string]domain.RequestedPermission, error) {
	id := request.Metadata.ID
	entry := &pendingApproval{request: request, resolve: make(chan approvalResult, 1)}

	b.mu.Lock()
	b.pending[id] = entry
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	select {
	case result := <-entry.resolve:
		return result.approved, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pending returns a snapshot of every outstanding approval request, keyed by
// its metadata id, for an admin listing endpoint.
func (b *ApprovalBroker) Pending() map[string]domain.PermissionRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]domain.PermissionRequest, len(b.pending))
	for id, entry := range b.pending {
		out[id] = entry.request
	}
	return out
}

// Get returns the pending request carrying id, if still outstanding.
func (b *ApprovalBroker) Get(id string) (domain.PermissionRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.pending[id]
	if !ok {
		return domain.PermissionRequest{}, false
	}
	return entry.request, true
}

// Approve resolves the pending request carrying id with approved. An empty
// map has the same effect as Reject: the permission-request workflow treats
// it as a user rejection. Approve reports false if id is not outstanding
// (already resolved, timed out, or never existed).
func (b *ApprovalBroker) Approve(id string, approved map[string]domain.RequestedPermission) bool {
	return b.resolve(id, approvalResult{approved: approved})
}

// Reject resolves the pending request carrying id with an explicit empty
// grant, which the permission-request workflow treats as a user rejection.
func (b *ApprovalBroker) Reject(id string) bool {
	return b.resolve(id, approvalResult{approved: map[string]domain.RequestedPermission{}})
}

func (b *ApprovalBroker) resolve(id string, result approvalResult) bool {
	b.mu.Lock()
	entry, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}
	entry.resolve <- result
	return true
}
