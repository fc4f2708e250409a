// Package repository holds the Postgres-backed ambient sinks this module
// persists alongside the in-memory authorization core: the grant/deny/
// revoke/request audit trail. Nothing here is consulted to make an
// authorization decision.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

// GrantAuditRepository persists domain.AuditEvent rows to the
// grant_audit_log table. It implements domain.AuditRecorder.
type GrantAuditRepository struct {
	db *sqlx.DB
}

// NewGrantAuditRepository wraps db.
func NewGrantAuditRepository(db *sqlx.DB) *GrantAuditRepository {
	return &GrantAuditRepository{db: db}
}

// Record inserts one audit event. Errors are returned to the caller, who by
// convention (see application.PermissionRequestService) logs but does not
// fail the request on a write error: the audit sink is ambient, not load
// bearing.
func (r *GrantAuditRepository) Record(ctx context.Context, event domain.AuditEvent) error {
	query := `
		INSERT INTO grant_audit_log (
			id, origin, method, decision, detail, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New(),
		string(event.Origin),
		event.Method,
		event.Decision,
		event.Detail,
		event.OccurredAt,
	)
	return err
}

// AuditEntry is one row read back from the audit log for an admin listing.
type AuditEntry struct {
	ID         uuid.UUID `db:"id"`
	Origin     string    `db:"origin"`
	Method     string    `db:"method"`
	Decision   string    `db:"decision"`
	Detail     string    `db:"detail"`
	OccurredAt time.Time `db:"occurred_at"`
}

// ListForOrigin returns the most recent audit entries for origin, newest
// first, bounded by limit.
func (r *GrantAuditRepository) ListForOrigin(ctx context.Context, origin string, limit int) ([]AuditEntry, error) {
	query := `
		SELECT id, origin, method, decision, detail, occurred_at
		FROM grant_audit_log
		WHERE origin = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	var entries []AuditEntry
	err := r.db.SelectContext(ctx, &entries, query, origin, limit)
	return entries, err
}
