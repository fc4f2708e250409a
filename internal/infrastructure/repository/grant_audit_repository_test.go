package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

func setupAuditTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestGrantAuditRepository_Record(t *testing.T) {
	db, mock := setupAuditTestDB(t)
	defer db.Close()

	repo := NewGrantAuditRepository(db)
	event := domain.AuditEvent{
		Origin:     domain.Origin("https://wallet.example"),
		Method:     "eth_sendTransaction",
		Decision:   "granted",
		Detail:     "",
		OccurredAt: time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grant_audit_log")).
		WithArgs(sqlmock.AnyArg(), string(event.Origin), event.Method, event.Decision, event.Detail, event.OccurredAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Record(context.Background(), event)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantAuditRepository_Record_PropagatesError(t *testing.T) {
	db, mock := setupAuditTestDB(t)
	defer db.Close()

	repo := NewGrantAuditRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grant_audit_log")).
		WillReturnError(sql.ErrConnDone)

	err := repo.Record(context.Background(), domain.AuditEvent{OccurredAt: time.Now()})
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestGrantAuditRepository_ListForOrigin(t *testing.T) {
	db, mock := setupAuditTestDB(t)
	defer db.Close()

	repo := NewGrantAuditRepository(db)
	rows := sqlmock.NewRows([]string{"id", "origin", "method", "decision", "detail", "occurred_at"}).
		AddRow("11111111-1111-1111-1111-111111111111", "https://wallet.example", "eth_sendTransaction", "granted", "", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, origin, method, decision, detail, occurred_at")).
		WithArgs("https://wallet.example", 10).
		WillReturnRows(rows)

	entries, err := repo.ListForOrigin(context.Background(), "https://wallet.example", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "eth_sendTransaction", entries[0].Method)
}
