package paymentlink

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
	"github.com/m04kA/GlampingBackoffice/pkg/ptr"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func linkRows(status domain.PaymentLinkStatus, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(selectColumns).AddRow(
		int64(5), int64(10), int64(1), "GL-10-ABCD", 45000.0, "KZT", "https://pay.example.kz/GL-10-ABCD",
		nil, string(status), expiresAt, nil, nil, expiresAt, expiresAt,
	)
}

func TestExpireOverdue_OnlyUnverifiedLinks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE payment_links SET status = $1, updated_at = NOW() WHERE status IN ($2,$3) AND expires_at <= $4").
		WithArgs(domain.PaymentExpired, "pending", "proof_submitted", now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	expired, err := repo.ExpireOverdue(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_LocksRowInsideTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	expiresAt := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, booking_id, session_id, reference, amount, currency, external_payment_url, proof_artifact_url, status, expires_at, verified_by, verified_at, created_at, updated_at FROM payment_links WHERE id = $1 FOR UPDATE").
		WithArgs(int64(5)).
		WillReturnRows(linkRows(domain.PaymentProofSubmitted, expiresAt))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	link, err := repo.GetByID(dbmetrics.WithTx(context.Background(), tx), 5)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.Equal(t, domain.PaymentProofSubmitted, link.Status)
	assert.Equal(t, "GL-10-ABCD", link.Reference)
	assert.Nil(t, link.VerifiedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	verifiedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE payment_links SET status = $1, proof_artifact_url = $2, verified_by = $3, verified_at = $4, updated_at = NOW() WHERE id = $5").
		WithArgs(domain.PaymentVerified, "https://files.example.kz/proof.jpg", "admin-1", verifiedAt, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.PaymentLink{
		ID:               99,
		Status:           domain.PaymentVerified,
		ProofArtifactURL: ptr.Ptr("https://files.example.kz/proof.jpg"),
		VerifiedBy:       ptr.Ptr("admin-1"),
		VerifiedAt:       &verifiedAt,
	})

	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
