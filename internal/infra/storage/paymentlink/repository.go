package paymentlink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
	"github.com/m04kA/GlampingBackoffice/pkg/psqlbuilder"
)

var selectColumns = []string{
	"id",
	"booking_id",
	"session_id",
	"reference",
	"amount",
	"currency",
	"external_payment_url",
	"proof_artifact_url",
	"status",
	"expires_at",
	"verified_by",
	"verified_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий платёжных ссылок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платёжных ссылок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую ссылку
func (r *Repository) Create(ctx context.Context, link *domain.PaymentLink) (*domain.PaymentLink, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_links").
		Columns(
			"booking_id",
			"session_id",
			"reference",
			"amount",
			"currency",
			"external_payment_url",
			"status",
			"expires_at",
		).
		Values(
			link.BookingID,
			link.SessionID,
			link.Reference,
			link.Amount,
			link.Currency,
			link.ExternalPaymentURL,
			link.Status,
			link.ExpiresAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created := *link
	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&created.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	created.CreatedAt = createdAt.Time
	created.UpdatedAt = updatedAt.Time

	return &created, nil
}

// GetByID получает ссылку по ID, в транзакции с блокировкой строки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PaymentLink, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(selectColumns...).
		From("payment_links").
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	link, err := scanLink(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan link: %v", ErrScanRow, err)
	}
	return link, nil
}

// ListByBooking ссылки бронирования, новые первыми
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.PaymentLink, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(selectColumns...).
		From("payment_links").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	links := make([]*domain.PaymentLink, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %v", ErrScanRow, err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %v", ErrScanRow, err)
	}
	return links, nil
}

// Update сохраняет изменяемые поля ссылки: статус, подтверждение оплаты, проверку
func (r *Repository) Update(ctx context.Context, link *domain.PaymentLink) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_links").
		Set("status", link.Status).
		Set("proof_artifact_url", link.ProofArtifactURL).
		Set("verified_by", link.VerifiedBy).
		Set("verified_at", link.VerifiedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": link.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// ExpireOverdue переводит просроченные неподтверждённые ссылки в expired
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_links").
		Set("status", domain.PaymentExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": []string{string(domain.PaymentPending), string(domain.PaymentProofSubmitted)}}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOverdue - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOverdue - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOverdue - get rows affected: %v", ErrExecQuery, err)
	}
	return affected, nil
}

func scanLink(row rowScanner) (*domain.PaymentLink, error) {
	var link domain.PaymentLink
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&link.ID,
		&link.BookingID,
		&link.SessionID,
		&link.Reference,
		&link.Amount,
		&link.Currency,
		&link.ExternalPaymentURL,
		&link.ProofArtifactURL,
		&link.Status,
		&link.ExpiresAt,
		&link.VerifiedBy,
		&link.VerifiedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	link.CreatedAt = createdAt.Time
	link.UpdatedAt = updatedAt.Time
	return &link, nil
}
