package transporthandle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
	"github.com/m04kA/GlampingBackoffice/pkg/psqlbuilder"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

var selectColumns = []string{
	"id",
	"name",
	"status",
	"pairing_artifact",
	"bound_phone",
	"device_jid",
	"last_error",
	"last_activity_at",
	"created_at",
	"updated_at",
}

// Repository персистентное отражение хэндлов транспорта
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория хэндлов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает хэндл в состоянии disconnected
func (r *Repository) Create(ctx context.Context, name string) (*domain.TransportHandle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("transport_handles").
		Columns("name", "status").
		Values(name, domain.TransportDisconnected).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	h := &domain.TransportHandle{Name: name, Status: domain.TransportDisconnected}
	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&h.ID, &createdAt, &updatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time

	return h, nil
}

// GetByID получает хэндл по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TransportHandle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(selectColumns...).
		From("transport_handles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	h, err := scanHandle(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHandleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan handle: %v", ErrScanRow, err)
	}
	return h, nil
}

// List все хэндлы, опционально только в указанных статусах
func (r *Repository) List(ctx context.Context, statuses ...domain.TransportStatus) ([]*domain.TransportHandle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(selectColumns...).
		From("transport_handles").
		OrderBy("id ASC")
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		builder = builder.Where(squirrel.Eq{"status": values})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	handles := make([]*domain.TransportHandle, 0)
	for rows.Next() {
		h, err := scanHandle(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		handles = append(handles, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}
	return handles, nil
}

// SaveState сохраняет состояние хэндла после перехода
func (r *Repository) SaveState(ctx context.Context, h *domain.TransportHandle) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("transport_handles").
		Set("status", h.Status).
		Set("pairing_artifact", h.PairingArtifact).
		Set("bound_phone", h.BoundPhone).
		Set("device_jid", h.DeviceJID).
		Set("last_error", h.LastError).
		Set("last_activity_at", h.LastActivityAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": h.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveState - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SaveState - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SaveState - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrHandleNotFound
	}
	return nil
}

// TouchActivity обновляет время последней активности
func (r *Repository) TouchActivity(ctx context.Context, id int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("transport_handles").
		Set("last_activity_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: TouchActivity - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: TouchActivity - execute update: %v", ErrExecQuery, err)
	}
	return nil
}

func scanHandle(row rowScanner) (*domain.TransportHandle, error) {
	var h domain.TransportHandle
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Status,
		&h.PairingArtifact,
		&h.BoundPhone,
		&h.DeviceJID,
		&h.LastError,
		&h.LastActivityAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time
	return &h, nil
}
