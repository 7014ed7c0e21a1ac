package transcript

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
	"github.com/m04kA/GlampingBackoffice/pkg/psqlbuilder"
)

// Repository журнал переписки, только добавление
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория переписки
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись в журнал
func (r *Repository) Append(ctx context.Context, entry *domain.TranscriptEntry) (*domain.TranscriptEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("transcript_entries").
		Columns("client_id", "source", "direction", "content", "delivery_status").
		Values(entry.ClientID, entry.Source, entry.Direction, entry.Content, entry.DeliveryStatus).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	created := *entry
	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&created.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}
	created.CreatedAt = createdAt.Time

	return &created, nil
}

// ListByClient переписка клиента в хронологическом порядке
func (r *Repository) ListByClient(ctx context.Context, clientID int64, limit, offset uint64) ([]*domain.TranscriptEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("id", "client_id", "source", "direction", "content", "delivery_status", "created_at").
		From("transcript_entries").
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	if offset > 0 {
		builder = builder.Offset(offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.TranscriptEntry, 0)
	for rows.Next() {
		var e domain.TranscriptEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Source, &e.Direction, &e.Content, &e.DeliveryStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListByClient - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByClient - rows error: %v", ErrScanRow, err)
	}
	return entries, nil
}
