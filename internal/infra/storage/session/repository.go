package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
	"github.com/m04kA/GlampingBackoffice/pkg/psqlbuilder"
)

const table = "sessions"

var columns = []string{
	"id",
	"phone_number",
	"stage",
	"client_id",
	"booking_id",
	"contact_name",
	"email",
	"check_in",
	"check_out",
	"guest_count",
	"accommodation_type",
	"total_price",
	"blocked",
	"blocked_until",
	"last_interaction_at",
	"notes",
	"created_at",
	"updated_at",
}

// mergeOnConflict при повторной вставке того же номера накладывает только непустые поля
const mergeOnConflict = `ON CONFLICT (phone_number) DO UPDATE SET
	client_id = COALESCE(EXCLUDED.client_id, sessions.client_id),
	contact_name = COALESCE(EXCLUDED.contact_name, sessions.contact_name),
	email = COALESCE(EXCLUDED.email, sessions.email),
	check_in = COALESCE(EXCLUDED.check_in, sessions.check_in),
	check_out = COALESCE(EXCLUDED.check_out, sessions.check_out),
	guest_count = COALESCE(EXCLUDED.guest_count, sessions.guest_count),
	accommodation_type = COALESCE(EXCLUDED.accommodation_type, sessions.accommodation_type),
	total_price = COALESCE(EXCLUDED.total_price, sessions.total_price),
	last_interaction_at = GREATEST(EXCLUDED.last_interaction_at, sessions.last_interaction_at),
	notes = COALESCE(EXCLUDED.notes, sessions.notes),
	updated_at = NOW()`

// Repository репозиторий сессий диалогов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория сессий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает сессию для номера или сливает патч с существующей
// Выполняется одним запросом, поэтому параллельные вызовы не создают дублей
func (r *Repository) Upsert(ctx context.Context, phone string, patch domain.SessionPatch) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"phone_number",
			"stage",
			"client_id",
			"contact_name",
			"email",
			"check_in",
			"check_out",
			"guest_count",
			"accommodation_type",
			"total_price",
			"last_interaction_at",
			"notes",
		).
		Values(
			phone,
			domain.StageInitial,
			patch.ClientID,
			patch.ContactName,
			patch.Email,
			patch.CheckIn,
			patch.CheckOut,
			patch.GuestCount,
			patch.AccommodationType,
			patch.TotalPrice,
			patch.LastInteractionAt,
			patch.Notes,
		).
		Suffix(mergeOnConflict + " RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	s, err := scanSession(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}
	return s, nil
}

// GetByPhone получает сессию по номеру
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*domain.Session, error) {
	return r.getOne(ctx, "GetByPhone", squirrel.Eq{"phone_number": phone})
}

// GetByID получает сессию по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From(table).Where(where)
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	s, err := scanSession(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan session: %v", ErrScanRow, op, err)
	}
	return s, nil
}

// UpdateStage выставляет стадию, время последнего взаимодействия и непустые поля патча
func (r *Repository) UpdateStage(ctx context.Context, phone string, stage domain.Stage, patch domain.SessionPatch, at time.Time) (*domain.Session, error) {
	set := patchSetMap(patch)
	set["stage"] = stage
	set["last_interaction_at"] = at

	return r.updateReturning(ctx, "UpdateStage", squirrel.Eq{"phone_number": phone}, set)
}

// SetBlocked включает или снимает блокировку автоответов
func (r *Repository) SetBlocked(ctx context.Context, phone string, blocked bool, until *time.Time) (*domain.Session, error) {
	set := map[string]interface{}{
		"blocked":       blocked,
		"blocked_until": until,
	}
	return r.updateReturning(ctx, "SetBlocked", squirrel.Eq{"phone_number": phone}, set)
}

// LinkBooking привязывает клиента и бронирование и выставляет стадию
func (r *Repository) LinkBooking(ctx context.Context, id int64, clientID, bookingID int64, stage domain.Stage) (*domain.Session, error) {
	set := map[string]interface{}{
		"client_id":  clientID,
		"booking_id": bookingID,
		"stage":      stage,
	}
	return r.updateReturning(ctx, "LinkBooking", squirrel.Eq{"id": id}, set)
}

// SetStageByID выставляет стадию сессии по ID
func (r *Repository) SetStageByID(ctx context.Context, id int64, stage domain.Stage) error {
	_, err := r.updateReturning(ctx, "SetStageByID", squirrel.Eq{"id": id}, map[string]interface{}{"stage": stage})
	return err
}

func (r *Repository) updateReturning(ctx context.Context, op string, where squirrel.Eq, set map[string]interface{}) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	set["updated_at"] = squirrel.Expr("NOW()")

	query, args, err := psqlbuilder.Update(table).
		SetMap(set).
		Where(where).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	s, err := scanSession(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}
	return s, nil
}

// List получает сессии по фильтру, сначала недавно активные
func (r *Repository) List(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		OrderBy("last_interaction_at DESC NULLS LAST", "id DESC")

	if filter.Stage != nil {
		builder = builder.Where(squirrel.Eq{"stage": *filter.Stage})
	}
	if filter.Blocked != nil {
		builder = builder.Where(squirrel.Eq{"blocked": *filter.Blocked})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
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

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}
	return sessions, nil
}

// ReleaseExpiredBlocks снимает блокировки с истёкшим blocked_until
func (r *Repository) ReleaseExpiredBlocks(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("blocked", false).
		Set("blocked_until", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"blocked": true}).
		Where(squirrel.NotEq{"blocked_until": nil}).
		Where(squirrel.LtOrEq{"blocked_until": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseExpiredBlocks - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseExpiredBlocks - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseExpiredBlocks - get rows affected: %v", ErrExecQuery, err)
	}
	return affected, nil
}

// patchSetMap колонки для UPDATE только из непустых полей патча
func patchSetMap(p domain.SessionPatch) map[string]interface{} {
	set := make(map[string]interface{})
	if p.ClientID != nil {
		set["client_id"] = *p.ClientID
	}
	if p.ContactName != nil {
		set["contact_name"] = *p.ContactName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.CheckIn != nil {
		set["check_in"] = *p.CheckIn
	}
	if p.CheckOut != nil {
		set["check_out"] = *p.CheckOut
	}
	if p.GuestCount != nil {
		set["guest_count"] = *p.GuestCount
	}
	if p.AccommodationType != nil {
		set["accommodation_type"] = *p.AccommodationType
	}
	if p.TotalPrice != nil {
		set["total_price"] = *p.TotalPrice
	}
	if p.LastInteractionAt != nil {
		set["last_interaction_at"] = *p.LastInteractionAt
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	return set
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.PhoneNumber,
		&s.Stage,
		&s.ClientID,
		&s.BookingID,
		&s.ContactName,
		&s.Email,
		&s.CheckIn,
		&s.CheckOut,
		&s.GuestCount,
		&s.AccommodationType,
		&s.TotalPrice,
		&s.Blocked,
		&s.BlockedUntil,
		&s.LastInteractionAt,
		&s.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}
