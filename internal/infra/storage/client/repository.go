package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
	"github.com/m04kA/GlampingBackoffice/pkg/psqlbuilder"
)

// Repository репозиторий клиентов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindOrCreate возвращает клиента с телефоном c.Phone, создавая его при отсутствии
// Уникальность обеспечивает индекс clients_phone_key: при гонке вставка ничего
// не делает, а существующая строка читается повторно. created == true, если строка вставлена этим вызовом.
func (r *Repository) FindOrCreate(ctx context.Context, c *domain.Client) (*domain.Client, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("clients").
		Columns("name", "phone", "email", "source").
		Values(c.Name, c.Phone, c.Email, c.Source).
		Suffix("ON CONFLICT (phone) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: FindOrCreate - build insert query: %v", ErrBuildQuery, err)
	}

	created := *c
	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&created.ID, &createdAt, &updatedAt)
	switch {
	case err == nil:
		created.CreatedAt = createdAt.Time
		created.UpdatedAt = updatedAt.Time
		return &created, true, nil
	case errors.Is(err, sql.ErrNoRows):
		// строка уже существует
	default:
		return nil, false, fmt.Errorf("%w: FindOrCreate - execute insert: %v", ErrExecQuery, err)
	}

	existing, err := r.GetByPhone(ctx, c.Phone)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByPhone получает клиента по телефону
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	return r.getOne(ctx, "GetByPhone", squirrel.Eq{"phone": phone})
}

// GetByID получает клиента по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Client, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "phone", "email", "source", "created_at", "updated_at").
		From("clients").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var c domain.Client
	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Source,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan client: %v", ErrScanRow, op, err)
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}
