package client

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
)

const (
	insertClient  = "INSERT INTO clients (name,phone,email,source) VALUES ($1,$2,$3,$4) ON CONFLICT (phone) DO NOTHING RETURNING id, created_at, updated_at"
	selectByPhone = "SELECT id, name, phone, email, source, created_at, updated_at FROM clients WHERE phone = $1"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func seed() *domain.Client {
	return &domain.Client{
		Name:   "Иван",
		Phone:  "+77011234567",
		Email:  "client-77011234567@placeholder.local",
		Source: domain.ClientSourceMessaging,
	}
}

func TestFindOrCreate_InsertsNewClient(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertClient).
		WithArgs("Иван", "+77011234567", "client-77011234567@placeholder.local", domain.ClientSourceMessaging).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	c, created, err := repo.FindOrCreate(context.Background(), seed())

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "+77011234567", c.Phone)
	assert.Equal(t, now, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// при конфликте по телефону вставка не возвращает строк, и клиент читается заново
func TestFindOrCreate_ReturnsExistingOnConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertClient).
		WithArgs("Иван", "+77011234567", "client-77011234567@placeholder.local", domain.ClientSourceMessaging).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))
	mock.ExpectQuery(selectByPhone).
		WithArgs("+77011234567").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "email", "source", "created_at", "updated_at"}).
			AddRow(int64(3), "Иван Петров", "+77011234567", "ivan@example.kz", "website", now, now))

	c, created, err := repo.FindOrCreate(context.Background(), seed())

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(3), c.ID)
	assert.Equal(t, "ivan@example.kz", c.Email)
	assert.Equal(t, domain.ClientSourceWebsite, c.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreate_InsertError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(insertClient).WillReturnError(sql.ErrConnDone)

	_, _, err := repo.FindOrCreate(context.Background(), seed())

	assert.ErrorIs(t, err, ErrExecQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery("SELECT id, name, phone, email, source, created_at, updated_at FROM clients WHERE id = $1").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 9)

	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
