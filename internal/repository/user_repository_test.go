package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sit-transcript-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func userColumns() []string {
	return []string{"id", "name", "nim", "dob", "email", "password_hash", "role", "created_at"}
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := sqlmock.NewRows(userColumns()).
		AddRow("user-1", "Budi", "2110191001", time.Now(), "budi@example.com", "hashed", "USER", time.Now())
	mock.ExpectQuery("SELECT id, name, nim").
		WithArgs("budi@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "budi@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery("SELECT id, name, nim").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Name:         "Budi",
		NIM:          "2110191001",
		DOB:          time.Date(2001, 5, 12, 0, 0, 0, 0, time.UTC),
		Email:        "budi@example.com",
		PasswordHash: "hashed",
		Role:         models.RoleUser,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID, "create assigns an id")
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepositoryListWithRequestCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := sqlmock.NewRows(append(userColumns(), "request_count")).
		AddRow("user-2", "Sari", "2110191002", time.Now(), "sari@example.com", "hashed", "USER", time.Now(), 3).
		AddRow("user-1", "Budi", "2110191001", time.Now(), "budi@example.com", "hashed", "USER", time.Now(), 0)
	mock.ExpectQuery("LEFT JOIN requests").
		WillReturnRows(rows)

	users, err := repo.ListWithRequestCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, 3, users[0].RequestCount)
	assert.Equal(t, 0, users[1].RequestCount)
}

func TestUserRepositoryCountByRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(models.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.CountByRole(context.Background(), models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}
