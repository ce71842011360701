package user

import (
	"regexp"
	"testing"
	"time"

	myErr "electromart/internal/types/errors"
	types "electromart/internal/types/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

const testAdminID = "0c9d3f2e-6a42-4f0e-8a15-b6f0f2f6d111"

func setupTestRepo(t *testing.T) (*UserDBRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t).Sugar()

	return NewUserDBRepository(db, logger, testAdminID), mock
}

func TestCreateUser(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = $1")).
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "new@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := repo.CreateUser(types.CreateUser{
		Email:    "new@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, types.RoleUser, u.Role)

	// id - валидный uuid, пароль хранится только хешем
	_, err = uuid.Parse(u.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_WeakPassword(t *testing.T) {
	repo, _ := setupTestRepo(t)

	_, err := repo.CreateUser(types.CreateUser{
		Email:    "new@example.com",
		Password: "12345",
	})
	assert.ErrorIs(t, err, myErr.ErrWeakPassword)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = $1")).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	_, err := repo.CreateUser(types.CreateUser{
		Email:    "taken@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, myErr.ErrAlreadyExists)
}

func TestCheckUser(t *testing.T) {
	repo, mock := setupTestRepo(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "password_hash", "registration_date"},
		).AddRow("user-id", "user@example.com", string(hash), time.Now()))

	u, err := repo.CheckUser("user@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "user-id", u.ID)
	assert.Equal(t, types.RoleUser, u.Role)
}

func TestCheckUser_BadPassword(t *testing.T) {
	repo, mock := setupTestRepo(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "password_hash", "registration_date"},
		).AddRow("user-id", "user@example.com", string(hash), time.Now()))

	_, err = repo.CheckUser("user@example.com", "wrong-password")
	assert.ErrorIs(t, err, myErr.ErrBadPassword)
}

func TestCheckUser_NotFound(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "password_hash", "registration_date"},
		))

	_, err := repo.CheckUser("ghost@example.com", "secret123")
	assert.ErrorIs(t, err, myErr.ErrNotFound)
}

func TestCheckUser_AdminRole(t *testing.T) {
	repo, mock := setupTestRepo(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	// Роль администратора вычисляется по совпадению id с настройкой
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "password_hash", "registration_date"},
		).AddRow(testAdminID, "admin@example.com", string(hash), time.Now()))

	u, err := repo.CheckUser("admin@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, u.Role)
}

func TestInfo(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, registration_date")).
		WithArgs("user-id").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "registration_date"},
		).AddRow("user-id", "user@example.com", time.Now()))

	u, err := repo.Info("user-id")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", u.Email)
	assert.Equal(t, types.RoleUser, u.Role)
}

func TestInfo_NotFound(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, registration_date")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "registration_date"}))

	_, err := repo.Info("missing")
	assert.ErrorIs(t, err, myErr.ErrNotFound)
}
