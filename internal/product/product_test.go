package product

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	types "electromart/internal/types/product"
	myErr "electromart/internal/types/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupTestRepo(t *testing.T) (*ProductDBRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t).Sugar()

	return NewProductDBRepository(db, logger), mock
}

func TestCreate(t *testing.T) {
	repo, mock := setupTestRepo(t)

	createdAt := time.Now()
	create := types.CreateProduct{
		Title:    "Механическая клавиатура",
		Price:    45.00,
		Image:    "https://img.example/kb.png",
		Quantity: 5,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs(create.Title, create.Price, create.Image, create.Quantity).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "price", "image", "quantity", "created_at"},
		).AddRow("id-1", create.Title, create.Price, create.Image, create.Quantity, createdAt))

	p, err := repo.Create(create)
	require.NoError(t, err)

	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, create.Title, p.Title)
	assert.InDelta(t, 45.00, p.Price, 1e-9)
	assert.Equal(t, 5, p.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Create(types.CreateProduct{Title: "x"})
	assert.ErrorIs(t, err, myErr.ErrDBInternal)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		result  driver.Result
		wantErr error
	}{
		{name: "успешное удаление", result: sqlmock.NewResult(0, 1), wantErr: nil},
		{name: "товар не найден", result: sqlmock.NewResult(0, 0), wantErr: myErr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupTestRepo(t)

			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).
				WithArgs("id-1").
				WillReturnResult(tt.result)

			err := repo.Delete("id-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	repo, mock := setupTestRepo(t)

	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, price, image, quantity, created_at")).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "price", "image", "quantity", "created_at"},
		).AddRow("id-1", "Мышь", 19.99, "mouse.png", 7, createdAt))

	p, err := repo.GetByID("id-1")
	require.NoError(t, err)
	assert.Equal(t, "Мышь", p.Title)
	assert.Equal(t, 7, p.Quantity)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, price, image, quantity, created_at")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "price", "image", "quantity", "created_at"},
		))

	_, err := repo.GetByID("missing")
	assert.ErrorIs(t, err, myErr.ErrNotFound)
}

func TestList(t *testing.T) {
	repo, mock := setupTestRepo(t)

	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "price", "image", "quantity", "created_at"},
		).
			AddRow("id-1", "Клавиатура", 45.00, "kb.png", 5, createdAt).
			AddRow("id-2", "Мышь", 19.99, "mouse.png", 7, createdAt))

	products, err := repo.List("")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Клавиатура", products[0].Title)
	assert.Equal(t, "Мышь", products[1].Title)
}

func TestList_WithFilter(t *testing.T) {
	repo, mock := setupTestRepo(t)

	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(title) LIKE")).
		WithArgs("клав").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "price", "image", "quantity", "created_at"},
		).AddRow("id-1", "Клавиатура", 45.00, "kb.png", 5, createdAt))

	products, err := repo.List("клав")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "id-1", products[0].ID)
}

func TestGetStock(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM products")).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(4))

	quantity, err := repo.GetStock("id-1")
	require.NoError(t, err)
	assert.Equal(t, 4, quantity)
}

func TestGetStock_NotFound(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM products")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))

	_, err := repo.GetStock("missing")
	assert.ErrorIs(t, err, myErr.ErrNotFound)
}

func TestSetStock(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET quantity")).
		WithArgs(3, "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetStock("id-1", 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStock_NotFound(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET quantity")).
		WithArgs(3, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SetStock("missing", 3), myErr.ErrNotFound)
}

func TestBuy(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM products")).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET quantity")).
		WithArgs(1, "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	newQuantity, err := repo.Buy("id-1")
	require.NoError(t, err)
	assert.Equal(t, 1, newQuantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuy_OutOfStock(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM products")).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(0))

	_, err := repo.Buy("id-1")
	assert.ErrorIs(t, err, myErr.ErrOutOfStock)
}
