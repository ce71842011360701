package product

import (
	"database/sql"
	"errors"

	types "electromart/internal/types/product"
	myErr "electromart/internal/types/errors"

	"go.uber.org/zap"
)

type ProductDBRepository struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewProductDBRepository(db *sql.DB, l *zap.SugaredLogger) *ProductDBRepository {
	return &ProductDBRepository{
		DB:     db,
		Logger: l,
	}
}

func (pr *ProductDBRepository) Create(p types.CreateProduct) (*Product, error) {
	var newProduct Product

	query := `
	INSERT INTO products (
		title,
		price,
		image,
		quantity
	) VALUES ($1, $2, $3, $4)
	RETURNING id, title, price, image, quantity, created_at
	`

	err := pr.DB.QueryRow(
		query,
		p.Title,
		p.Price,
		p.Image,
		p.Quantity,
	).Scan(
		&newProduct.ID,
		&newProduct.Title,
		&newProduct.Price,
		&newProduct.Image,
		&newProduct.Quantity,
		&newProduct.CreatedAt,
	)

	if err != nil {
		pr.Logger.Errorf("Ошибка при добавлении товара: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return &newProduct, nil
}

func (pr *ProductDBRepository) Delete(id string) error {
	query := `
	DELETE FROM products
	WHERE id = $1
	`

	res, err := pr.DB.Exec(query, id)
	if err != nil {
		pr.Logger.Errorf("Ошибка при удалении товара %v: %v", id, err)
		return myErr.ErrDBInternal
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return myErr.ErrDBInternal
	}
	if rowsAffected == 0 {
		return myErr.ErrNotFound
	}

	return nil
}

func (pr *ProductDBRepository) GetByID(id string) (*Product, error) {
	query := `
	SELECT id, title, price, image, quantity, created_at
	FROM products
	WHERE id = $1
	`

	p := &Product{}
	err := pr.DB.QueryRow(query, id).
		Scan(&p.ID, &p.Title, &p.Price, &p.Image, &p.Quantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		pr.Logger.Errorf("Ошибка при получении товара %v: %v", id, err)
		return nil, myErr.ErrDBInternal
	}

	return p, nil
}

// List возвращает каталог. Непустой filter сужает выборку по подстроке в названии,
// полнотекстовый поиск живет отдельно в elastic_search.
func (pr *ProductDBRepository) List(filter string) ([]Product, error) {
	query := `
	SELECT id, title, price, image, quantity, created_at
	FROM products
	ORDER BY created_at DESC
	`
	args := []interface{}{}

	if filter != "" {
		query = `
	SELECT id, title, price, image, quantity, created_at
	FROM products
	WHERE LOWER(title) LIKE '%' || LOWER($1) || '%'
	ORDER BY created_at DESC
	`
		args = append(args, filter)
	}

	rows, err := pr.DB.Query(query, args...)
	if err != nil {
		pr.Logger.Errorf("Ошибка при получении каталога: %v", err)
		return nil, myErr.ErrDBInternal
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Image, &p.Quantity, &p.CreatedAt)
		if err != nil {
			return nil, myErr.ErrDBInternal
		}
		products = append(products, p)
	}

	return products, nil
}

func (pr *ProductDBRepository) GetStock(id string) (int, error) {
	query := `
	SELECT quantity FROM products
	WHERE id = $1
	`

	var quantity int
	err := pr.DB.QueryRow(query, id).Scan(&quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, myErr.ErrNotFound
		}
		pr.Logger.Errorf("Ошибка при получении остатка товара %v: %v", id, err)
		return 0, myErr.ErrDBInternal
	}

	return quantity, nil
}

// SetStock перезаписывает остаток без сравнения с текущим значением.
// Побеждает последняя запись, CAS здесь нет.
func (pr *ProductDBRepository) SetStock(id string, newQuantity int) error {
	query := `
	UPDATE products SET quantity = $1
	WHERE id = $2
	`

	res, err := pr.DB.Exec(query, newQuantity, id)
	if err != nil {
		pr.Logger.Errorf("Ошибка при обновлении остатка товара %v: %v", id, err)
		return myErr.ErrDBInternal
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return myErr.ErrDBInternal
	}
	if rowsAffected == 0 {
		return myErr.ErrNotFound
	}

	return nil
}

// Buy списывает одну единицу товара и возвращает новый остаток
func (pr *ProductDBRepository) Buy(id string) (int, error) {
	quantity, err := pr.GetStock(id)
	if err != nil {
		return 0, err
	}

	if quantity <= 0 {
		return 0, myErr.ErrOutOfStock
	}

	if err := pr.SetStock(id, quantity-1); err != nil {
		return 0, err
	}

	return quantity - 1, nil
}
