package product

import (
	"time"

	types "electromart/internal/types/product"
)

// Product структура товара каталога
type Product struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	Quantity  int       `json:"quantity"` // Актуальный остаток на складе
	CreatedAt time.Time `json:"created_at"`
}

// ProductRepo интерфейс репозитория каталога товаров
//
//go:generate mockgen -source=product.go -destination=../mocks/mock_product_repo.go -package=mocks
type ProductRepo interface {
	// Create добавляет товар в каталог
	Create(p types.CreateProduct) (*Product, error)
	// Delete удаляет товар из каталога
	Delete(id string) error
	// GetByID возвращает товар по id
	GetByID(id string) (*Product, error)
	// List возвращает каталог товаров (поиск по фильтру опционален)
	List(filter string) ([]Product, error)
	// GetStock возвращает актуальный остаток товара на складе
	GetStock(id string) (int, error)
	// SetStock безусловно перезаписывает остаток товара (last-write-wins)
	SetStock(id string, newQuantity int) error
	// Buy списывает одну единицу товара (покупка с карточки товара)
	Buy(id string) (int, error)
}
