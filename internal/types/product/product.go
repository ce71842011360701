package product

// CreateProduct - форма для добавления товара в каталог
type CreateProduct struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// ChangeQuantity - форма для изменения остатка товара администратором
type ChangeQuantity struct {
	Quantity int `json:"quantity"`
}
