package cart

import (
	"electromart/internal/product"
)

// Line - позиция корзины. MaxQuantity - потолок остатка, снятый в момент
// добавления товара; он может устареть относительно склада, актуальный
// остаток корзина никогда не читает (это делает checkout).
type Line struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"max_quantity"`
}

// Cart - упорядоченный набор позиций без дублей по id
type Cart struct {
	Lines []Line `json:"lines"`
}

// Reconcile - политика сверки количества с потолком остатка.
// Возвращает эффективное количество и флаг того, что запрос был срезан
func Reconcile(requested, maxQuantity int) (int, bool) {
	if requested > maxQuantity {
		return maxQuantity, true
	}
	return requested, false
}

func (c *Cart) find(id string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// AddLine добавляет товар в корзину. Если товар уже лежит в корзине,
// количество увеличивается на 1 без сверки с потолком - потолок
// применяется лениво при изменении количества
func (c *Cart) AddLine(p product.Product, capturedMax int) {
	if i := c.find(p.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}

	c.Lines = append(c.Lines, Line{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Image:       p.Image,
		Quantity:    1,
		MaxQuantity: capturedMax,
	})
}

// RemoveLine удаляет позицию. Отсутствующий id не является ошибкой
func (c *Cart) RemoveLine(id string) {
	if i := c.find(id); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// SetQuantity устанавливает количество позиции. Количество меньше 1
// удаляет позицию целиком - нулевых позиций в корзине не бывает.
// Возвращает эффективное количество и флаг среза по потолку
func (c *Cart) SetQuantity(id string, requested int) (int, bool) {
	if requested < 1 {
		c.RemoveLine(id)
		return 0, false
	}

	i := c.find(id)
	if i < 0 {
		return 0, false
	}

	effective, clamped := Reconcile(requested, c.Lines[i].MaxQuantity)
	c.Lines[i].Quantity = effective

	return effective, clamped
}

// Clear опустошает корзину
func (c *Cart) Clear() {
	c.Lines = nil
}

// ItemCount - суммарное количество единиц товара (не число позиций)
func (c *Cart) ItemCount() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// Total - сумма цена*количество по всем позициям, всегда пересчитывается
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}
