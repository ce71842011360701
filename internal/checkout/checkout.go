package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"electromart/internal/cart"
	"electromart/internal/kafka"
	"electromart/internal/product"

	"go.uber.org/zap"
)

// Status - состояние процедуры оформления заказа.
// Idle -> Validating -> Settling -> Committed | Aborted
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSettling   Status = "settling"
	StatusCommitted  Status = "committed"
	StatusAborted    Status = "aborted"
)

const (
	orderPrefix = "EM-"
	taxRate     = 0.08
)

// Form - форма доставки и оплаты. Карточные поля собираются,
// но никуда не передаются - платежного шлюза нет
type Form struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zipCode"`
	CardNumber string `json:"cardNumber"`
	CardExpiry string `json:"cardExpiry"`
	CardCvc    string `json:"cardCvc"`
}

// Result - итог оформления, отдается клиенту как есть
type Result struct {
	Status      Status            `json:"status"`
	OrderNumber string            `json:"order_number,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`

	// Заполняются при Aborted: какая позиция не прошла и сколько
	// единиц реально доступно на складе. Ноль - валидное значение,
	// поэтому без omitempty
	FailedProductID string `json:"failed_product_id,omitempty"`
	FailedTitle     string `json:"failed_title,omitempty"`
	Available       int    `json:"available"`

	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Settlement проводит оформление заказа: валидация формы, последовательная
// сверка позиций с актуальным складом и списание остатков
type Settlement struct {
	CartService   *cart.Service
	ProductRepo   product.ProductRepo
	EventProducer kafka.EventProducer
	Logger        *zap.SugaredLogger
}

func NewSettlement(
	cs *cart.Service,
	pr product.ProductRepo,
	ep kafka.EventProducer,
	logger *zap.SugaredLogger,
) *Settlement {
	return &Settlement{
		CartService:   cs,
		ProductRepo:   pr,
		EventProducer: ep,
		Logger:        logger,
	}
}

// ValidateForm проверяет присутствие всех полей формы.
// Возвращает сообщения по каждому незаполненному полю
func ValidateForm(f Form) map[string]string {
	errs := make(map[string]string)

	if f.FirstName == "" {
		errs["firstName"] = "First name is required"
	}
	if f.LastName == "" {
		errs["lastName"] = "Last name is required"
	}
	if f.Email == "" {
		errs["email"] = "Email is required"
	}
	if f.Address == "" {
		errs["address"] = "Address is required"
	}
	if f.City == "" {
		errs["city"] = "City is required"
	}
	if f.State == "" {
		errs["state"] = "State is required"
	}
	if f.ZipCode == "" {
		errs["zipCode"] = "ZIP code is required"
	}
	if f.CardNumber == "" {
		errs["cardNumber"] = "Card number is required"
	}
	if f.CardExpiry == "" {
		errs["cardExpiry"] = "Expiry date is required"
	}
	if f.CardCvc == "" {
		errs["cardCvc"] = "CVC is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Settle оформляет заказ по корзине владельца.
//
// Списание идет по позициям последовательно и без транзакции: если на
// какой-то позиции склада не хватило, заказ переходит в Aborted, а уже
// списанные позиции НЕ компенсируются. Это сознательно сохраненное
// поведение, см. DESIGN.md.
//
// На время списания корзина владельца заблокирована от мутаций.
func (s *Settlement) Settle(ctx context.Context, ownerID string, form Form) (*Result, error) {
	// Validating: проверка полей формы блокирует оформление,
	// но не является Aborted - склад еще не трогали
	if fieldErrs := ValidateForm(form); fieldErrs != nil {
		return &Result{
			Status:      StatusValidating,
			FieldErrors: fieldErrs,
		}, nil
	}

	// Settling: берем снапшот и блокируем корзину
	snapshot, err := s.CartService.BeginSettlement(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	subtotal := snapshot.Total()

	for _, line := range snapshot.Lines {
		// Сверяемся с актуальным остатком, а не с потолком из корзины
		live, err := s.ProductRepo.GetStock(line.ID)
		if err != nil {
			s.CartService.AbortSettlement(ownerID)
			s.Logger.Errorf("Ошибка при проверке остатка %v: %v", line.ID, err)
			return nil, err
		}

		if live < line.Quantity {
			s.CartService.AbortSettlement(ownerID)
			s.Logger.Infow("checkout aborted: insufficient stock",
				"owner", ownerID,
				"product", line.ID,
				"requested", line.Quantity,
				"available", live,
			)

			return &Result{
				Status:          StatusAborted,
				FailedProductID: line.ID,
				FailedTitle:     line.Title,
				Available:       live,
			}, nil
		}

		if err := s.ProductRepo.SetStock(line.ID, live-line.Quantity); err != nil {
			s.CartService.AbortSettlement(ownerID)
			s.Logger.Errorf("Ошибка при списании остатка %v: %v", line.ID, err)
			return nil, err
		}
	}

	// Committed: все позиции списаны
	orderNumber := generateOrderNumber()

	if err := s.CartService.CompleteSettlement(ctx, ownerID); err != nil {
		// Склад уже списан, заказ считаем проведенным
		s.Logger.Warnf("Не удалось очистить корзину %v после заказа %v: %v", ownerID, orderNumber, err)
	}

	s.sendPurchaseEvent(ctx, ownerID, snapshot)

	s.Logger.Infow("checkout committed",
		"owner", ownerID,
		"order", orderNumber,
		"items", snapshot.ItemCount(),
	)

	return &Result{
		Status:      StatusCommitted,
		OrderNumber: orderNumber,
		Subtotal:    subtotal,
		Tax:         subtotal * taxRate,
		Total:       subtotal + subtotal*taxRate,
	}, nil
}

func (s *Settlement) sendPurchaseEvent(ctx context.Context, ownerID string, snapshot *cart.Cart) {
	productIDs := make([]string, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		productIDs = append(productIDs, line.ID)
	}

	event := kafka.Event{
		UserID:     ownerID,
		Type:       kafka.EventTypePurchase,
		ProductIDs: productIDs,
		Timestamp:  time.Now(),
	}
	if err := s.EventProducer.SendEvent(ctx, event); err != nil {
		s.Logger.Warnf("failed to send purchase event: %v", err)
	}
}

// generateOrderNumber - фиксированный префикс + случайные 6 цифр.
// Уникальность не гарантируется, проверки по прошлым заказам нет
func generateOrderNumber() string {
	return fmt.Sprintf("%s%d", orderPrefix, 100000+rand.Intn(900000)) // nolint:gosec
}
