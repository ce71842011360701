package cart

import (
	"context"
	"sync"

	"electromart/internal/product"
	myErr "electromart/internal/types/errors"

	"go.uber.org/zap"
)

// Service - менеджер состояния корзины. Каждая мутация проходит цикл
// load -> mutate -> save, снапшот перезаписывается целиком до возврата
// управления. Пока по корзине владельца идет checkout, мутации
// отклоняются с ErrCheckoutInProgress
type Service struct {
	Store  Store
	Logger *zap.SugaredLogger

	mu       sync.Mutex
	settling map[string]struct{}
}

func NewService(store Store, logger *zap.SugaredLogger) *Service {
	return &Service{
		Store:    store,
		Logger:   logger,
		settling: make(map[string]struct{}),
	}
}

func (s *Service) isSettling(ownerID string) bool {
	_, ok := s.settling[ownerID]
	return ok
}

// GetCart возвращает текущую корзину владельца
func (s *Service) GetCart(ctx context.Context, ownerID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Store.Load(ctx, ownerID)
}

// AddToCart добавляет товар в корзину, снимая потолок остатка
// с актуального количества на складе в момент добавления
func (s *Service) AddToCart(ctx context.Context, ownerID string, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isSettling(ownerID) {
		return myErr.ErrCheckoutInProgress
	}

	c, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		return err
	}

	c.AddLine(p, p.Quantity)

	return s.Store.Save(ctx, ownerID, c)
}

// RemoveFromCart удаляет позицию из корзины (идемпотентно)
func (s *Service) RemoveFromCart(ctx context.Context, ownerID string, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isSettling(ownerID) {
		return myErr.ErrCheckoutInProgress
	}

	c, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		return err
	}

	c.RemoveLine(productID)

	return s.Store.Save(ctx, ownerID, c)
}

// UpdateQuantity меняет количество позиции. Возвращает эффективное
// количество и флаг среза по потолку остатка
func (s *Service) UpdateQuantity(
	ctx context.Context,
	ownerID string,
	productID string,
	requested int,
) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isSettling(ownerID) {
		return 0, false, myErr.ErrCheckoutInProgress
	}

	c, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		return 0, false, err
	}

	effective, clamped := c.SetQuantity(productID, requested)

	if err := s.Store.Save(ctx, ownerID, c); err != nil {
		return 0, false, err
	}

	return effective, clamped, nil
}

// ClearCart опустошает корзину владельца
func (s *Service) ClearCart(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isSettling(ownerID) {
		return myErr.ErrCheckoutInProgress
	}

	c, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		return err
	}

	c.Clear()

	return s.Store.Save(ctx, ownerID, c)
}

// BeginSettlement блокирует мутации корзины на время checkout
// и возвращает снапшот, по которому пойдет списание
func (s *Service) BeginSettlement(ctx context.Context, ownerID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isSettling(ownerID) {
		return nil, myErr.ErrCheckoutInProgress
	}

	c, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if len(c.Lines) == 0 {
		return nil, myErr.ErrEmptyCart
	}

	s.settling[ownerID] = struct{}{}

	return c, nil
}

// CompleteSettlement опустошает корзину после успешного checkout
// и снимает блокировку
func (s *Service) CompleteSettlement(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.settling, ownerID)

	c, err := s.Store.Load(ctx, ownerID)
	if err != nil {
		return err
	}

	c.Clear()

	return s.Store.Save(ctx, ownerID, c)
}

// AbortSettlement снимает блокировку, не трогая корзину
func (s *Service) AbortSettlement(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.settling, ownerID)
}
