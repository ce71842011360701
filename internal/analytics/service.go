package analytics

import (
	"context"

	"electromart/internal/kafka"

	"go.uber.org/zap"
)

type Service struct {
	repo   *Repository
	logger *zap.SugaredLogger
}

func NewService(repo *Repository, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ProcessEvent(ctx context.Context, event kafka.Event) error {
	if len(event.ProductIDs) == 0 {
		return nil // Игнорируем события без товаров
	}

	weights := make(map[string]int)
	switch event.Type {
	case kafka.EventTypeView:
		for _, id := range event.ProductIDs {
			weights[id] += 1
		}
	case kafka.EventTypeAddToCart:
		for _, id := range event.ProductIDs {
			weights[id] += 2
		}
	case kafka.EventTypePurchase:
		for _, id := range event.ProductIDs {
			weights[id] += 3
		}
	}

	if len(weights) == 0 {
		return nil
	}

	return s.repo.UpdatePopularity(ctx, weights)
}

func (s *Service) GetTopProducts(ctx context.Context, limit int) ([]string, error) {
	return s.repo.GetTopProducts(ctx, limit)
}
