package analytics

import (
	"context"

	"electromart/internal/kafka"
)

// AnalyticsRepo — интерфейс репозитория для работы с популярностью товаров.
type AnalyticsRepo interface {
	UpdatePopularity(ctx context.Context, weights map[string]int) error
	GetTopProducts(ctx context.Context, limit int) ([]string, error)
}

// AnalyticsService — интерфейс сервиса аналитики.
type AnalyticsService interface {
	ProcessEvent(ctx context.Context, event kafka.Event) error
	GetTopProducts(ctx context.Context, limit int) ([]string, error)
}
