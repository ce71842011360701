package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "cart:"

// Store - хранилище снапшотов корзины. Снапшот - сериализованный массив
// позиций под одним фиксированным ключом владельца
type Store interface {
	// Load читает корзину владельца. Отсутствие ключа == пустая корзина
	Load(ctx context.Context, ownerID string) (*Cart, error)
	// Save целиком перезаписывает снапшот корзины
	Save(ctx context.Context, ownerID string, c *Cart) error
}

type RedisStore struct {
	RedisClient *redis.Client
	Logger      *zap.SugaredLogger
}

func NewRedisStore(redisClient *redis.Client, logger *zap.SugaredLogger) *RedisStore {
	return &RedisStore{
		RedisClient: redisClient,
		Logger:      logger,
	}
}

func (s *RedisStore) Load(ctx context.Context, ownerID string) (*Cart, error) {
	data, err := s.RedisClient.Get(ctx, keyPrefix+ownerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Cart{}, nil
		}

		s.Logger.Errorf("Ошибка при чтении корзины %v: %v", ownerID, err)
		return nil, err
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		// Битый снапшот не фатален: сбрасываем корзину и продолжаем
		s.Logger.Warnf("Битый снапшот корзины %v, сбрасываю в пустую: %v", ownerID, err)
		return &Cart{}, nil
	}

	return &Cart{Lines: lines}, nil
}

func (s *RedisStore) Save(ctx context.Context, ownerID string, c *Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		s.Logger.Errorf("Ошибка при сериализации корзины %v: %v", ownerID, err)
		return err
	}

	// Без TTL: корзина переживает рестарты до явной очистки
	if err := s.RedisClient.Set(ctx, keyPrefix+ownerID, data, 0).Err(); err != nil {
		s.Logger.Errorf("Ошибка при сохранении корзины %v: %v", ownerID, err)
		return err
	}

	return nil
}
