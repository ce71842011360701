package user

import (
	"time"

	types "electromart/internal/types/user"
)

// User структура пользователя
type User struct {
	ID               string    `json:"user_id"` // uuid
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"` // admin | user, вычисляется по admin uuid из конфига
	RegistrationDate time.Time `json:"registration_date"`
}

// UserRepo интерфейс удовлетворяющий методам сущности пользователя
//
//go:generate mockgen -source=user.go -destination=../mocks/mock_user_repo.go -package=mocks
type UserRepo interface {
	// CheckUser - проверяет пользователя по почте и паролю
	CheckUser(email, password string) (*User, error)
	// CreateUser создает пользователя
	CreateUser(u types.CreateUser) (*User, error)
	// Info возвращает информацию о пользователе
	Info(userID string) (*User, error)
}
