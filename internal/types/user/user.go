package user

// CreateUser структура для регистрации пользователя
type CreateUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
