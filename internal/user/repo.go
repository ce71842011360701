package user

import (
	"database/sql"
	"errors"
	"time"
	"unicode/utf8"

	myErr "electromart/internal/types/errors"
	types "electromart/internal/types/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UserDBRepository struct {
	DB      *sql.DB
	Logger  *zap.SugaredLogger
	adminID string
}

// NewUserDBRepository создает репозиторий пользователей.
// adminID - uuid администратора из конфига, по нему вычисляется роль
func NewUserDBRepository(db *sql.DB, l *zap.SugaredLogger, adminID string) *UserDBRepository {
	return &UserDBRepository{
		DB:      db,
		Logger:  l,
		adminID: adminID,
	}
}

func (ur *UserDBRepository) roleFor(userID string) string {
	if userID == ur.adminID {
		return types.RoleAdmin
	}
	return types.RoleUser
}

func (ur *UserDBRepository) CreateUser(u types.CreateUser) (*User, error) {
	if utf8.RuneCountInString(u.Password) < minPasswordLength {
		return nil, myErr.ErrWeakPassword
	}

	// Проверяем, что пользователь с такой почтой еще не зарегистрирован
	var existingID string
	err := ur.DB.QueryRow(`SELECT id FROM users WHERE email = $1`, u.Email).Scan(&existingID)
	if err == nil {
		return nil, myErr.ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		ur.Logger.Errorf("Ошибка при проверке почты %v: %v", u.Email, err)
		return nil, myErr.ErrDBInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		ur.Logger.Errorf("Ошибка при хешировании пароля: %v", err)
		return nil, myErr.ErrDBInternal
	}

	newUser := &User{
		ID:               uuid.New().String(),
		Email:            u.Email,
		PasswordHash:     string(hash),
		RegistrationDate: time.Now(),
	}
	newUser.Role = ur.roleFor(newUser.ID)

	query := `
	INSERT INTO users (id, email, password_hash, registration_date)
	VALUES ($1, $2, $3, $4)
	`
	_, err = ur.DB.Exec(query, newUser.ID, newUser.Email, newUser.PasswordHash, newUser.RegistrationDate)
	if err != nil {
		ur.Logger.Errorf("Ошибка при создании пользователя: %v", err)
		return nil, myErr.ErrDBInternal
	}

	return newUser, nil
}

func (ur *UserDBRepository) CheckUser(email, password string) (*User, error) {
	query := `
	SELECT id, email, password_hash, registration_date
	FROM users
	WHERE email = $1
	`

	u := &User{}
	err := ur.DB.QueryRow(query, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RegistrationDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		ur.Logger.Warnf("Ошибка при поиске пользователя %v: %v", email, err)
		return nil, myErr.ErrDBInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, myErr.ErrBadPassword
	}

	u.Role = ur.roleFor(u.ID)

	return u, nil
}

func (ur *UserDBRepository) Info(userID string) (*User, error) {
	query := `
	SELECT id, email, registration_date
	FROM users
	WHERE id = $1
	`

	u := &User{}
	err := ur.DB.QueryRow(query, userID).
		Scan(&u.ID, &u.Email, &u.RegistrationDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, myErr.ErrNotFound
		}
		ur.Logger.Warnf("Ошибка при получении информации о пользователе: %v", err)
		return nil, myErr.ErrDBInternal
	}

	u.Role = ur.roleFor(u.ID)

	return u, nil
}
