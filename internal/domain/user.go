package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole представляет роль оператора back office
type UserRole string

const (
	RoleAdmin UserRole = "admin" // Владелец/менеджер: удаление партий, отмена подтвержденных броней
	RoleStaff UserRole = "staff" // Сотрудник: закупки, бронирования
)

// User - оператор, работающий с консолью
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Никогда не возвращаем в JSON
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         UserRole   `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin проверяет, является ли оператор администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail приводит email к каноничному виду для поиска и уникальности
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate проверяет корректность данных оператора
func (u *User) Validate() error {
	u.Email = NormalizeEmail(u.Email)
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(u.FullName) == "" {
		return ErrInvalidUserData
	}
	if u.Role != RoleAdmin && u.Role != RoleStaff {
		return ErrInvalidRole
	}
	return nil
}
