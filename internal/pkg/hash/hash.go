package hash

import (
	"github.com/bdticketpro/ticketpro/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost - стоимость хеширования по умолчанию (12)
	DefaultCost = 12

	// MinPasswordLength - минимальная длина пароля оператора
	MinPasswordLength = 8

	// maxPasswordLength - bcrypt учитывает только первые 72 байта
	maxPasswordLength = 72
)

// HashPassword проверяет длину и хеширует пароль с использованием bcrypt
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultCost)
}

// HashPasswordWithCost - то же, что HashPassword, с заданной стоимостью
func HashPasswordWithCost(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength || len(password) > maxPasswordLength {
		return "", domain.ErrInvalidPassword
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword сравнивает хешированный пароль с plain-text паролем
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
