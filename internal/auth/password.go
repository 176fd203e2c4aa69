package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MinCost - самый дешевый bcrypt, только для тестов
const MinCost = bcrypt.MinCost

// HashPasswordWithCost - то же, но с заданным cost (невалидный cost заменяется на DefaultCost)
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша.
// Битый хеш - тоже несовпадение.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
