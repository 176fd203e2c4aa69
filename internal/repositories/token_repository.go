package repositories

import (
	"time"

	"classifieds_backend/internal/models"

	"gorm.io/gorm"
)

// TokenRepository - операции с токенами сессий
type TokenRepository interface {
	// Create сохраняет новый токен
	Create(db *gorm.DB, token *models.Token) error

	// FindByValue находит токен по его значению вместе с владельцем
	FindByValue(db *gorm.DB, value string) (*models.Token, error)

	// DeleteCreatedBefore удаляет токены, созданные раньше cutoff
	DeleteCreatedBefore(db *gorm.DB, cutoff time.Time) (int64, error)
}

type tokenRepository struct{}

func NewTokenRepository() TokenRepository {
	return &tokenRepository{}
}

func (r *tokenRepository) Create(db *gorm.DB, token *models.Token) error {
	return translate(db.Create(token).Error)
}

func (r *tokenRepository) FindByValue(db *gorm.DB, value string) (*models.Token, error) {
	var token models.Token
	if err := db.Preload("User").Where("token = ?", value).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *tokenRepository) DeleteCreatedBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("created_at < ?", cutoff).Delete(&models.Token{})
	return result.RowsAffected, result.Error
}

