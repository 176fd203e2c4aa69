package repositories

import (
	"classifieds_backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	FindByName(db *gorm.DB, name string) (*models.User, error)
	// Update меняет только переданные колонки
	Update(db *gorm.DB, id uint, fields map[string]interface{}) error
	// Delete удаляет пользователя вместе с его токенами и объявлениями
	Delete(db *gorm.DB, id uint) error
	ExistsByName(db *gorm.DB, name string) (bool, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	return translate(db.Create(user).Error)
}

func (r *userRepository) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	return GetByID[models.User](db, id)
}

func (r *userRepository) FindByName(db *gorm.DB, name string) (*models.User, error) {
	var user models.User
	if err := db.Where("name = ?", name).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(db *gorm.DB, id uint) error {
	// Каскад делаем явно: ON DELETE CASCADE есть в схеме,
	// но не на всех драйверах он включен (sqlite без _foreign_keys).
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Advertisement{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *userRepository) ExistsByName(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}
