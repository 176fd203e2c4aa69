package repositories

import (
	"strings"

	"classifieds_backend/internal/models"

	"gorm.io/gorm"
)

// AdvertisementFilter - критерии поиска. Пустые поля не участвуют,
// все заданные объединяются через AND.
type AdvertisementFilter struct {
	Title       string
	Description string
	Author      string
	Price       *int
	MinPrice    *int
	MaxPrice    *int
}

type AdvertisementRepository interface {
	Create(db *gorm.DB, ad *models.Advertisement) error
	FindByID(db *gorm.DB, id uint) (*models.Advertisement, error)
	Update(db *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(db *gorm.DB, id uint) error
	Search(db *gorm.DB, filter AdvertisementFilter) ([]models.Advertisement, error)
	ImageKeysByUser(db *gorm.DB, userID uint) ([]string, error)
	// ReplaceImageKey меняет ключ, только если в строке все еще oldKey. false - ключ уже другой.
	ReplaceImageKey(db *gorm.DB, id uint, oldKey, newKey string) (bool, error)
}

type advertisementRepository struct{}

func NewAdvertisementRepository() AdvertisementRepository {
	return &advertisementRepository{}
}

func (r *advertisementRepository) Create(db *gorm.DB, ad *models.Advertisement) error {
	return translate(db.Create(ad).Error)
}

func (r *advertisementRepository) FindByID(db *gorm.DB, id uint) (*models.Advertisement, error) {
	return GetByID[models.Advertisement](db, id)
}

func (r *advertisementRepository) Update(db *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	// RowsAffected не проверяем: mysql не считает строки без изменений
	return translate(db.Model(&models.Advertisement{}).Where("id = ?", id).Updates(fields).Error)
}

func (r *advertisementRepository) Delete(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Advertisement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *advertisementRepository) Search(db *gorm.DB, filter AdvertisementFilter) ([]models.Advertisement, error) {
	query := db.Model(&models.Advertisement{}).Select("advertisements.*")

	if filter.Title != "" {
		query = query.Where(containsClause(db, "advertisements.title"), containsPattern(filter.Title))
	}
	if filter.Description != "" {
		query = query.Where(containsClause(db, "advertisements.description"), containsPattern(filter.Description))
	}
	if filter.Author != "" {
		query = query.Joins("JOIN users ON users.id = advertisements.user_id").
			Where(containsClause(db, "users.name"), containsPattern(filter.Author))
	}
	if filter.Price != nil {
		query = query.Where("advertisements.price = ?", *filter.Price)
	}
	if filter.MinPrice != nil {
		query = query.Where("advertisements.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("advertisements.price <= ?", *filter.MaxPrice)
	}

	ads := make([]models.Advertisement, 0)
	if err := query.Order("advertisements.id").Find(&ads).Error; err != nil {
		return nil, err
	}
	return ads, nil
}

// ! - escape-символ для LIKE: одинаково работает в postgres, mysql и sqlite
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern - шаблон "подстрока", регистр сравнивает containsClause
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// containsClause - сравнение без учета регистра, обе стороны приводятся в самой БД
func containsClause(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return column + " ILIKE ? ESCAPE '!'"
	}
	return "LOWER(" + column + ") LIKE LOWER(?) ESCAPE '!'"
}

func (r *advertisementRepository) ReplaceImageKey(db *gorm.DB, id uint, oldKey, newKey string) (bool, error) {
	result := db.Model(&models.Advertisement{}).
		Where("id = ? AND image_key = ?", id, oldKey).
		Update("image_key", newKey)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *advertisementRepository) ImageKeysByUser(db *gorm.DB, userID uint) ([]string, error) {
	var keys []string
	err := db.Model(&models.Advertisement{}).
		Where("user_id = ? AND image_key <> ''", userID).
		Pluck("image_key", &keys).Error
	return keys, err
}
