package repositories

import (
	"gorm.io/gorm"
)

// GetByID - единый поиск по первичному ключу для любой модели.
// Отсутствие записи всегда возвращается как ErrNotFound.
func GetByID[T any](db *gorm.DB, id uint, preloads ...string) (*T, error) {
	var item T
	q := db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}
