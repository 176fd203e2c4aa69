package models

import "time"

// BaseModel - общие поля для всех таблиц. ID числовой, автоинкремент.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// AllModels - список моделей для AutoMigrate (порядок важен: сначала users)
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Token{},
		&Advertisement{},
	}
}
