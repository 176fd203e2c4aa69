package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound - запись с таким ключом отсутствует
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists - нарушено ограничение уникальности
	ErrAlreadyExists = errors.New("record already exists")
)

// translate приводит ошибки GORM к ошибкам репозитория.
// Требует gorm.Config{TranslateError: true} для ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyExists
	default:
		return err
	}
}
