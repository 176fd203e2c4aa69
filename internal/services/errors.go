package services

import (
	"errors"

	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/pkg/apperrors"
)

// mapRepoError переводит ошибки репозитория в AppError для ответа клиенту
func mapRepoError(err error, domain string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.ErrNotFound(err, domain)
	case errors.Is(err, repositories.ErrAlreadyExists):
		return apperrors.ErrAlreadyExists(err, domain)
	default:
		return apperrors.InternalError(err)
	}
}

// requireRequester - мутирующие операции без токена не выполняются
func requireRequester(requester *models.User) error {
	if requester == nil {
		return apperrors.ErrTokenRequired
	}
	return nil
}
