package apperrors

import (
	"net/http"
)

// ErrNotFound - фабрика для "не найдено" (404), используется поверх repositories.ErrNotFound
func ErrNotFound(err error, domain string) *AppError {
	return Wrap(err, CodeNotFound, domain, "Item not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для нарушения уникальности (409)
func ErrAlreadyExists(err error, domain string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, "Item already exists", http.StatusConflict)
}

// --- Auth ---

// ErrInvalidCredentials - неверное имя или пароль. Одинаково для
// несуществующего имени и неверного пароля.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid credentials",
	http.StatusUnauthorized,
)

// ErrInvalidToken - токен передан, но не найден или истек
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Token not found or expired",
	http.StatusUnauthorized,
)

// ErrTokenRequired - эндпоинт требует X-Token, а его нет
var ErrTokenRequired = New(
	CodeUnauthorized,
	"auth",
	"Token required",
	http.StatusUnauthorized,
)

// ErrInsufficientPermissions - не владелец и не админ
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient privileges",
	http.StatusForbidden,
)

// ErrCannotAssignAdmin - попытка выдать роль admin без прав администратора
var ErrCannotAssignAdmin = New(
	CodeForbidden,
	"user",
	"Cannot create or promote admin user",
	http.StatusForbidden,
)

// --- User ---

var ErrUserNameTaken = New(
	CodeAlreadyExists,
	"user",
	"User name already taken",
	http.StatusConflict,
)
