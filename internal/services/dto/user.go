package dto

import (
	"classifieds_backend/internal/models"
)

// CreateUserRequest - регистрация. Роль по умолчанию user.
type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Password string          `json:"password" validate:"required"`
	Role     models.UserRole `json:"role,omitempty" validate:"omitempty,is-user-role"`
}

// UpdateUserRequest - частичное обновление, nil значит "не менять"
type UpdateUserRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Password *string          `json:"password,omitempty" validate:"omitnil,min=1"`
	Role     *models.UserRole `json:"role,omitempty" validate:"omitnil,is-user-role"`
}

// UserResponse - публичные данные пользователя (без хеша пароля)
type UserResponse struct {
	ID   uint            `json:"id"`
	Name string          `json:"name"`
	Role models.UserRole `json:"role"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Role: u.Role}
}
