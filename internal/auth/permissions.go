package auth

import "classifieds_backend/internal/models"

// CanModify - единственное правило для изменяющих операций:
// разрешено администратору или владельцу ресурса.
func CanModify(requester *models.User, ownerID uint) bool {
	if requester == nil {
		return false
	}
	return requester.IsAdmin() || requester.ID == ownerID
}

// CanAssignRole проверяет, может ли requester выдать роль.
// Роль admin выдает только администратор; анонимному запросу
// это разрешено лишь при allowAnonymousAdmin.
func CanAssignRole(requester *models.User, role models.UserRole, allowAnonymousAdmin bool) bool {
	if role != models.UserRoleAdmin {
		return true
	}
	if requester == nil {
		return allowAnonymousAdmin
	}
	return requester.IsAdmin()
}
