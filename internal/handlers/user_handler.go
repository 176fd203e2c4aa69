package handlers

import (
	"net/http"

	"classifieds_backend/internal/middleware"
	"classifieds_backend/internal/services"
	"classifieds_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
	authService services.AuthService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, authService services.AuthService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
		authService: authService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	token := middleware.TokenMiddleware(h.authService)

	users := rg.Group("/user")
	{
		users.GET("/:id", h.GetUser)
		// токен необязателен, но если передан - должен быть валиден
		users.POST("", token, h.CreateUser)
		users.PATCH("/:id", token, middleware.RequireToken(), h.UpdateUser)
		users.DELETE("/:id", token, middleware.RequireToken(), h.DeleteUser)
	}
}

// CreateUser godoc
// @Summary Регистрация пользователя
// @Description Роль admin может выдать только администратор.
// @Tags users
// @Accept json
// @Produce json
// @Param X-Token header string false "Токен (необязателен)"
// @Param user body dto.CreateUserRequest true "Данные пользователя"
// @Success 200 {object} dto.IDResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Имя занято"
// @Router /user [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.userService.CreateUser(h.GetDB(c), h.Requester(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUser godoc
// @Summary Получить пользователя
// @Tags users
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /user/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response, err := h.userService.GetUser(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateUser godoc
// @Summary Частично обновить пользователя
// @Description Сам пользователь или администратор. Пароль хешируется. Назначить роль admin может только администратор, иначе 403.
// @Tags users
// @Accept json
// @Produce json
// @Param X-Token header string true "Токен"
// @Param id path int true "ID пользователя"
// @Param user body dto.UpdateUserRequest true "Изменяемые поля"
// @Success 200 {object} dto.IDResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /user/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.userService.UpdateUser(h.GetDB(c), h.Requester(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteUser godoc
// @Summary Удалить пользователя
// @Description Вместе с его токенами и объявлениями.
// @Tags users
// @Produce json
// @Param X-Token header string true "Токен"
// @Param id path int true "ID пользователя"
// @Success 200 {object} dto.IDResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /user/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response, err := h.userService.DeleteUser(h.GetDB(c), h.Requester(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
