package handlers

import (
	"net/http"

	"classifieds_backend/internal/middleware"
	"classifieds_backend/internal/services"
	"classifieds_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AdvertisementHandler struct {
	*BaseHandler
	adService   services.AdvertisementService
	authService services.AuthService
}

func NewAdvertisementHandler(base *BaseHandler, adService services.AdvertisementService, authService services.AuthService) *AdvertisementHandler {
	return &AdvertisementHandler{
		BaseHandler: base,
		adService:   adService,
		authService: authService,
	}
}

func (h *AdvertisementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ads := rg.Group("/advertisement")
	{
		ads.GET("", h.SearchAdvertisements)
		ads.GET("/:id", h.GetAdvertisement)
	}

	protected := ads.Group("")
	protected.Use(middleware.TokenMiddleware(h.authService), middleware.RequireToken())
	{
		protected.POST("", h.CreateAdvertisement)
		protected.PATCH("/:id", h.UpdateAdvertisement)
		protected.DELETE("/:id", h.DeleteAdvertisement)
	}
}

// CreateAdvertisement godoc
// @Summary Создать объявление
// @Tags advertisements
// @Accept json
// @Produce json
// @Param X-Token header string true "Токен"
// @Param advertisement body dto.CreateAdvertisementRequest true "Объявление"
// @Success 200 {object} dto.IDResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /advertisement [post]
func (h *AdvertisementHandler) CreateAdvertisement(c *gin.Context) {
	var req dto.CreateAdvertisementRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.adService.CreateAdvertisement(h.GetDB(c), h.Requester(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetAdvertisement godoc
// @Summary Получить объявление
// @Tags advertisements
// @Produce json
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.AdvertisementResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /advertisement/{id} [get]
func (h *AdvertisementHandler) GetAdvertisement(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response, err := h.adService.GetAdvertisement(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchAdvertisements godoc
// @Summary Поиск объявлений
// @Description Все фильтры необязательны и объединяются через AND. Текстовые - подстрока без учета регистра.
// @Tags advertisements
// @Produce json
// @Param title query string false "Подстрока заголовка"
// @Param description query string false "Подстрока описания"
// @Param author query string false "Подстрока имени автора"
// @Param price query int false "Точная цена"
// @Param min_price query int false "Минимальная цена"
// @Param max_price query int false "Максимальная цена"
// @Success 200 {object} dto.SearchAdvertisementsResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /advertisement [get]
func (h *AdvertisementHandler) SearchAdvertisements(c *gin.Context) {
	var req dto.SearchAdvertisementsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	response, err := h.adService.SearchAdvertisements(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateAdvertisement godoc
// @Summary Частично обновить объявление
// @Description Только владелец или администратор.
// @Tags advertisements
// @Accept json
// @Produce json
// @Param X-Token header string true "Токен"
// @Param id path int true "ID объявления"
// @Param advertisement body dto.UpdateAdvertisementRequest true "Изменяемые поля"
// @Success 200 {object} dto.IDResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /advertisement/{id} [patch]
func (h *AdvertisementHandler) UpdateAdvertisement(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	var req dto.UpdateAdvertisementRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.adService.UpdateAdvertisement(h.GetDB(c), h.Requester(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteAdvertisement godoc
// @Summary Удалить объявление
// @Description Только владелец или администратор.
// @Tags advertisements
// @Produce json
// @Param X-Token header string true "Токен"
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.IDResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /advertisement/{id} [delete]
func (h *AdvertisementHandler) DeleteAdvertisement(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response, err := h.adService.DeleteAdvertisement(h.GetDB(c), h.Requester(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
