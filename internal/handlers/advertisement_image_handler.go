package handlers

import (
	"errors"
	"net/http"

	"classifieds_backend/internal/imageprocessor"
	"classifieds_backend/internal/middleware"
	"classifieds_backend/internal/services"
	"classifieds_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const imageFormField = "image"

var errImageTooLarge = apperrors.New(apperrors.CodeValidationFailed, "request", "Image is too large", http.StatusRequestEntityTooLarge)

type AdvertisementImageHandler struct {
	*BaseHandler
	imageService services.AdvertisementImageService
	authService  services.AuthService
	maxBytes     int64
}

func NewAdvertisementImageHandler(
	base *BaseHandler,
	imageService services.AdvertisementImageService,
	authService services.AuthService,
	maxBytes int64,
) *AdvertisementImageHandler {
	return &AdvertisementImageHandler{
		BaseHandler:  base,
		imageService: imageService,
		authService:  authService,
		maxBytes:     maxBytes,
	}
}

func (h *AdvertisementImageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	images := rg.Group("/advertisement/:id/image")
	images.GET("", h.GetImage)

	protected := images.Group("")
	protected.Use(middleware.TokenMiddleware(h.authService), middleware.RequireToken())
	{
		protected.PUT("", h.UploadImage)
		protected.DELETE("", h.DeleteImage)
	}
}

// UploadImage godoc
// @Summary Загрузить изображение объявления
// @Description JPEG или PNG. Сохраняется как JPEG, большие изображения уменьшаются. Заменяет предыдущее.
// @Tags advertisements
// @Accept multipart/form-data
// @Produce json
// @Param X-Token header string true "Токен"
// @Param id path int true "ID объявления"
// @Param image formData file true "Изображение"
// @Success 200 {object} dto.AdvertisementResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Router /advertisement/{id}/image [put]
func (h *AdvertisementImageHandler) UploadImage(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	fileHeader, err := c.FormFile(imageFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleServiceError(c, errImageTooLarge)
			return
		}
		h.HandleServiceError(c, apperrors.NewBadRequestError("Multipart field 'image' is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	response, err := h.imageService.UploadImage(h.GetDB(c), h.Requester(c), id, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetImage godoc
// @Summary Изображение объявления
// @Tags advertisements
// @Produce jpeg
// @Param id path int true "ID объявления"
// @Success 200 {file} binary
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /advertisement/{id}/image [get]
func (h *AdvertisementImageHandler) GetImage(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	rc, err := h.imageService.OpenImage(h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, imageprocessor.ContentType, rc, map[string]string{
		"Cache-Control": "public, max-age=300",
	})
}

// DeleteImage godoc
// @Summary Удалить изображение объявления
// @Description Только владелец или администратор.
// @Tags advertisements
// @Produce json
// @Param X-Token header string true "Токен"
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.IDResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /advertisement/{id}/image [delete]
func (h *AdvertisementImageHandler) DeleteImage(c *gin.Context) {
	id, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response, err := h.imageService.DeleteImage(h.GetDB(c), h.Requester(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
