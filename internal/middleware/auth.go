package middleware

import (
	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/models"
	"classifieds_backend/internal/services"
	"classifieds_backend/pkg/apperrors"
	"classifieds_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TokenHeader - заголовок с токеном сессии
const TokenHeader = "X-Token"

// TokenMiddleware разбирает X-Token. Без заголовка запрос идет дальше анонимно,
// с неизвестным, битым или просроченным токеном - 401.
// Должен стоять после DBMiddleware.
func TokenMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := c.GetHeader(TokenHeader)
		if value == "" {
			c.Next()
			return
		}

		db := c.MustGet(string(contextkeys.DBContextKey)).(*gorm.DB)
		token, err := authService.ValidateToken(db, value)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Token rejected", "path", c.Request.URL.Path, "ip", c.ClientIP())
			apperrors.HandleError(c, err)
			return
		}

		c.Set(string(contextkeys.TokenContextKey), token)
		ctx := logger.WithUserID(c.Request.Context(), token.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireToken - 401, если TokenMiddleware не нашел токен
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			apperrors.HandleError(c, apperrors.ErrTokenRequired)
			return
		}
		c.Next()
	}
}

// CurrentUser - владелец токена текущего запроса или nil для анонимного
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(string(contextkeys.TokenContextKey))
	if !ok {
		return nil
	}
	token, ok := val.(*models.Token)
	if !ok || token == nil {
		return nil
	}
	return token.User
}
