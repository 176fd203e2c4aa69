package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - ключ для *gorm.DB текущего запроса
	DBContextKey = contextKey("db")

	// TokenContextKey - ключ для *models.Token, если запрос пришел с валидным X-Token
	TokenContextKey = contextKey("token")
)
