package dto

// LoginRequest - запрос входа
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - выданный токен, передается дальше в заголовке X-Token
type LoginResponse struct {
	Token string `json:"token"`
}
