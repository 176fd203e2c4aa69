package dto

// IDResponse - ответ мутирующих операций
type IDResponse struct {
	ID uint `json:"id"`
}
