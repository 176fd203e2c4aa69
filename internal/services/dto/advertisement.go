package dto

import (
	"fmt"
	"time"

	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
)

// CreateAdvertisementRequest - все поля обязательны, пустые строки допустимы
type CreateAdvertisementRequest struct {
	Title       *string `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"required"`
	Price       *int    `json:"price" validate:"required"`
}

// UpdateAdvertisementRequest - частичное обновление. Владельца сменить нельзя.
type UpdateAdvertisementRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,max=255"`
	Description *string `json:"description,omitempty"`
	Price       *int    `json:"price,omitempty"`
}

// SearchAdvertisementsRequest - фильтры поиска из query string
type SearchAdvertisementsRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Author      string `form:"author"`
	Price       *int   `form:"price"`
	MinPrice    *int   `form:"min_price"`
	MaxPrice    *int   `form:"max_price"`
}

func (r SearchAdvertisementsRequest) Filter() repositories.AdvertisementFilter {
	return repositories.AdvertisementFilter{
		Title:       r.Title,
		Description: r.Description,
		Author:      r.Author,
		Price:       r.Price,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
	}
}

type AdvertisementResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          int       `json:"price"`
	AuthorID       uint      `json:"author_id"`
	DateOfCreation time.Time `json:"date_of_creation"`
	ImageURL       string    `json:"image_url,omitempty"`
}

type SearchAdvertisementsResponse struct {
	Results []AdvertisementResponse `json:"results"`
}

func NewAdvertisementResponse(ad *models.Advertisement) AdvertisementResponse {
	return AdvertisementResponse{
		ID:             ad.ID,
		Title:          ad.Title,
		Description:    ad.Description,
		Price:          ad.Price,
		AuthorID:       ad.UserID,
		DateOfCreation: ad.CreatedAt,
		ImageURL:       AdvertisementImageURL(ad),
	}
}

// AdvertisementImageURL - путь, по которому API отдает изображение объявления
func AdvertisementImageURL(ad *models.Advertisement) string {
	if !ad.HasImage() {
		return ""
	}
	return fmt.Sprintf("/advertisement/%d/image", ad.ID)
}

func NewSearchAdvertisementsResponse(ads []models.Advertisement) SearchAdvertisementsResponse {
	results := make([]AdvertisementResponse, 0, len(ads))
	for i := range ads {
		results = append(results, NewAdvertisementResponse(&ads[i]))
	}
	return SearchAdvertisementsResponse{Results: results}
}

const (
	EventAdvertisementCreated = "advertisement.created"
	EventAdvertisementUpdated = "advertisement.updated"
	EventAdvertisementDeleted = "advertisement.deleted"
)

// AdvertisementEvent - сообщение живой ленты объявлений.
// Для удаления передается только ID.
type AdvertisementEvent struct {
	Type          string                 `json:"type"`
	ID            uint                   `json:"id"`
	Advertisement *AdvertisementResponse `json:"advertisement,omitempty"`
}

func NewAdvertisementEvent(eventType string, ad *models.Advertisement) AdvertisementEvent {
	resp := NewAdvertisementResponse(ad)
	return AdvertisementEvent{Type: eventType, ID: ad.ID, Advertisement: &resp}
}
