package services

import "classifieds_backend/internal/services/dto"

// EventPublisher получает изменения объявлений после успешной записи.
// Publish не должен блокировать запрос.
type EventPublisher interface {
	Publish(event dto.AdvertisementEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(dto.AdvertisementEvent) {}
