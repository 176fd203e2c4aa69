package handlers

import "classifieds_backend/ws"

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler               *AuthHandler
	UserHandler               *UserHandler
	AdvertisementHandler      *AdvertisementHandler
	AdvertisementImageHandler *AdvertisementImageHandler
	FeedHandler               *ws.Handler
	HealthHandler             *HealthHandler
}
