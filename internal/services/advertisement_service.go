package services

import (
	"context"

	"classifieds_backend/internal/auth"
	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/internal/services/dto"
	"classifieds_backend/internal/storage"
	"classifieds_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AdvertisementService interface {
	CreateAdvertisement(db *gorm.DB, requester *models.User, req *dto.CreateAdvertisementRequest) (*dto.IDResponse, error)
	GetAdvertisement(db *gorm.DB, id uint) (*dto.AdvertisementResponse, error)
	SearchAdvertisements(db *gorm.DB, req *dto.SearchAdvertisementsRequest) (*dto.SearchAdvertisementsResponse, error)
	UpdateAdvertisement(db *gorm.DB, requester *models.User, id uint, req *dto.UpdateAdvertisementRequest) (*dto.IDResponse, error)
	DeleteAdvertisement(db *gorm.DB, requester *models.User, id uint) (*dto.IDResponse, error)
}

type AdvertisementServiceImpl struct {
	adRepo repositories.AdvertisementRepository
	events EventPublisher
	images storage.Storage
}

type AdvertisementOption func(*AdvertisementServiceImpl)

// WithEventPublisher подключает живую ленту объявлений
func WithEventPublisher(p EventPublisher) AdvertisementOption {
	return func(s *AdvertisementServiceImpl) {
		if p != nil {
			s.events = p
		}
	}
}

// WithImageStorage - при удалении объявления удаляется и его изображение
func WithImageStorage(st storage.Storage) AdvertisementOption {
	return func(s *AdvertisementServiceImpl) {
		s.images = st
	}
}

func NewAdvertisementService(adRepo repositories.AdvertisementRepository, opts ...AdvertisementOption) AdvertisementService {
	s := &AdvertisementServiceImpl{
		adRepo: adRepo,
		events: noopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AdvertisementServiceImpl) CreateAdvertisement(db *gorm.DB, requester *models.User, req *dto.CreateAdvertisementRequest) (*dto.IDResponse, error) {
	if err := requireRequester(requester); err != nil {
		return nil, err
	}

	ad := &models.Advertisement{
		Title:       *req.Title,
		Description: *req.Description,
		Price:       *req.Price,
		UserID:      requester.ID,
	}
	if err := s.adRepo.Create(db, ad); err != nil {
		return nil, mapRepoError(err, "advertisement")
	}

	logger.CtxInfo(db.Statement.Context, "Advertisement created", "advertisement_id", ad.ID, "user_id", requester.ID)
	s.events.Publish(dto.NewAdvertisementEvent(dto.EventAdvertisementCreated, ad))
	return &dto.IDResponse{ID: ad.ID}, nil
}

func (s *AdvertisementServiceImpl) GetAdvertisement(db *gorm.DB, id uint) (*dto.AdvertisementResponse, error) {
	ad, err := s.adRepo.FindByID(db, id)
	if err != nil {
		return nil, mapRepoError(err, "advertisement")
	}
	resp := dto.NewAdvertisementResponse(ad)
	return &resp, nil
}

func (s *AdvertisementServiceImpl) SearchAdvertisements(db *gorm.DB, req *dto.SearchAdvertisementsRequest) (*dto.SearchAdvertisementsResponse, error) {
	ads, err := s.adRepo.Search(db, req.Filter())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxDebug(db.Statement.Context, "Advertisement search", "results", len(ads))
	resp := dto.NewSearchAdvertisementsResponse(ads)
	return &resp, nil
}

func (s *AdvertisementServiceImpl) UpdateAdvertisement(db *gorm.DB, requester *models.User, id uint, req *dto.UpdateAdvertisementRequest) (*dto.IDResponse, error) {
	ad, err := authorizeAdvertisement(db, s.adRepo, requester, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, 3)
	if req.Title != nil {
		fields["title"] = *req.Title
		ad.Title = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
		ad.Description = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
		ad.Price = *req.Price
	}

	if err := s.adRepo.Update(db, ad.ID, fields); err != nil {
		return nil, mapRepoError(err, "advertisement")
	}

	if len(fields) > 0 {
		s.events.Publish(dto.NewAdvertisementEvent(dto.EventAdvertisementUpdated, ad))
	}
	return &dto.IDResponse{ID: ad.ID}, nil
}

func (s *AdvertisementServiceImpl) DeleteAdvertisement(db *gorm.DB, requester *models.User, id uint) (*dto.IDResponse, error) {
	ad, err := authorizeAdvertisement(db, s.adRepo, requester, id)
	if err != nil {
		return nil, err
	}

	if err := s.adRepo.Delete(db, ad.ID); err != nil {
		return nil, mapRepoError(err, "advertisement")
	}

	ctx := db.Statement.Context
	logger.CtxInfo(ctx, "Advertisement deleted", "advertisement_id", ad.ID, "by", requester.ID)
	if ad.HasImage() && s.images != nil {
		discardImage(ctx, s.images, ad.ImageKey)
	}
	s.events.Publish(dto.AdvertisementEvent{Type: dto.EventAdvertisementDeleted, ID: ad.ID})
	return &dto.IDResponse{ID: ad.ID}, nil
}

// authorizeAdvertisement загружает объявление и проверяет права: сначала 404, потом 403
func authorizeAdvertisement(db *gorm.DB, repo repositories.AdvertisementRepository, requester *models.User, id uint) (*models.Advertisement, error) {
	if err := requireRequester(requester); err != nil {
		return nil, err
	}

	ad, err := repo.FindByID(db, id)
	if err != nil {
		return nil, mapRepoError(err, "advertisement")
	}
	if !auth.CanModify(requester, ad.OwnerID()) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return ad, nil
}

// discardImage удаляет объект из storage, ошибка только логируется
func discardImage(ctx context.Context, st storage.Storage, key string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := st.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "Failed to delete advertisement image", err, "key", key)
	}
}
