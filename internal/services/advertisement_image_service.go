package services

import (
	"errors"
	"fmt"
	"io"

	"classifieds_backend/internal/imageprocessor"
	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/internal/services/dto"
	"classifieds_backend/internal/storage"
	"classifieds_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	errNoImage           = errors.New("advertisement has no image")
	errImageKeyContended = errors.New("advertisement image is being replaced concurrently")
)

// maxImageSwapAttempts - сколько раз перечитываем ключ, если его успела сменить другая загрузка
const maxImageSwapAttempts = 5

// AdvertisementImageService - одно изображение на объявление.
// Права те же, что на изменение объявления.
type AdvertisementImageService interface {
	UploadImage(db *gorm.DB, requester *models.User, id uint, src io.Reader) (*dto.AdvertisementResponse, error)
	OpenImage(db *gorm.DB, id uint) (io.ReadCloser, error)
	DeleteImage(db *gorm.DB, requester *models.User, id uint) (*dto.IDResponse, error)
}

type AdvertisementImageServiceImpl struct {
	adRepo    repositories.AdvertisementRepository
	storage   storage.Storage
	processor *imageprocessor.Processor
	events    EventPublisher
}

func NewAdvertisementImageService(
	adRepo repositories.AdvertisementRepository,
	st storage.Storage,
	processor *imageprocessor.Processor,
	events EventPublisher,
) AdvertisementImageService {
	if events == nil {
		events = noopPublisher{}
	}
	return &AdvertisementImageServiceImpl{
		adRepo:    adRepo,
		storage:   st,
		processor: processor,
		events:    events,
	}
}

func (s *AdvertisementImageServiceImpl) UploadImage(db *gorm.DB, requester *models.User, id uint, src io.Reader) (*dto.AdvertisementResponse, error) {
	ctx := db.Statement.Context

	ad, err := authorizeAdvertisement(db, s.adRepo, requester, id)
	if err != nil {
		return nil, err
	}

	normalized, err := s.processor.Normalize(src)
	if err != nil {
		if errors.Is(err, imageprocessor.ErrUnsupportedImage) {
			return nil, apperrors.NewBadRequestError("Image must be a JPEG or PNG file")
		}
		return nil, apperrors.InternalError(err)
	}

	// новый ключ на каждую загрузку: старый url не отдаст новое изображение из кеша
	key := fmt.Sprintf("advertisements/%d/%s.jpg", ad.ID, uuid.NewString())
	if err := s.storage.Save(ctx, key, normalized, imageprocessor.ContentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	replaced, err := s.swapImageKey(db, ad, key)
	if err != nil {
		discardImage(ctx, s.storage, key)
		return nil, err
	}
	if replaced != "" {
		discardImage(ctx, s.storage, replaced)
	}

	logger.CtxInfo(ctx, "Advertisement image uploaded", "advertisement_id", ad.ID, "key", key)
	s.events.Publish(dto.NewAdvertisementEvent(dto.EventAdvertisementUpdated, ad))

	resp := dto.NewAdvertisementResponse(ad)
	return &resp, nil
}

// OpenImage - поток jpeg, закрывает вызывающий
func (s *AdvertisementImageServiceImpl) OpenImage(db *gorm.DB, id uint) (io.ReadCloser, error) {
	ad, err := s.adRepo.FindByID(db, id)
	if err != nil {
		return nil, mapRepoError(err, "advertisement")
	}
	if !ad.HasImage() {
		return nil, apperrors.ErrNotFound(errNoImage, "advertisement_image")
	}

	rc, err := s.storage.Open(db.Statement.Context, ad.ImageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperrors.ErrNotFound(err, "advertisement_image")
		}
		return nil, apperrors.InternalError(err)
	}
	return rc, nil
}

func (s *AdvertisementImageServiceImpl) DeleteImage(db *gorm.DB, requester *models.User, id uint) (*dto.IDResponse, error) {
	ad, err := authorizeAdvertisement(db, s.adRepo, requester, id)
	if err != nil {
		return nil, err
	}
	if !ad.HasImage() {
		return nil, apperrors.ErrNotFound(errNoImage, "advertisement_image")
	}

	replaced, err := s.swapImageKey(db, ad, "")
	if err != nil {
		return nil, err
	}
	if replaced == "" {
		// изображение уже удалил параллельный запрос
		return nil, apperrors.ErrNotFound(errNoImage, "advertisement_image")
	}
	discardImage(db.Statement.Context, s.storage, replaced)

	s.events.Publish(dto.NewAdvertisementEvent(dto.EventAdvertisementUpdated, ad))
	return &dto.IDResponse{ID: ad.ID}, nil
}

// swapImageKey записывает newKey вместо текущего ключа объявления и возвращает
// ключ, который действительно был заменен. Удалять из storage можно только его.
func (s *AdvertisementImageServiceImpl) swapImageKey(db *gorm.DB, ad *models.Advertisement, newKey string) (string, error) {
	current := ad.ImageKey
	for attempt := 0; attempt < maxImageSwapAttempts; attempt++ {
		swapped, err := s.adRepo.ReplaceImageKey(db, ad.ID, current, newKey)
		if err != nil {
			return "", mapRepoError(err, "advertisement")
		}
		if swapped {
			ad.ImageKey = newKey
			return current, nil
		}

		latest, err := s.adRepo.FindByID(db, ad.ID)
		if err != nil {
			return "", mapRepoError(err, "advertisement")
		}
		if latest.ImageKey == newKey {
			ad.ImageKey = newKey
			return "", nil
		}
		current = latest.ImageKey
	}
	return "", apperrors.InternalError(errImageKeyContended)
}
