package services

import (
	"errors"

	"classifieds_backend/internal/auth"
	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/internal/services/dto"
	"classifieds_backend/internal/storage"
	"classifieds_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(db *gorm.DB, requester *models.User, req *dto.CreateUserRequest) (*dto.IDResponse, error)
	GetUser(db *gorm.DB, id uint) (*dto.UserResponse, error)
	UpdateUser(db *gorm.DB, requester *models.User, id uint, req *dto.UpdateUserRequest) (*dto.IDResponse, error)
	DeleteUser(db *gorm.DB, requester *models.User, id uint) (*dto.IDResponse, error)
	// EnsureAdmin создает администратора, если имя свободно. true - если создан.
	EnsureAdmin(db *gorm.DB, name, password string) (bool, error)
}

type UserServiceImpl struct {
	userRepo            repositories.UserRepository
	bcryptCost          int
	allowAnonymousAdmin bool

	adRepo repositories.AdvertisementRepository
	images storage.Storage
}

type UserOption func(*UserServiceImpl)

// WithAdvertisementImages - при удалении пользователя удаляются изображения его объявлений
func WithAdvertisementImages(adRepo repositories.AdvertisementRepository, st storage.Storage) UserOption {
	return func(s *UserServiceImpl) {
		s.adRepo = adRepo
		s.images = st
	}
}

func NewUserService(userRepo repositories.UserRepository, bcryptCost int, allowAnonymousAdmin bool, opts ...UserOption) UserService {
	s := &UserServiceImpl{
		userRepo:            userRepo,
		bcryptCost:          bcryptCost,
		allowAnonymousAdmin: allowAnonymousAdmin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserServiceImpl) CreateUser(db *gorm.DB, requester *models.User, req *dto.CreateUserRequest) (*dto.IDResponse, error) {
	role := req.Role
	if role == "" {
		role = models.UserRoleUser
	}

	if !auth.CanAssignRole(requester, role, s.allowAnonymousAdmin) {
		return nil, apperrors.ErrCannotAssignAdmin
	}

	hash, err := auth.HashPasswordWithCost(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, apperrors.ErrUserNameTaken
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(db.Statement.Context, "User created", "user_id", user.ID, "role", user.Role)
	return &dto.IDResponse{ID: user.ID}, nil
}

func (s *UserServiceImpl) GetUser(db *gorm.DB, id uint) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *UserServiceImpl) UpdateUser(db *gorm.DB, requester *models.User, id uint, req *dto.UpdateUserRequest) (*dto.IDResponse, error) {
	if err := requireRequester(requester); err != nil {
		return nil, err
	}

	target, err := s.userRepo.FindByID(db, id)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	if !auth.CanModify(requester, target.ID) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	// повышение до admin - по тем же правилам, что и при создании
	if req.Role != nil && !auth.CanAssignRole(requester, *req.Role, false) {
		return nil, apperrors.ErrCannotAssignAdmin
	}

	fields := make(map[string]interface{}, 3)
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Password != nil {
		hash, err := auth.HashPasswordWithCost(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		fields["password_hash"] = hash
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}

	if err := s.userRepo.Update(db, target.ID, fields); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, apperrors.ErrUserNameTaken
		}
		return nil, mapRepoError(err, "user")
	}

	logger.CtxInfo(db.Statement.Context, "User updated", "user_id", target.ID, "by", requester.ID)
	return &dto.IDResponse{ID: target.ID}, nil
}

func (s *UserServiceImpl) DeleteUser(db *gorm.DB, requester *models.User, id uint) (*dto.IDResponse, error) {
	if err := requireRequester(requester); err != nil {
		return nil, err
	}

	target, err := s.userRepo.FindByID(db, id)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	if !auth.CanModify(requester, target.ID) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	ctx := db.Statement.Context

	// ключи собираем до удаления: объявления уходят каскадом вместе с пользователем
	var imageKeys []string
	if s.images != nil {
		if imageKeys, err = s.adRepo.ImageKeysByUser(db, target.ID); err != nil {
			logger.CtxWithError(ctx, "Failed to list advertisement images", err, "user_id", target.ID)
		}
	}

	if err := s.userRepo.Delete(db, target.ID); err != nil {
		return nil, mapRepoError(err, "user")
	}

	for _, key := range imageKeys {
		discardImage(ctx, s.images, key)
	}

	logger.CtxInfo(ctx, "User deleted", "user_id", target.ID, "by", requester.ID)
	return &dto.IDResponse{ID: target.ID}, nil
}

func (s *UserServiceImpl) EnsureAdmin(db *gorm.DB, name, password string) (bool, error) {
	var created bool
	err := db.Transaction(func(tx *gorm.DB) error {
		exists, err := s.userRepo.ExistsByName(tx, name)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		hash, err := auth.HashPasswordWithCost(password, s.bcryptCost)
		if err != nil {
			return err
		}
		admin := &models.User{Name: name, PasswordHash: hash, Role: models.UserRoleAdmin}
		if err := s.userRepo.Create(tx, admin); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
