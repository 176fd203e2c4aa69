package services

import (
	"errors"
	"time"

	"classifieds_backend/internal/auth"
	"classifieds_backend/internal/logger"
	"classifieds_backend/internal/metrics"
	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/internal/services/dto"
	"classifieds_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	IssueToken(db *gorm.DB, userID uint) (*models.Token, error)
	// ValidateToken: пустая строка - анонимный запрос (nil, nil);
	// неизвестный, битый или просроченный токен - ErrInvalidToken.
	ValidateToken(db *gorm.DB, value string) (*models.Token, error)
	PurgeExpiredTokens(db *gorm.DB) (int64, error)
	TTL() time.Duration
}

type AuthServiceImpl struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.TokenRepository
	ttl       time.Duration
	now       func() time.Time
}

type AuthOption func(*AuthServiceImpl)

// WithClock подменяет часы (для тестов на границу TTL)
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthServiceImpl) {
		s.now = now
	}
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.TokenRepository,
	ttl time.Duration,
	opts ...AuthOption,
) AuthService {
	s := &AuthServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		ttl:       ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthServiceImpl) TTL() time.Duration {
	return s.ttl
}

// Login - имя и пароль в обмен на новый токен.
// Неизвестное имя и неверный пароль дают одну и ту же ошибку.
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx := db.Statement.Context

	user, err := s.userRepo.FindByName(db, req.Name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.LoginFailures.Inc()
			logger.CtxWarn(ctx, "Login failed: unknown user", "name", req.Name)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		metrics.LoginFailures.Inc()
		logger.CtxWarn(ctx, "Login failed: wrong password", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.IssueToken(db, user.ID)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "User logged in", "user_id", user.ID)
	return &dto.LoginResponse{Token: token.Token}, nil
}

func (s *AuthServiceImpl) IssueToken(db *gorm.DB, userID uint) (*models.Token, error) {
	token := &models.Token{
		BaseModel: models.BaseModel{CreatedAt: s.now().UTC()},
		Token:     uuid.NewString(),
		UserID:    userID,
	}
	if err := s.tokenRepo.Create(db, token); err != nil {
		return nil, mapRepoError(err, "token")
	}

	metrics.TokensIssued.Inc()
	return token, nil
}

func (s *AuthServiceImpl) ValidateToken(db *gorm.DB, value string) (*models.Token, error) {
	if value == "" {
		return nil, nil
	}

	if _, err := uuid.Parse(value); err != nil {
		metrics.TokenRejections.WithLabelValues("malformed").Inc()
		return nil, apperrors.ErrInvalidToken
	}

	token, err := s.tokenRepo.FindByValue(db, value)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.TokenRejections.WithLabelValues("unknown").Inc()
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	// действителен, пока CreatedAt >= now - TTL
	if s.now().After(token.ExpiresAt(s.ttl)) {
		metrics.TokenRejections.WithLabelValues("expired").Inc()
		return nil, apperrors.ErrInvalidToken
	}
	if token.User == nil {
		metrics.TokenRejections.WithLabelValues("unknown").Inc()
		return nil, apperrors.ErrInvalidToken
	}

	return token, nil
}

// PurgeExpiredTokens удаляет токены старше TTL. На валидность не влияет:
// такие токены и так отвергаются ValidateToken.
func (s *AuthServiceImpl) PurgeExpiredTokens(db *gorm.DB) (int64, error) {
	deleted, err := s.tokenRepo.DeleteCreatedBefore(db, s.now().UTC().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	metrics.TokensPurged.Add(float64(deleted))
	return deleted, nil
}
