package services_test

import (
	"net/http"
	"testing"
	"time"

	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/internal/services"
	"classifieds_backend/internal/services/dto"
	"classifieds_backend/pkg/apperrors"
	"classifieds_backend/test/helpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 48 * time.Hour

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newAuthService(clock *fakeClock) services.AuthService {
	return services.NewAuthService(
		repositories.NewUserRepository(),
		repositories.NewTokenRepository(),
		testTTL,
		services.WithClock(clock.Now),
	)
}

func requireHTTPCode(t *testing.T, err error, code int) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.HTTPCode)
}

func TestValidateToken_TTLBoundary(t *testing.T) {
	db := helpers.OpenTestDB(t)
	user := helpers.CreateUser(t, db, "alice", "pw", models.UserRoleUser)

	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newAuthService(clock)

	token, err := svc.IssueToken(db, user.ID)
	require.NoError(t, err)
	_, err = uuid.Parse(token.Token)
	require.NoError(t, err)

	clock.now = clock.now.Add(testTTL)
	got, err := svc.ValidateToken(db, token.Token)
	require.NoError(t, err, "token is still valid exactly at TTL")
	assert.Equal(t, user.ID, got.User.ID)

	clock.now = clock.now.Add(time.Second)
	_, err = svc.ValidateToken(db, token.Token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	requireHTTPCode(t, err, http.StatusUnauthorized)
}

func TestValidateToken_AnonymousAndInvalid(t *testing.T) {
	db := helpers.OpenTestDB(t)
	svc := newAuthService(&fakeClock{now: time.Now()})

	token, err := svc.ValidateToken(db, "")
	assert.NoError(t, err)
	assert.Nil(t, token)

	_, err = svc.ValidateToken(db, "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = svc.ValidateToken(db, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestLogin(t *testing.T) {
	db := helpers.OpenTestDB(t)
	helpers.CreateUser(t, db, "bob", "correct", models.UserRoleUser)
	svc := newAuthService(&fakeClock{now: time.Now()})

	t.Run("success issues a new token each time", func(t *testing.T) {
		first, err := svc.Login(db, &dto.LoginRequest{Name: "bob", Password: "correct"})
		require.NoError(t, err)
		second, err := svc.Login(db, &dto.LoginRequest{Name: "bob", Password: "correct"})
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		token, err := svc.ValidateToken(db, first.Token)
		require.NoError(t, err)
		assert.Equal(t, "bob", token.User.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(db, &dto.LoginRequest{Name: "bob", Password: "nope"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		requireHTTPCode(t, err, http.StatusUnauthorized)
	})

	t.Run("unknown name is indistinguishable", func(t *testing.T) {
		_, err := svc.Login(db, &dto.LoginRequest{Name: "ghost", Password: "correct"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestPurgeExpiredTokens(t *testing.T) {
	db := helpers.OpenTestDB(t)
	user := helpers.CreateUser(t, db, "carol", "pw", models.UserRoleUser)

	clock := &fakeClock{now: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	svc := newAuthService(clock)

	old, err := svc.IssueToken(db, user.ID)
	require.NoError(t, err)

	clock.now = clock.now.Add(testTTL + time.Hour)
	fresh, err := svc.IssueToken(db, user.ID)
	require.NoError(t, err)

	deleted, err := svc.PurgeExpiredTokens(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repositories.NewTokenRepository().FindByValue(db, old.Token)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = svc.ValidateToken(db, fresh.Token)
	assert.NoError(t, err)
}
