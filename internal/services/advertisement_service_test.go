package services_test

import (
	"net/http"
	"testing"

	"classifieds_backend/internal/models"
	"classifieds_backend/internal/repositories"
	"classifieds_backend/internal/services"
	"classifieds_backend/internal/services/dto"
	"classifieds_backend/pkg/apperrors"
	"classifieds_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdvertisementService() services.AdvertisementService {
	return services.NewAdvertisementService(repositories.NewAdvertisementRepository())
}

func TestCreateAndGetAdvertisement(t *testing.T) {
	db := helpers.OpenTestDB(t)
	svc := newAdvertisementService()
	owner := helpers.CreateUser(t, db, "kim", "pw", models.UserRoleUser)

	resp, err := svc.CreateAdvertisement(db, owner, &dto.CreateAdvertisementRequest{
		Title:       ptr("Sofa"),
		Description: ptr("Comfortable"),
		Price:       ptr(250),
	})
	require.NoError(t, err)

	got, err := svc.GetAdvertisement(db, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sofa", got.Title)
	assert.Equal(t, 250, got.Price)
	assert.Equal(t, owner.ID, got.AuthorID)
	assert.False(t, got.DateOfCreation.IsZero())

	_, err = svc.CreateAdvertisement(db, nil, &dto.CreateAdvertisementRequest{
		Title: ptr("x"), Description: ptr("y"), Price: ptr(1),
	})
	requireHTTPCode(t, err, http.StatusUnauthorized)

	_, err = svc.GetAdvertisement(db, 999)
	requireHTTPCode(t, err, http.StatusNotFound)
}

func TestUpdateAdvertisement_Ownership(t *testing.T) {
	db := helpers.OpenTestDB(t)
	svc := newAdvertisementService()

	owner := helpers.CreateUser(t, db, "leo", "pw", models.UserRoleUser)
	stranger := helpers.CreateUser(t, db, "mia", "pw", models.UserRoleUser)
	admin := helpers.CreateUser(t, db, "ned", "pw", models.UserRoleAdmin)
	ad := helpers.CreateAdvertisement(t, db, owner, "Lamp", "Old lamp", 30)

	_, err := svc.UpdateAdvertisement(db, stranger, ad.ID, &dto.UpdateAdvertisementRequest{Price: ptr(1)})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
	requireHTTPCode(t, err, http.StatusForbidden)

	_, err = svc.UpdateAdvertisement(db, owner, ad.ID, &dto.UpdateAdvertisementRequest{Price: ptr(35)})
	require.NoError(t, err)

	got, err := svc.GetAdvertisement(db, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, got.Price)
	assert.Equal(t, "Lamp", got.Title)
	assert.Equal(t, "Old lamp", got.Description)

	_, err = svc.UpdateAdvertisement(db, admin, ad.ID, &dto.UpdateAdvertisementRequest{Title: ptr("Lamp (admin)")})
	require.NoError(t, err)

	_, err = svc.UpdateAdvertisement(db, stranger, 999, &dto.UpdateAdvertisementRequest{Price: ptr(1)})
	requireHTTPCode(t, err, http.StatusNotFound)
}

func TestDeleteAdvertisement_Ownership(t *testing.T) {
	db := helpers.OpenTestDB(t)
	svc := newAdvertisementService()

	owner := helpers.CreateUser(t, db, "olga", "pw", models.UserRoleUser)
	stranger := helpers.CreateUser(t, db, "pete", "pw", models.UserRoleUser)
	admin := helpers.CreateUser(t, db, "quinn", "pw", models.UserRoleAdmin)
	first := helpers.CreateAdvertisement(t, db, owner, "A", "a", 1)
	second := helpers.CreateAdvertisement(t, db, owner, "B", "b", 2)

	_, err := svc.DeleteAdvertisement(db, stranger, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	_, err = svc.DeleteAdvertisement(db, owner, first.ID)
	require.NoError(t, err)
	_, err = svc.DeleteAdvertisement(db, admin, second.ID)
	require.NoError(t, err)

	_, err = svc.GetAdvertisement(db, first.ID)
	requireHTTPCode(t, err, http.StatusNotFound)
	_, err = svc.DeleteAdvertisement(db, owner, first.ID)
	requireHTTPCode(t, err, http.StatusNotFound)
}

func TestSearchAdvertisements(t *testing.T) {
	db := helpers.OpenTestDB(t)
	svc := newAdvertisementService()

	alice := helpers.CreateUser(t, db, "Alice", "pw", models.UserRoleUser)
	bob := helpers.CreateUser(t, db, "Bob", "pw", models.UserRoleUser)
	helpers.CreateAdvertisement(t, db, alice, "Red Bike", "fast bike", 5)
	helpers.CreateAdvertisement(t, db, alice, "Blue bike", "slow", 15)
	helpers.CreateAdvertisement(t, db, bob, "Bike pump", "100% working", 20)
	helpers.CreateAdvertisement(t, db, bob, "Table", "wooden_table", 0)

	titles := func(t *testing.T, req dto.SearchAdvertisementsRequest) []string {
		t.Helper()
		resp, err := svc.SearchAdvertisements(db, &req)
		require.NoError(t, err)
		out := make([]string, 0, len(resp.Results))
		for _, r := range resp.Results {
			out = append(out, r.Title)
		}
		return out
	}

	tests := []struct {
		name string
		req  dto.SearchAdvertisementsRequest
		want []string
	}{
		{"no filters", dto.SearchAdvertisementsRequest{}, []string{"Red Bike", "Blue bike", "Bike pump", "Table"}},
		{"title case-insensitive", dto.SearchAdvertisementsRequest{Title: "BIKE"}, []string{"Red Bike", "Blue bike", "Bike pump"}},
		{"price range inclusive", dto.SearchAdvertisementsRequest{MinPrice: ptr(10), MaxPrice: ptr(20)}, []string{"Blue bike", "Bike pump"}},
		{"title and author intersect", dto.SearchAdvertisementsRequest{Title: "bike", Author: "ali"}, []string{"Red Bike", "Blue bike"}},
		{"exact zero price", dto.SearchAdvertisementsRequest{Price: ptr(0)}, []string{"Table"}},
		{"percent is literal", dto.SearchAdvertisementsRequest{Description: "100%"}, []string{"Bike pump"}},
		{"underscore is not a wildcard", dto.SearchAdvertisementsRequest{Description: "sl_w"}, []string{}},
		{"underscore matches itself", dto.SearchAdvertisementsRequest{Description: "n_t"}, []string{"Table"}},
		{"nothing matches", dto.SearchAdvertisementsRequest{Author: "zed"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(t, tt.req))
		})
	}
}

func TestSearchAdvertisements_Cyrillic(t *testing.T) {
	db := helpers.OpenTestDB(t)
	svc := newAdvertisementService()

	ivan := helpers.CreateUser(t, db, "Иван", "pw", models.UserRoleUser)
	helpers.CreateAdvertisement(t, db, ivan, "Велосипед", "Красный", 100)
	helpers.CreateAdvertisement(t, db, ivan, "Самокат", "синий", 50)

	tests := []struct {
		name string
		req  dto.SearchAdvertisementsRequest
	}{
		{"title lower case", dto.SearchAdvertisementsRequest{Title: "велосипед"}},
		{"title exact case", dto.SearchAdvertisementsRequest{Title: "Велосипед"}},
		{"title upper case", dto.SearchAdvertisementsRequest{Title: "ВЕЛО"}},
		{"description", dto.SearchAdvertisementsRequest{Description: "красный"}},
		{"author lower case", dto.SearchAdvertisementsRequest{Author: "иван", Title: "вел"}},
		{"author exact case", dto.SearchAdvertisementsRequest{Author: "Иван", MinPrice: ptr(60)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.SearchAdvertisements(db, &tt.req)
			require.NoError(t, err)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, "Велосипед", resp.Results[0].Title)
		})
	}
}

type recordingPublisher struct {
	events []dto.AdvertisementEvent
}

func (p *recordingPublisher) Publish(event dto.AdvertisementEvent) {
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func TestAdvertisementService_PublishesEvents(t *testing.T) {
	db := helpers.OpenTestDB(t)
	events := &recordingPublisher{}
	svc := services.NewAdvertisementService(repositories.NewAdvertisementRepository(), services.WithEventPublisher(events))
	owner := helpers.CreateUser(t, db, "rita", "pw", models.UserRoleUser)
	stranger := helpers.CreateUser(t, db, "sam", "pw", models.UserRoleUser)

	created, err := svc.CreateAdvertisement(db, owner, &dto.CreateAdvertisementRequest{
		Title: ptr("Kettle"), Description: ptr("Steel"), Price: ptr(20),
	})
	require.NoError(t, err)

	_, err = svc.UpdateAdvertisement(db, owner, created.ID, &dto.UpdateAdvertisementRequest{Price: ptr(18)})
	require.NoError(t, err)

	// пустой PATCH и отказ в доступе событий не дают
	_, err = svc.UpdateAdvertisement(db, owner, created.ID, &dto.UpdateAdvertisementRequest{})
	require.NoError(t, err)
	_, err = svc.DeleteAdvertisement(db, stranger, created.ID)
	require.Error(t, err)

	_, err = svc.DeleteAdvertisement(db, owner, created.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{
		dto.EventAdvertisementCreated,
		dto.EventAdvertisementUpdated,
		dto.EventAdvertisementDeleted,
	}, events.types())

	updated := events.events[1].Advertisement
	require.NotNil(t, updated)
	assert.Equal(t, 18, updated.Price)
	assert.Equal(t, "Kettle", updated.Title)
	assert.Equal(t, owner.ID, updated.AuthorID)

	assert.Equal(t, created.ID, events.events[2].ID)
	assert.Nil(t, events.events[2].Advertisement)
}
