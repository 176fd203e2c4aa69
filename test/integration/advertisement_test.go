package integration_test

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"classifieds_backend/internal/models"
	"classifieds_backend/pkg/apperrors"
	"classifieds_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type advertisementBody struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Price          int    `json:"price"`
	AuthorID       uint   `json:"author_id"`
	DateOfCreation string `json:"date_of_creation"`
	ImageURL       string `json:"image_url"`
}

func TestAdvertisement_CRUD(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	ownerToken, owner := helpers.CreateAndLoginUser(t, ts, "hank", "pw", models.UserRoleUser)
	strangerToken, _ := helpers.CreateAndLoginUser(t, ts, "ivy", "pw", models.UserRoleUser)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "jay", "pw", models.UserRoleAdmin)

	res, body := ts.SendRequest(t, http.MethodPost, "/advertisement", ownerToken, map[string]interface{}{
		"title":       "Guitar",
		"description": "Acoustic",
		"price":       300,
	})
	id := mustID(t, res, body)
	path := "/advertisement/" + itoa(id)

	res, body = ts.SendRequest(t, http.MethodPatch, path, strangerToken, map[string]interface{}{"price": 1})
	assertError(t, res, body, http.StatusForbidden, apperrors.CodeForbidden)

	res, body = ts.SendRequest(t, http.MethodPatch, path, ownerToken, map[string]interface{}{"price": 250})
	mustID(t, res, body)

	res, body = ts.SendRequest(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var ad advertisementBody
	helpers.DecodeJSON(t, body, &ad)
	assert.Equal(t, "Guitar", ad.Title)
	assert.Equal(t, "Acoustic", ad.Description)
	assert.Equal(t, 250, ad.Price)
	assert.Equal(t, owner.ID, ad.AuthorID)
	assert.NotEmpty(t, ad.DateOfCreation)

	res, body = ts.SendRequest(t, http.MethodDelete, path, strangerToken, nil)
	assertError(t, res, body, http.StatusForbidden, apperrors.CodeForbidden)

	res, body = ts.SendRequest(t, http.MethodDelete, path, adminToken, nil)
	mustID(t, res, body)

	res, body = ts.SendRequest(t, http.MethodDelete, path, adminToken, nil)
	assertError(t, res, body, http.StatusNotFound, apperrors.CodeNotFound)
}

func TestAdvertisement_BadInput(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token, _ := helpers.CreateAndLoginUser(t, ts, "kay", "pw", models.UserRoleUser)

	res, body := ts.SendRequest(t, http.MethodPost, "/advertisement", token, map[string]interface{}{"title": "no price"})
	assertError(t, res, body, http.StatusBadRequest, apperrors.CodeValidationFailed)

	res, body = ts.SendRequest(t, http.MethodPost, "/advertisement", token, map[string]interface{}{
		"title": "t", "description": "d", "price": "cheap",
	})
	assertError(t, res, body, http.StatusBadRequest, apperrors.CodeValidationFailed)

	res, body = ts.SendRequest(t, http.MethodGet, "/advertisement/0", "", nil)
	assertError(t, res, body, http.StatusBadRequest, apperrors.CodeValidationFailed)

	res, body = ts.SendRequest(t, http.MethodGet, "/advertisement?min_price=ten", "", nil)
	assertError(t, res, body, http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func TestAdvertisement_Search(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	alice := helpers.CreateUser(t, ts.DB, "Alice", "pw", models.UserRoleUser)
	bob := helpers.CreateUser(t, ts.DB, "Bob", "pw", models.UserRoleUser)
	helpers.CreateAdvertisement(t, ts.DB, alice, "Mountain bike", "fast", 5)
	helpers.CreateAdvertisement(t, ts.DB, alice, "City bike", "slow", 15)
	helpers.CreateAdvertisement(t, ts.DB, bob, "Bike lock", "steel", 20)
	helpers.CreateAdvertisement(t, ts.DB, bob, "Sofa", "soft", 25)

	search := func(t *testing.T, query string) []string {
		t.Helper()
		res, body := ts.SendRequest(t, http.MethodGet, "/advertisement"+query, "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var resp struct {
			Results []advertisementBody `json:"results"`
		}
		helpers.DecodeJSON(t, body, &resp)
		titles := make([]string, 0, len(resp.Results))
		for _, r := range resp.Results {
			titles = append(titles, r.Title)
		}
		return titles
	}

	assert.Len(t, search(t, ""), 4)
	assert.Equal(t, []string{"City bike", "Bike lock"}, search(t, "?min_price=10&max_price=20"))
	assert.Equal(t, []string{"Mountain bike", "City bike"}, search(t, "?title=BIKE&author=ali"))
	assert.Equal(t, []string{"Sofa"}, search(t, "?price=25"))
	assert.Empty(t, search(t, "?author=nobody"))
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestAdvertisement_Image(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	ownerToken, owner := helpers.CreateAndLoginUser(t, ts, "lou", "pw", models.UserRoleUser)
	strangerToken, _ := helpers.CreateAndLoginUser(t, ts, "max", "pw", models.UserRoleUser)
	ad := helpers.CreateAdvertisement(t, ts.DB, owner, "Poster", "paper", 3)
	path := "/advertisement/" + itoa(ad.ID) + "/image"

	res, body := ts.SendRequest(t, http.MethodGet, path, "", nil)
	assertError(t, res, body, http.StatusNotFound, apperrors.CodeNotFound)

	res, body = ts.SendImage(t, path, "", "a.png", testPNG(t, 10, 10))
	assertError(t, res, body, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	res, body = ts.SendImage(t, path, strangerToken, "a.png", testPNG(t, 10, 10))
	assertError(t, res, body, http.StatusForbidden, apperrors.CodeForbidden)

	res, body = ts.SendImage(t, path, ownerToken, "a.txt", []byte("plain text"))
	assertError(t, res, body, http.StatusBadRequest, apperrors.CodeValidationFailed)

	res, body = ts.SendRequest(t, http.MethodPut, path, ownerToken, map[string]string{"image": "nope"})
	assertError(t, res, body, http.StatusBadRequest, apperrors.CodeValidationFailed)

	res, body = ts.SendImage(t, path, ownerToken, "a.png", testPNG(t, 3200, 800))
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var uploaded advertisementBody
	helpers.DecodeJSON(t, body, &uploaded)
	assert.Equal(t, path, uploaded.ImageURL)

	res, body = ts.SendRequest(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/jpeg", res.Header.Get("Content-Type"))
	cfg, err := jpeg.DecodeConfig(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, ts.Config.Images.MaxWidth, cfg.Width)
	assert.Equal(t, 400, cfg.Height)

	res, body = ts.SendRequest(t, http.MethodGet, "/advertisement/"+itoa(ad.ID), "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var fetched advertisementBody
	helpers.DecodeJSON(t, body, &fetched)
	assert.Equal(t, path, fetched.ImageURL)

	res, body = ts.SendRequest(t, http.MethodDelete, path, strangerToken, nil)
	assertError(t, res, body, http.StatusForbidden, apperrors.CodeForbidden)

	res, body = ts.SendRequest(t, http.MethodDelete, path, ownerToken, nil)
	mustID(t, res, body)

	res, body = ts.SendRequest(t, http.MethodGet, path, "", nil)
	assertError(t, res, body, http.StatusNotFound, apperrors.CodeNotFound)
}
