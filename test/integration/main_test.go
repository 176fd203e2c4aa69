package integration_test

import (
	"net/http"
	"testing"

	"classifieds_backend/pkg/apperrors"
	"classifieds_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idResponse struct {
	ID uint `json:"id"`
}

type errorBody struct {
	Error struct {
		Code    apperrors.ErrorCode `json:"code"`
		Domain  string              `json:"domain"`
		Message string              `json:"message"`
	} `json:"error"`
}

// assertError проверяет статус и код ошибки в теле
func assertError(t *testing.T, res *http.Response, body string, status int, code apperrors.ErrorCode) {
	t.Helper()
	assert.Equal(t, status, res.StatusCode, body)

	var e errorBody
	helpers.DecodeJSON(t, body, &e)
	assert.Equal(t, code, e.Error.Code, body)
}

func mustID(t *testing.T, res *http.Response, body string) uint {
	t.Helper()
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var resp idResponse
	helpers.DecodeJSON(t, body, &resp)
	require.NotZero(t, resp.ID)
	return resp.ID
}
