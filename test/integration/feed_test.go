package integration_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"classifieds_backend/internal/models"
	"classifieds_backend/internal/services/dto"
	"classifieds_backend/test/helpers"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_ReceivesAdvertisementChanges(t *testing.T) {
	t.Parallel()
	ts := helpers.NewTestServer(t)
	token, owner := helpers.CreateAndLoginUser(t, ts, "nora", "pw", models.UserRoleUser)

	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws/advertisements"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return ts.Deps.Hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	next := func(t *testing.T) dto.AdvertisementEvent {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event dto.AdvertisementEvent
		require.NoError(t, conn.ReadJSON(&event))
		return event
	}

	res, body := ts.SendRequest(t, http.MethodPost, "/advertisement", token, map[string]interface{}{
		"title": "Drone", "description": "quad", "price": 900,
	})
	id := mustID(t, res, body)

	event := next(t)
	assert.Equal(t, dto.EventAdvertisementCreated, event.Type)
	assert.Equal(t, id, event.ID)
	require.NotNil(t, event.Advertisement)
	assert.Equal(t, "Drone", event.Advertisement.Title)
	assert.Equal(t, owner.ID, event.Advertisement.AuthorID)

	res, body = ts.SendRequest(t, http.MethodPatch, "/advertisement/"+itoa(id), token, map[string]interface{}{"price": 850})
	mustID(t, res, body)
	event = next(t)
	assert.Equal(t, dto.EventAdvertisementUpdated, event.Type)
	assert.Equal(t, 850, event.Advertisement.Price)

	res, body = ts.SendRequest(t, http.MethodDelete, "/advertisement/"+itoa(id), token, nil)
	mustID(t, res, body)
	event = next(t)
	assert.Equal(t, dto.EventAdvertisementDeleted, event.Type)
	assert.Equal(t, id, event.ID)
}
