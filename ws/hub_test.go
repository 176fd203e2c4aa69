package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"classifieds_backend/internal/services/dto"
	"classifieds_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFeed(t *testing.T, origins []string) (*ws.Hub, string, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	go hub.Run(ctx)
	t.Cleanup(cancel)

	router := gin.New()
	ws.NewHandler(hub, origins).RegisterRoutes(router.Group(""))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/advertisements", cancel
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub, url, _ := startFeed(t, nil)

	first := dial(t, url, nil)
	second := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Publish(dto.AdvertisementEvent{Type: dto.EventAdvertisementDeleted, ID: 7})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event dto.AdvertisementEvent
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, dto.EventAdvertisementDeleted, event.Type)
		assert.Equal(t, uint(7), event.ID)
		assert.Nil(t, event.Advertisement)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, url, _ := startFeed(t, nil)

	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, url, cancel := startFeed(t, nil)

	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived), "got %v", err)
	assert.Equal(t, 0, hub.ClientCount())

	// после остановки Publish не блокируется
	hub.Publish(dto.AdvertisementEvent{Type: dto.EventAdvertisementDeleted, ID: 1})
}

func TestHandler_ChecksOrigin(t *testing.T) {
	_, url, _ := startFeed(t, []string{"http://allowed.test"})

	_, res, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	conn := dial(t, url, http.Header{"Origin": {"http://allowed.test"}})
	assert.NotNil(t, conn)
}

func TestPublish_EncodesAdvertisement(t *testing.T) {
	hub, url, _ := startFeed(t, nil)
	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(dto.AdvertisementEvent{
		Type:          dto.EventAdvertisementCreated,
		ID:            3,
		Advertisement: &dto.AdvertisementResponse{ID: 3, Title: "Lamp", Price: 12, AuthorID: 1},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "advertisement.created", body["type"])
	ad := body["advertisement"].(map[string]interface{})
	assert.Equal(t, "Lamp", ad["title"])
	assert.NotContains(t, ad, "image_url")
}
