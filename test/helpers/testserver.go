package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"classifieds_backend/internal/app"
	"classifieds_backend/internal/config"
	"classifieds_backend/internal/middleware"
	"classifieds_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Config *config.Config
	Deps   *app.Dependencies
}

// NewTestServer поднимает роутер приложения поверх отдельной sqlite базы
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig(t))
}

func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	db := OpenTestDBWithConfig(t, cfg)
	deps, err := app.NewDependencies(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go deps.Hub.Run(ctx)
	t.Cleanup(cancel)

	router := app.SetupRouter(cfg, db, app.NewServiceContainer(cfg, deps), deps)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server: server,
		DB:     db,
		Config: cfg,
		Deps:   deps,
	}
}

// SendRequest отправляет JSON-запрос; token уходит в X-Token, если не пустой
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)

	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(resBodyBytes)
}

// DecodeJSON разбирает тело ответа в out
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), "не удалось распарсить JSON: %s", body)
}

// SendImage загружает изображение multipart-запросом в поле image
func (ts *TestServer) SendImage(t *testing.T, path, token, filename string, data []byte) (*http.Response, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPut, ts.Server.URL+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}

// CreateAndLoginUser создает пользователя в БД и логинится через API
func CreateAndLoginUser(t *testing.T, ts *TestServer, name, password string, role models.UserRole) (string, *models.User) {
	t.Helper()

	user := CreateUser(t, ts.DB, name, password, role)

	res, body := ts.SendRequest(t, http.MethodPost, "/login", "", map[string]string{
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "логин должен быть успешным. Ответ: "+body)

	var login struct {
		Token string `json:"token"`
	}
	DecodeJSON(t, body, &login)
	require.NotEmpty(t, login.Token)

	return login.Token, user
}
