package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	handler "github.com/davidalvz/pixelmuse/handlers"
	"github.com/davidalvz/pixelmuse/providers"
	"github.com/davidalvz/pixelmuse/router"
	"github.com/davidalvz/pixelmuse/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// fakeProvider records the upstream request and returns canned results.
type fakeProvider struct {
	mu      sync.Mutex
	urls    []string
	err     error
	calls   int
	lastReq providers.Request
}

func (f *fakeProvider) Generate(_ context.Context, req providers.Request) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.urls, nil
}

func newTestApp(t *testing.T) (*fiber.App, *storage.MemStore, *fakeProvider) {
	t.Helper()

	store := storage.NewMemStore()
	provider := &fakeProvider{urls: []string{"https://img.example/out.png"}}

	app := fiber.New()
	router.SetupRoutes(app, handler.New(store, provider, nil))
	return app, store, provider
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &parsed))
	}
	return resp.StatusCode, parsed
}

func registerUser(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": username,
		"email":    email,
	})
	require.Equal(t, http.StatusOK, status)

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok, "register response must carry the user object")
	id, _ := user["id"].(string)
	require.NotEmpty(t, id)
	return id
}
