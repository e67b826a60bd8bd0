package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "alice",
		"email":    "a@x.com",
	})
	require.Equal(t, http.StatusOK, status)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, float64(120), user["credits"], "new users get the default grant")
}

func TestRegister_Duplicate(t *testing.T) {
	app, _, _ := newTestApp(t)
	registerUser(t, app, "alice", "a@x.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "alice2",
		"email":    "a@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", body["message"])

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "alice",
		"email":    "other@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", body["message"])
}

func TestRegister_Invalid(t *testing.T) {
	app, _, _ := newTestApp(t)

	cases := []fiber.Map{
		{"username": "", "email": "a@x.com"},
		{"username": "has spaces", "email": "a@x.com"},
		{"username": "alice!", "email": "a@x.com"},
		{"username": "alice", "email": "not-an-email"},
		{"username": "alice", "email": ""},
	}
	for _, payload := range cases {
		status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", payload)
		assert.Equal(t, http.StatusBadRequest, status, "payload %v", payload)
		assert.Equal(t, "Invalid user data", body["message"])
	}
}

func TestLogin(t *testing.T) {
	app, _, _ := newTestApp(t)
	id := registerUser(t, app, "alice", "a@x.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, id, user["id"])

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"username": "alice",
	})
	require.Equal(t, http.StatusOK, status)
	user = body["user"].(map[string]interface{})
	assert.Equal(t, id, user["id"])
}

func TestLogin_UnknownUser(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "nobody@x.com",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User not found", body["message"])
}

func TestGetUser(t *testing.T) {
	app, _, _ := newTestApp(t)
	id := registerUser(t, app, "alice", "a@x.com")

	status, body := doJSON(t, app, http.MethodGet, "/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	status, body = doJSON(t, app, http.MethodGet, "/api/users/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])
}

func TestUpdateCredits(t *testing.T) {
	app, store, _ := newTestApp(t)
	id := registerUser(t, app, "alice", "a@x.com")

	status, body := doJSON(t, app, http.MethodPatch, "/api/users/"+id+"/credits", fiber.Map{
		"credits": 42,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	user, err := store.GetUser(id)
	require.NoError(t, err)
	assert.Equal(t, 42, user.Credits)

	status, _ = doJSON(t, app, http.MethodPatch, "/api/users/"+id+"/credits", fiber.Map{
		"credits": -1,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPatch, "/api/users/missing-id/credits", fiber.Map{
		"credits": 10,
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdatePreferences(t *testing.T) {
	app, store, _ := newTestApp(t)
	id := registerUser(t, app, "alice", "a@x.com")

	status, body := doJSON(t, app, http.MethodPatch, "/api/users/"+id+"/preferences", fiber.Map{
		"version":          1,
		"styleDescription": "grainy film look",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	user, err := store.GetUser(id)
	require.NoError(t, err)
	require.NotNil(t, user.Preferences)
	assert.Equal(t, "grainy film look", user.Preferences.StyleDescription)
}
