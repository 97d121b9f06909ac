package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"scribe/internal/handlers"
	"scribe/internal/middleware"
	"scribe/internal/models"
	"scribe/internal/repositories"
	"scribe/internal/services"
	"scribe/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app against a fresh in-memory SQLite database.
// Each call gets its own named memory database so tests stay isolated.
func setupApp() (*fiber.App, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	hasher := password.NewHasher(bcrypt.MinCost)
	userService := services.NewUserService(userRepo, hasher)
	authService := services.NewAuthService(userRepo, hasher)
	postService := services.NewPostService(postRepo, nil) // no broker in tests

	sessionStore := session.New(session.Config{
		KeyLookup:  "cookie:session_id",
		Expiration: time.Hour,
	})
	authRequired := middleware.AuthRequired(sessionStore)

	app := fiber.New()
	handlers.NewUserHandler(userService).RegisterRoutes(app, authRequired)
	handlers.NewPostHandler(postService).RegisterRoutes(app, authRequired)
	handlers.NewAuthHandler(authService, userService, sessionStore).RegisterRoutes(app, authRequired)

	return app, nil
}

// TestMain suppresses handler logging for cleaner test output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	err := json.NewDecoder(resp.Body).Decode(&body)
	assert.NoError(t, err)
	resp.Body.Close()
	return body
}

// signup creates a user via POST /user and returns its id.
func signup(t *testing.T, app *fiber.App, email, pw, name string) string {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/user", map[string]string{
		"email":       email,
		"password":    pw,
		"displayName": name,
	})
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	return body["id"].(string)
}

// login opens a session via POST /auth/login and returns the session
// cookie to attach to subsequent requests.
func login(t *testing.T, app *fiber.App, email, pw string) string {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": pw,
	})
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	for _, c := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(c, "session_id=") {
			return strings.Split(c, ";")[0]
		}
	}
	t.Fatal("login response carried no session cookie")
	return ""
}

func TestSignupNeverEchoesPassword(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	req := jsonRequest(http.MethodPost, "/user", map[string]string{
		"email":       "a@b.com",
		"password":    "secret",
		"displayName": "A",
	})
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, "A", body["displayName"])
	assert.NotEmpty(t, body["id"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)
	_, hasHash := body["Password"]
	assert.False(t, hasHash)
}

func TestSignupDuplicateEmail(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	signup(t, app, "a@b.com", "secret", "A")

	req := jsonRequest(http.MethodPost, "/user", map[string]string{
		"email":       "a@b.com",
		"password":    "other-secret",
		"displayName": "Impostor",
	})
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Email address already exists", body["message"])
}

func TestSignupValidation(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"invalid email", map[string]string{"email": "bad", "password": "secret", "displayName": "A"}},
		{"missing email", map[string]string{"password": "secret", "displayName": "A"}},
		{"short password", map[string]string{"email": "a@b.com", "password": "abc", "displayName": "A"}},
		{"missing password", map[string]string{"email": "a@b.com", "displayName": "A"}},
		{"missing display name", map[string]string{"email": "a@b.com", "password": "secret"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPost, "/user", tc.payload)
			resp, err := app.Test(req, -1)
			assert.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, "Validation failed", body["message"])
		})
	}
}

func TestUserRoutesRequireSession(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	userID := signup(t, app, "a@b.com", "secret", "A")

	requests := []*http.Request{
		jsonRequest(http.MethodGet, "/user", nil),
		jsonRequest(http.MethodGet, "/user/"+userID, nil),
		jsonRequest(http.MethodPut, "/user/"+userID, map[string]string{"displayName": "B"}),
		jsonRequest(http.MethodDelete, "/user/"+userID, nil),
	}
	for _, req := range requests {
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", req.Method, req.URL.Path)
		resp.Body.Close()
	}
}

func TestUserCRUDWithSession(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	userID := signup(t, app, "a@b.com", "secret", "A")
	cookie := login(t, app, "a@b.com", "secret")

	// List users.
	req := jsonRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var users []map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	resp.Body.Close()
	assert.Len(t, users, 1)
	_, hasPassword := users[0]["password"]
	assert.False(t, hasPassword)

	// Read a single user.
	req = jsonRequest(http.MethodGet, "/user/"+userID, nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "a@b.com", body["email"])

	// Read a missing user.
	req = jsonRequest(http.MethodGet, "/user/"+uuid.New().String(), nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Update profile fields and the password.
	req = jsonRequest(http.MethodPut, "/user/"+userID, map[string]string{
		"displayName": "A Renamed",
		"password":    "new-secret",
		"bio":         "writes tests",
	})
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "A Renamed", body["displayName"])
	assert.Equal(t, "writes tests", body["bio"])

	// The new password works, the old one does not.
	req = jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "secret",
	})
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
	login(t, app, "a@b.com", "new-secret")

	// Delete the user.
	req = jsonRequest(http.MethodDelete, "/user/"+userID, nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "User deleted", body["message"])

	// Deleting again reports not found.
	req = jsonRequest(http.MethodDelete, "/user/"+userID, nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPostListIsPublic(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	req := jsonRequest(http.MethodGet, "/post", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []models.Post
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	resp.Body.Close()
	assert.Empty(t, posts)
}

func TestPostMutationsRequireSession(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	requests := []*http.Request{
		jsonRequest(http.MethodPost, "/post", map[string]string{"title": "T", "content": "C"}),
		jsonRequest(http.MethodPut, "/post/some-id", map[string]string{"title": "T"}),
		jsonRequest(http.MethodDelete, "/post/some-id", nil),
	}
	for _, req := range requests {
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", req.Method, req.URL.Path)
		resp.Body.Close()
	}
}

func TestPostLifecycle(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	userID := signup(t, app, "author@b.com", "secret", "Author")
	cookie := login(t, app, "author@b.com", "secret")

	// Create; a client-supplied userId must be ignored.
	req := jsonRequest(http.MethodPost, "/post", map[string]string{
		"title":   "Hello",
		"content": "First post",
		"userId":  "spoofed-user-id",
	})
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	postID := body["id"].(string)
	assert.Equal(t, userID, body["userId"])

	// Create with a missing field fails validation.
	req = jsonRequest(http.MethodPost, "/post", map[string]string{"title": "No content"})
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Public read sees the post.
	req = jsonRequest(http.MethodGet, "/post", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []models.Post
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	resp.Body.Close()
	assert.Len(t, posts, 1)
	assert.Equal(t, userID, posts[0].UserID)

	// Update title only; content and owner survive.
	req = jsonRequest(http.MethodPut, "/post/"+postID, map[string]string{"title": "Hello v2"})
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Hello v2", body["title"])
	assert.Equal(t, "First post", body["content"])
	assert.Equal(t, userID, body["userId"])

	// Update a missing post.
	req = jsonRequest(http.MethodPut, "/post/"+uuid.New().String(), map[string]string{"title": "X"})
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Delete, then delete again.
	req = jsonRequest(http.MethodDelete, "/post/"+postID, nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Post deleted", body["message"])

	req = jsonRequest(http.MethodDelete, "/post/"+postID, nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginLogout(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	signup(t, app, "a@b.com", "secret", "A")

	// Wrong password.
	req := jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "wrong",
	})
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	cookie := login(t, app, "a@b.com", "secret")

	// /auth/me resolves the session to the user.
	req = jsonRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "a@b.com", body["email"])

	// Logout invalidates the session.
	req = jsonRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req = jsonRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestFederatedLogin(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	payload := map[string]string{
		"federatedId": "google-123",
		"email":       "fed@b.com",
		"displayName": "Fed User",
	}

	// First sight creates the account and opens a session.
	req := jsonRequest(http.MethodPost, "/auth/federated", payload)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	firstID := user["id"].(string)
	assert.Equal(t, "google-123", user["federatedId"])

	// Second login resolves to the same account.
	req = jsonRequest(http.MethodPost, "/auth/federated", payload)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	user = body["user"].(map[string]interface{})
	assert.Equal(t, firstID, user["id"])
}
