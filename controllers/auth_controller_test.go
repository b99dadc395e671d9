package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ismail6385/primeuaeservices-sub000/middleware"
	"github.com/ismail6385/primeuaeservices-sub000/models"
)

const testJWTSecret = "test-secret"

func newAuthApp(db *gorm.DB) *fiber.App {
	ac := NewAuthController(db, testLogger(), testJWTSecret)

	app := fiber.New()
	app.Post("/auth/login", ac.Login)
	app.Get("/auth/me", middleware.Protected(db, testJWTSecret), ac.Me)
	return app
}

func seedAdmin(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, EnsureAdminUser(db, "admin@primeuae.example", "s3cret", "Operator", testLogger()))
}

func TestLoginSuccess(t *testing.T) {
	db := setupTestDB(t)
	app := newAuthApp(db)
	seedAdmin(t, db)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "admin@primeuae.example",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, true, out["success"])
	assert.NotEmpty(t, out["access_token"])
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	app := newAuthApp(db)
	seedAdmin(t, db)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "admin@primeuae.example",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "Invalid email or password", out["error"])
}

func TestLoginUnknownAccount(t *testing.T) {
	db := setupTestDB(t)
	app := newAuthApp(db)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "nobody@primeuae.example",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	db := setupTestDB(t)
	app := newAuthApp(db)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteWithToken(t *testing.T) {
	db := setupTestDB(t)
	app := newAuthApp(db)
	seedAdmin(t, db)

	resp := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "admin@primeuae.example",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decodeBody(t, resp)["access_token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	admin := out["data"].(map[string]interface{})
	assert.Equal(t, "admin@primeuae.example", admin["email"])
	assert.NotContains(t, admin, "password_hash")
}

func TestEnsureAdminUserIdempotent(t *testing.T) {
	db := setupTestDB(t)

	seedAdmin(t, db)
	seedAdmin(t, db)

	var count int64
	db.Model(&models.AdminUser{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestEnsureAdminUserSkipsWhenUnset(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, EnsureAdminUser(db, "", "", "", testLogger()))

	var count int64
	db.Model(&models.AdminUser{}).Count(&count)
	assert.Zero(t, count)
}
