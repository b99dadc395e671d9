package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ismail6385/primeuaeservices-sub000/models"
	"github.com/ismail6385/primeuaeservices-sub000/utils"
)

// setupTestDB opens an isolated in-memory database per test. The DSN is
// keyed on the test name so parallel tests do not share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Ticket{},
		&models.EmailEvent{},
		&models.OutboundMessage{},
		&models.BlogPost{},
		&models.BlogTag{},
		&models.AdminUser{},
		&models.AdminSetting{},
	)
	require.NoError(t, err)

	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// doJSON performs an in-process request against the app and returns the
// response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// stubMailer records the last send and returns a fixed id or error.
type stubMailer struct {
	id    string
	err   error
	calls int
	last  utils.SendEmailInput
}

func (m *stubMailer) SendEmail(_ context.Context, input utils.SendEmailInput) (string, error) {
	m.calls++
	m.last = input
	if m.err != nil {
		return "", m.err
	}
	return m.id, nil
}
