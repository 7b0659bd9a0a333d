package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictdev/contact-relay/internal/logger"
	"github.com/strictdev/contact-relay/internal/types"
)

func do(t *testing.T, e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e, err := BuildEcho(logger.Logger)
	require.NoError(t, err)

	rec := do(t, e, http.MethodGet, "/health/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNoStoreHeader(t *testing.T) {
	e, err := BuildEcho(logger.Logger)
	require.NoError(t, err)

	rec := do(t, e, http.MethodGet, "/health/")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestPanicBecomesErrorEnvelope(t *testing.T) {
	e, err := BuildEcho(logger.Logger)
	require.NoError(t, err)

	e.GET("/boom/", func(echo.Context) error {
		panic("handler exploded")
	})

	rec := do(t, e, http.MethodGet, "/boom/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body types.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Erro interno na Function", body.Message)
	assert.NotNil(t, body.Detail)
}

func TestUnhandledErrorBecomesErrorEnvelope(t *testing.T) {
	e, err := BuildEcho(logger.Logger)
	require.NoError(t, err)

	e.GET("/fail/", func(echo.Context) error {
		return errors.New("plain failure")
	})

	rec := do(t, e, http.MethodGet, "/fail/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body types.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Erro interno na Function", body.Message)
}

func TestUnknownRouteIsJSON(t *testing.T) {
	e, err := BuildEcho(logger.Logger)
	require.NoError(t, err)

	rec := do(t, e, http.MethodGet, "/nope/")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}
