package echoServer

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestBodyLimit_RejectsOversizedUpload(t *testing.T) {
	e := echo.New()
	RegisterMiddlewares(e)
	e.POST("/upload", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	big := bytes.Repeat([]byte("x"), 9<<20)
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(big))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestBodyLimit_AllowsNormalRequests(t *testing.T) {
	e := echo.New()
	RegisterMiddlewares(e)
	e.POST("/upload", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte("small")))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
