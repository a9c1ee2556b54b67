package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbout(t *testing.T) {
	app := newTestApp(t)
	s, raw := app.signIn(t)

	rec := serve(app.pages.About, withSession(httptest.NewRequest(http.MethodGet, "/sobre", nil), s, raw))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Sobre · clientdesk</title>")
	for _, f := range aboutFeatures {
		assert.Contains(t, body, f)
	}
	assert.Contains(t, body, "Ana")
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := serve(app.pages.NotFound, httptest.NewRequest(http.MethodGet, "/nada", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgPageNotFound)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestServerErrorForHTMX(t *testing.T) {
	app := newTestApp(t)

	rec := serve(app.pages.ServerError, htmx(httptest.NewRequest(http.MethodGet, "/clients", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#flash", rec.Header().Get("HX-Retarget"))
	assert.Equal(t, "innerHTML", rec.Header().Get("HX-Reswap"))
	assert.Contains(t, rec.Body.String(), msgServerError)
}
