package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/clientdesk/internal/templ/shared"
)

func TestRendererLoadsEmbeddedTemplates(t *testing.T) {
	app := newTestApp(t)

	names := app.renderer.ListTemplates()
	for _, want := range []string{"home", "about", "auth/login", "auth/error", "partial/flash", "partial/client_list", "partial/delete_dialog"} {
		assert.Contains(t, names, want)
	}
}

func TestRendererPartial(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	err := app.renderer.Partial("flash", &shared.Flash{Type: "error", Message: "<b>falhou</b>"}).Render(context.Background(), &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "&lt;b&gt;falhou&lt;/b&gt;")
	assert.Contains(t, buf.String(), "bg-red-50")
}

func TestRendererUnknownTemplate(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.renderer.RenderHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, app.renderer.Partial("missing", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRendererDevReload(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/auth.html":     {Data: []byte(`{{define "auth"}}[{{template "content" .}}]{{end}}`)},
		"layouts/app.html":      {Data: []byte(`{{define "app"}}({{template "content" .}}){{end}}`)},
		"partials/flash.html":   {Data: []byte(`{{define "flash"}}{{.}}{{end}}`)},
		"pages/home.html":       {Data: []byte(`{{define "content"}}v1{{end}}`)},
		"pages/auth/login.html": {Data: []byte(`{{define "content"}}login{{end}}`)},
	}
	r, err := NewRenderer(RendererConfig{FS: fsys, Logger: discardLogger(), IsDev: true})
	require.NoError(t, err)

	render := func(name string) string {
		var buf bytes.Buffer
		require.NoError(t, r.Page(name, nil).Render(context.Background(), &buf))
		return buf.String()
	}

	assert.Equal(t, "(v1)", render("home"))
	assert.Equal(t, "[login]", render("auth/login"))

	fsys["pages/home.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}v2{{end}}`)}
	assert.Equal(t, "(v2)", render("home"))
}

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs()

	t.Run("clientCount", func(t *testing.T) {
		count := funcs["clientCount"].(func(int) string)
		assert.Equal(t, "Nenhum cliente", count(0))
		assert.Equal(t, "1 cliente", count(1))
		assert.Equal(t, "5 clientes", count(5))
	})

	t.Run("cn resolves conflicts", func(t *testing.T) {
		cn := funcs["cn"].(func(...string) string)
		classes := strings.Fields(cn("px-2 py-1", "px-4"))
		assert.ElementsMatch(t, []string{"px-4", "py-1"}, classes)
		assert.NotContains(t, classes, "px-2")
	})

	t.Run("dict", func(t *testing.T) {
		dict := funcs["dict"].(func(...any) map[string]any)
		assert.Equal(t, map[string]any{"a": 1, "b": "x"}, dict("a", 1, "b", "x"))
		assert.Nil(t, dict("a"))
		assert.Nil(t, dict(1, 2))
	})

	t.Run("csrfField escapes the token", func(t *testing.T) {
		field := funcs["csrfField"].(func(string) template.HTML)
		assert.Contains(t, string(field(`a"b`)), `value="a&#34;b"`)
	})

	t.Run("title", func(t *testing.T) {
		title := funcs["title"].(func(any) string)
		assert.Equal(t, "Maria Lima", title("maria lima"))
	})
}
