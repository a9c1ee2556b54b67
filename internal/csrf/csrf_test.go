package csrf

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, seen *string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Protect(logger, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = Token(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, a, 44)
	assert.NotEqual(t, a, b)
}

func TestValidateToken(t *testing.T) {
	assert.True(t, ValidateToken("abc", "abc"))
	assert.False(t, ValidateToken("abc", "abd"))
	assert.False(t, ValidateToken("", ""))
	assert.False(t, ValidateToken("abc", ""))
}

func TestProtect_IssuesTokenOnGet(t *testing.T) {
	var seen string
	h := protected(t, &seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, seen)
}

func TestProtect_ReusesExistingCookie(t *testing.T) {
	var seen string
	h := protected(t, &seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "existing"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "existing", seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestProtect_UnsafeMethods(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		form       url.Values
		header     string
		wantStatus int
	}{
		{name: "form field", method: http.MethodPost, form: url.Values{FormFieldName: {"tok"}}, wantStatus: http.StatusOK},
		{name: "htmx header", method: http.MethodPut, header: "tok", wantStatus: http.StatusOK},
		{name: "header wins over form", method: http.MethodPost, form: url.Values{FormFieldName: {"tok"}}, header: "wrong", wantStatus: http.StatusForbidden},
		{name: "missing token", method: http.MethodPost, wantStatus: http.StatusForbidden},
		{name: "wrong token", method: http.MethodDelete, header: "nope", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := protected(t, &seen)

			req := httptest.NewRequest(tt.method, "/clients", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
