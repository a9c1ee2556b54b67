package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		isSecure bool
		path     string
		want     map[string]string
	}{
		{
			name:     "production page",
			isSecure: true,
			path:     "/",
			want: map[string]string{
				"X-Frame-Options":           "DENY",
				"X-Content-Type-Options":    "nosniff",
				"Referrer-Policy":           "strict-origin-when-cross-origin",
				"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
				"Permissions-Policy":        "geolocation=(), microphone=(), camera=()",
				"Cache-Control":             "no-store",
			},
		},
		{
			name:     "development has no hsts",
			isSecure: false,
			path:     "/",
			want: map[string]string{
				"Strict-Transport-Security": "",
				"X-Frame-Options":           "DENY",
			},
		},
		{
			name:     "static assets stay cacheable",
			isSecure: false,
			path:     "/static/app.css",
			want: map[string]string{
				"Cache-Control": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSecurityHeadersMiddleware(tt.isSecure).Handler(okHandler())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			for header, value := range tt.want {
				assert.Equal(t, value, rec.Header().Get(header), header)
			}
		})
	}
}

func TestSecurityHeadersMiddleware_CSP(t *testing.T) {
	h := NewSecurityHeadersMiddleware(false).Handler(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "script-src 'self' https://unpkg.com")
	assert.Contains(t, csp, "frame-ancestors 'none'")
	assert.Contains(t, csp, "form-action 'self'")
	assert.NotContains(t, csp, "script-src 'self' https://unpkg.com 'unsafe-inline'")
}
