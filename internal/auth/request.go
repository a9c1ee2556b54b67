package auth

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// RedirectParam carries the originally requested path through sign-in.
const RedirectParam = "redirect"

// LoginURL returns the login location that returns to path after sign-in.
// The root path needs no parameter.
func LoginURL(path string) string {
	path = SafeRedirect(path)
	if path == "/" {
		return LoginPath
	}
	v := url.Values{}
	v.Set(RedirectParam, path)
	return LoginPath + "?" + v.Encode()
}

// SafeRedirect returns raw if it is a same-origin absolute path and "/"
// otherwise. The login page itself is never a target.
func SafeRedirect(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return "/"
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	if strings.ContainsAny(raw, "\r\n") {
		return "/"
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "/"
	}
	if u.Path == LoginPath {
		return "/"
	}
	return raw
}

// CurrentPath returns the path and query the visitor was looking at. For
// htmx fragment requests that is the page in HX-Current-URL, not the
// fragment URL. A missing or malformed value yields "/".
func CurrentPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return "/"
	}

	if IsHTMX(r) {
		if cur := r.Header.Get("HX-Current-URL"); cur != "" {
			if u, err := url.Parse(cur); err == nil && (u.Host == "" || u.Host == r.Host) {
				return SafeRedirect(u.RequestURI())
			}
		}
	}

	return SafeRedirect(r.URL.RequestURI())
}

// Redirect sends the browser to location. htmx requests get HX-Redirect so
// the whole page is replaced instead of a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// IsHTMX reports whether htmx issued the request.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// ClientIP extracts the client IP from the request, considering proxy headers.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (most common proxy header)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client
		ips := strings.Split(xff, ",")
		if clientIP := strings.TrimSpace(ips[0]); clientIP != "" {
			return clientIP
		}
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}

	return ip
}
