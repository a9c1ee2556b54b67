package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/clientdesk/internal/auth"
	"github.com/DukeRupert/clientdesk/internal/domain"
)

const (
	msgInvalid      = "Dados inválidos. Verifique os campos e tente novamente."
	msgUnauthorized = "Sessão expirada. Faça login novamente."
	msgInternal     = "Ocorreu um erro interno. Tente novamente mais tarde."
)

// statusByCode maps domain error codes to HTTP status codes. Unknown codes
// are internal errors.
var statusByCode = map[string]int{
	domain.EINVALID:      http.StatusBadRequest,
	domain.EUNAUTHORIZED: http.StatusUnauthorized,
	domain.EFORBIDDEN:    http.StatusForbidden,
	domain.ENOTFOUND:     http.StatusNotFound,
	domain.ECONFLICT:     http.StatusConflict,
	domain.EBUSY:         http.StatusConflict,
	domain.ERATELIMIT:    http.StatusTooManyRequests,
	domain.EUNAVAILABLE:  http.StatusBadGateway,
	domain.EINTERNAL:     http.StatusInternalServerError,
}

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status code.
func ErrorCodeToHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// JSONError is the body of an error answered as JSON.
type JSONError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ErrorResponse answers err with the mapped status. API clients get a
// JSONError, everyone else plain text. Internal details and operation
// names never reach the body.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	fields := domain.FieldErrors(err)

	var message string
	switch {
	case fields != nil:
		code, status, message = domain.EINVALID, http.StatusBadRequest, msgInvalid
	case status >= http.StatusInternalServerError && code != domain.EUNAVAILABLE:
		message = msgInternal
	default:
		message = domain.UserMessage(err, msgInternal)
	}

	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request failed",
		"error", err,
		"code", code,
		"op", domain.ErrorOp(err),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	)

	if !acceptsJSON(r) {
		http.Error(w, message, status)
		return
	}

	var body JSONError
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Fields = fields

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// UnauthorizedResponse answers a request that needs a session it does
// not have.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	ErrorResponse(w, r, logger, domain.Unauthorized("", msgUnauthorized))
}

// acceptsJSON reports whether the client is an API caller. htmx requests
// always want HTML.
func acceptsJSON(r *http.Request) bool {
	if auth.IsHTMX(r) {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasSuffix(r.URL.Path, ".json")
}
