package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/DukeRupert/clientdesk/internal/domain"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// errorBody is the error shape the backend uses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// parseErrorResponse converts a failed response into a domain error. The
// backend's message, when present, becomes the user-facing message.
func parseErrorResponse(op string, status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := strings.TrimSpace(eb.Message)
	if msg == "" {
		msg = strings.TrimSpace(eb.Error)
	}

	apiErr := &APIError{StatusCode: status, Message: msg}
	return &domain.Error{
		Code:    statusToCode(status),
		Op:      op,
		Message: msg,
		Err:     apiErr,
	}
}

// statusToCode maps backend HTTP status codes to domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.EINVALID
	case http.StatusUnauthorized:
		return domain.EUNAUTHORIZED
	case http.StatusForbidden:
		return domain.EFORBIDDEN
	case http.StatusNotFound:
		return domain.ENOTFOUND
	case http.StatusConflict:
		return domain.ECONFLICT
	case http.StatusTooManyRequests:
		return domain.ERATELIMIT
	default:
		if status >= 500 {
			return domain.EUNAVAILABLE
		}
		return domain.EINVALID
	}
}
