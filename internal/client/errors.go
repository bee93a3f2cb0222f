package client

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	domainerrors "github.com/angelarchive/archive-server/internal/errors"
)

// mapHTTPError translates a non-2xx response into a domain error, pulling
// the message and details out of the server's error envelope.
func mapHTTPError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	_ = json.Unmarshal(resp.Body(), &body)

	msg := strings.TrimSpace(body.Error)
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest:
		return domainerrors.Validation(msg)
	case http.StatusUnauthorized:
		return domainerrors.Unauthorized(msg)
	case http.StatusForbidden:
		return domainerrors.Forbidden(msg)
	case http.StatusNotFound:
		return domainerrors.NotFound(msg)
	case http.StatusConflict:
		return domainerrors.AlreadyExists(msg)
	case http.StatusTooManyRequests:
		return domainerrors.RateLimited(msg, body.Details["retryAfter"])
	default:
		return domainerrors.Internal(fmt.Sprintf("http %d: %s", status, msg))
	}
}
