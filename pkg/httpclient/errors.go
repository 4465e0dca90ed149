package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// maxErrorBody bounds how much of an error response body is read.
const maxErrorBody = 1 << 20

// upstreamErrorBody is the structured error body some upstreams return. Both
// the storefront envelope ({"error":{"code","message"}}) and the flat
// {"message": "..."} form are recognised.
type upstreamErrorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Upstream   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Upstream, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Upstream, e.StatusCode, e.Message)
}

// AppError maps the status onto the storefront's error model. A 404 keeps
// not-found semantics when resource is set; anything else means the upstream
// failed.
func (e *StatusError) AppError(resource, id string) *apperrors.AppError {
	if e.StatusCode == http.StatusNotFound && resource != "" {
		return apperrors.NotFound(resource, id)
	}
	return apperrors.CatalogUnavailable(
		fmt.Sprintf("%s request failed with status %d", e.Upstream, e.StatusCode),
		e,
	)
}

// ParseResponseError reads and closes the body of a non-2xx response and
// translates it into an AppError via StatusError.AppError.
func ParseResponseError(resp *http.Response, upstream, resource, id string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apperrors.CatalogUnavailable(
			fmt.Sprintf("%s returned status %d", upstream, resp.StatusCode),
			fmt.Errorf("read error body: %w", err),
		)
	}

	statusErr := &StatusError{Upstream: upstream, StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	return statusErr.AppError(resource, id)
}

func upstreamMessage(body []byte) string {
	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(body))
}
