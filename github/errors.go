package github

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// WrapHTTPError wraps an error based on HTTP status code from GitHub API.
func WrapHTTPError(err error, statusCode int, message string) error {
	if err == nil {
		return nil
	}

	var code errors.ErrorCode
	switch statusCode {
	case http.StatusNotFound:
		code = errors.CodeNotFound
	case http.StatusUnauthorized:
		code = errors.CodeUnauthorized
	case http.StatusForbidden:
		code = errors.CodeForbidden
	case http.StatusConflict:
		code = errors.CodeConflict
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		code = errors.CodeInvalidInput
	case http.StatusTooManyRequests:
		code = errors.CodeRateLimit
	default:
		if statusCode >= 500 {
			code = errors.CodeNetwork
		} else {
			code = errors.CodeInternal
		}
	}

	return errors.WithContext(errors.Wrap(err, code, message), "status", statusCode)
}

// StatusCode returns the HTTP status recorded by WrapHTTPError, or zero.
func StatusCode(err error) int {
	var platformErr errors.PlatformError
	if !errors.As(err, &platformErr) {
		return 0
	}
	if status, ok := platformErr.Context()["status"].(int); ok {
		return status
	}
	return 0
}

// ghStatus matches the status gh prints on API failures, e.g.
// "gh: Not Found (HTTP 404)".
var ghStatus = regexp.MustCompile(`\(HTTP (\d{3})\)`)

// StatusFromCLI extracts the HTTP status from gh's stderr, or zero.
func StatusFromCLI(stderr string) int {
	m := ghStatus.FindStringSubmatch(stderr)
	if m == nil {
		return 0
	}
	status, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return status
}
