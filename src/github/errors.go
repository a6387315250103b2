package github

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the GitHub REST API.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", err.StatusCode, err.Message)
}

// AuthError reports that the App credentials could not be exchanged or
// validated against GitHub.
type AuthError struct {
	Op  string
	Err error
}

func (err *AuthError) Error() string {
	return fmt.Sprintf("github auth: %s: %v", err.Op, err.Err)
}

func (err *AuthError) Unwrap() error {
	return err.Err
}

// IsNotFound reports whether err is a GitHub API 404 Not Found response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 404
}

// IsUnauthorized reports whether GitHub rejected the presented credentials.
func IsUnauthorized(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && (apiError.StatusCode == 401 || apiError.StatusCode == 403)
}

// parseAPIError parses a GitHub API error from a status code and body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Message != "" {
		apiError.Message = wireError.Message
		apiError.DocumentationURL = wireError.DocumentationURL
	} else {
		apiError.Message = string(body)
	}

	return apiError
}
