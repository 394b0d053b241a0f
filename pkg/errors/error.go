// Package errors classifies the failures a tool call can run into and turns
// them into the text results handed back to MCP clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v69/github"
	"github.com/mark3labs/mcp-go/mcp"
)

// ConfigurationError reports a missing or unusable setting. Its message is
// shown to the caller verbatim.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfigurationError creates a ConfigurationError for setting.
func NewConfigurationError(setting, message string) *ConfigurationError {
	return &ConfigurationError{
		Setting: setting,
		Message: message,
	}
}

// NewMissingSettingError reports that an environment setting is absent.
func NewMissingSettingError(setting, consequence string) *ConfigurationError {
	return NewConfigurationError(setting, fmt.Sprintf("%s environment variable is not set. %s", setting, consequence))
}

// GitHubAPIError carries the status code and message GitHub returned.
type GitHubAPIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GitHubAPIError) Error() string {
	return fmt.Sprintf("GitHub API error (%d): %s", e.StatusCode, e.Message)
}

func (e *GitHubAPIError) Unwrap() error {
	return e.Err
}

// AsGitHubAPIError extracts the status code and message from any of the error
// types go-github produces for non-2xx responses.
func AsGitHubAPIError(err error) (*GitHubAPIError, bool) {
	if err == nil {
		return nil, false
	}

	var apiErr *GitHubAPIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &GitHubAPIError{
			StatusCode: statusOf(rateLimitErr.Response, http.StatusForbidden),
			Message:    rateLimitErr.Message,
			Err:        err,
		}, true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &GitHubAPIError{
			StatusCode: statusOf(abuseErr.Response, http.StatusForbidden),
			Message:    abuseErr.Message,
			Err:        err,
		}, true
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		message := respErr.Message
		if message == "" {
			message = http.StatusText(statusOf(respErr.Response, 0))
		}
		return &GitHubAPIError{
			StatusCode: statusOf(respErr.Response, 0),
			Message:    message,
			Err:        err,
		}, true
	}

	return nil, false
}

func statusOf(resp *http.Response, fallback int) int {
	if resp == nil {
		return fallback
	}
	return resp.StatusCode
}

// StatusCode returns the HTTP status of a GitHub API error.
func StatusCode(err error) (int, bool) {
	apiErr, ok := AsGitHubAPIError(err)
	if !ok {
		return 0, false
	}
	return apiErr.StatusCode, true
}

// IsNotFound reports whether err is a GitHub 404 response.
func IsNotFound(err error) bool {
	status, ok := StatusCode(err)
	return ok && status == http.StatusNotFound
}

// Describe renders err as the text a tool caller receives:
//   - configuration problems: their message as-is
//   - GitHub API errors: "GitHub API error (<status>): <message>"
//   - everything else: "Error: <description>"
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var configErr *ConfigurationError
	if errors.As(err, &configErr) {
		return configErr.Message
	}

	if apiErr, ok := AsGitHubAPIError(err); ok {
		return apiErr.Error()
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// NewToolResultError builds the error result for a failed tool call.
func NewToolResultError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(Describe(err))
}
