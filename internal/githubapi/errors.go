package githubapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
)

const (
	ownerFieldNameConstant                  = "owner"
	nameFieldNameConstant                   = "name"
	filePathFieldNameConstant               = "file_path"
	commitMessageFieldNameConstant          = "commit_message"
	baseBranchFieldNameConstant             = "base_branch"
	headBranchFieldNameConstant             = "head_branch"
	titleFieldNameConstant                  = "title"
	requiredValueMessageConstant            = "value required"
	tokenRequiredMessageConstant            = "github token must be provided"
	missingBaseSHAMessageConstant           = "base branch reference has no commit sha"
	invalidInputErrorTemplateConstant       = "%s: %s"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	apiErrorTemplateConstant                = "github api error %d: %s (url: %s)"
	rateLimitErrorTemplateConstant          = "github rate limit exceeded, resets at %s"
	referenceAlreadyExistsMessageConstant   = "reference already exists"
	ensureBranchOperationNameConstant       = OperationName("EnsureBranch")
	createFileOperationNameConstant         = OperationName("CreateFile")
	createPullRequestOperationNameConstant  = OperationName("CreatePullRequest")
)

// OperationName describes a named GitHub workflow supported by the client.
type OperationName string

var (
	// ErrTokenRequired indicates the client was constructed without a token.
	ErrTokenRequired  = errors.New(tokenRequiredMessageConstant)
	errMissingBaseSHA = errors.New(missingBaseSHAMessageConstant)
)

// InvalidInputError surfaces validation issues for request fields.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps failures of a named GitHub operation.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// APIError represents a GitHub error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error describes the API failure.
func (apiError APIError) Error() string {
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.StatusCode, apiError.Message, apiError.URL)
}

// RateLimitError reports an exhausted primary or secondary rate limit.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

// Error describes the rate limit.
func (rateLimitError RateLimitError) Error() string {
	return fmt.Sprintf(rateLimitErrorTemplateConstant, rateLimitError.ResetAt.Format(time.RFC3339))
}

// IsNotFound reports whether err carries a 404 response.
func IsNotFound(err error) bool {
	var apiError APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether err carries a rate limit failure.
func IsRateLimited(err error) bool {
	var rateLimitError RateLimitError
	return errors.As(err, &rateLimitError)
}

func isReferenceAlreadyExists(err error) bool {
	var apiError APIError
	if !errors.As(err, &apiError) {
		return false
	}
	return apiError.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(apiError.Message), referenceAlreadyExistsMessageConstant)
}

// translateError converts go-github failures into APIError and RateLimitError values.
func translateError(err error, rateLimiter *RateLimiter) error {
	var rateLimitError *gh.RateLimitError
	if errors.As(err, &rateLimitError) {
		return RateLimitError{
			ResetAt:   rateLimitError.Rate.Reset.Time,
			Remaining: rateLimitError.Rate.Remaining,
			Limit:     rateLimitError.Rate.Limit,
		}
	}

	var abuseError *gh.AbuseRateLimitError
	if errors.As(err, &abuseError) {
		resetAt := rateLimiter.ResetTime()
		if abuseError.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseError.RetryAfter)
		}
		return RateLimitError{ResetAt: resetAt, Remaining: rateLimiter.Remaining(), Limit: rateLimiter.Limit()}
	}

	var errorResponse *gh.ErrorResponse
	if errors.As(err, &errorResponse) {
		apiError := APIError{Message: errorResponse.Message}
		if errorResponse.Response != nil {
			apiError.StatusCode = errorResponse.Response.StatusCode
			if errorResponse.Response.Request != nil && errorResponse.Response.Request.URL != nil {
				apiError.URL = errorResponse.Response.Request.URL.String()
			}
		}
		return apiError
	}

	return err
}
