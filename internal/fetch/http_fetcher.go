package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single document retrieval when no client is supplied.
	DefaultTimeout = 30 * time.Second
	// DefaultMaximumBodyBytes caps the size of a retrieved document.
	DefaultMaximumBodyBytes = 10 << 20
)

const (
	defaultUserAgentConstant              = "metapr"
	userAgentHeaderConstant               = "User-Agent"
	acceptHeaderConstant                  = "Accept"
	acceptHeaderValueConstant             = "application/json, text/plain;q=0.9, */*;q=0.8"
	urlRequiredMessageConstant            = "document url must be provided"
	unsupportedSchemeTemplateConstant     = "unsupported url scheme %q"
	requestCreationErrorTemplateConstant  = "unable to build request for %s: %w"
	requestExecutionErrorTemplateConstant = "unable to retrieve %s: %w"
	bodyReadErrorTemplateConstant         = "unable to read response body from %s: %w"
	statusErrorTemplateConstant           = "unexpected status %d retrieving %s"
	emptyContentErrorTemplateConstant     = "empty document retrieved from %s"
	oversizedContentTemplateConstant      = "document from %s exceeds %d bytes"
	httpSchemeConstant                    = "http"
	httpsSchemeConstant                   = "https"
	schemeSeparatorConstant               = "://"
	minimumSuccessfulStatusCodeConstant   = 200
	maximumSuccessfulStatusCodeConstant   = 299
)

// ErrURLRequired indicates an empty document URL.
var ErrURLRequired = errors.New(urlRequiredMessageConstant)

// HTTPClient performs HTTP requests; *http.Client satisfies it.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error describes the unexpected status.
func (statusError StatusError) Error() string {
	return fmt.Sprintf(statusErrorTemplateConstant, statusError.StatusCode, statusError.URL)
}

// EmptyContentError reports a response whose body is blank.
type EmptyContentError struct {
	URL string
}

// Error describes the empty document.
func (emptyError EmptyContentError) Error() string {
	return fmt.Sprintf(emptyContentErrorTemplateConstant, emptyError.URL)
}

// OversizedContentError reports a body larger than the configured limit.
type OversizedContentError struct {
	URL          string
	MaximumBytes int64
}

// Error describes the oversized document.
func (oversizedError OversizedContentError) Error() string {
	return fmt.Sprintf(oversizedContentTemplateConstant, oversizedError.URL, oversizedError.MaximumBytes)
}

// Options configures an HTTPContentFetcher.
type Options struct {
	UserAgent        string
	MaximumBodyBytes int64
}

// HTTPContentFetcher retrieves textual documents with HTTP GET.
type HTTPContentFetcher struct {
	httpClient       HTTPClient
	userAgent        string
	maximumBodyBytes int64
}

// NewHTTPClient builds an *http.Client bounded by the provided timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NewHTTPContentFetcher constructs a fetcher; a nil client falls back to NewHTTPClient(DefaultTimeout).
func NewHTTPContentFetcher(httpClient HTTPClient, options Options) *HTTPContentFetcher {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}

	userAgent := strings.TrimSpace(options.UserAgent)
	if len(userAgent) == 0 {
		userAgent = defaultUserAgentConstant
	}

	maximumBodyBytes := options.MaximumBodyBytes
	if maximumBodyBytes <= 0 {
		maximumBodyBytes = DefaultMaximumBodyBytes
	}

	return &HTTPContentFetcher{
		httpClient:       httpClient,
		userAgent:        userAgent,
		maximumBodyBytes: maximumBodyBytes,
	}
}

// Fetch retrieves the document at documentURL and returns its body as text.
func (fetcher *HTTPContentFetcher) Fetch(executionContext context.Context, documentURL string) (string, error) {
	trimmedURL := strings.TrimSpace(documentURL)
	if len(trimmedURL) == 0 {
		return "", ErrURLRequired
	}
	if !hasSupportedScheme(trimmedURL) {
		return "", fmt.Errorf(unsupportedSchemeTemplateConstant, trimmedURL)
	}

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, trimmedURL, nil)
	if requestError != nil {
		return "", fmt.Errorf(requestCreationErrorTemplateConstant, trimmedURL, requestError)
	}
	request.Header.Set(userAgentHeaderConstant, fetcher.userAgent)
	request.Header.Set(acceptHeaderConstant, acceptHeaderValueConstant)

	response, responseError := fetcher.httpClient.Do(request)
	if responseError != nil {
		return "", fmt.Errorf(requestExecutionErrorTemplateConstant, trimmedURL, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode < minimumSuccessfulStatusCodeConstant || response.StatusCode > maximumSuccessfulStatusCodeConstant {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, fetcher.maximumBodyBytes))
		return "", StatusError{URL: trimmedURL, StatusCode: response.StatusCode}
	}

	bodyBytes, readError := io.ReadAll(io.LimitReader(response.Body, fetcher.maximumBodyBytes+1))
	if readError != nil {
		return "", fmt.Errorf(bodyReadErrorTemplateConstant, trimmedURL, readError)
	}
	if int64(len(bodyBytes)) > fetcher.maximumBodyBytes {
		return "", OversizedContentError{URL: trimmedURL, MaximumBytes: fetcher.maximumBodyBytes}
	}

	content := string(bodyBytes)
	if len(strings.TrimSpace(content)) == 0 {
		return "", EmptyContentError{URL: trimmedURL}
	}

	return content, nil
}

func hasSupportedScheme(documentURL string) bool {
	schemeSeparatorIndex := strings.Index(documentURL, schemeSeparatorConstant)
	if schemeSeparatorIndex <= 0 {
		return false
	}
	scheme := strings.ToLower(documentURL[:schemeSeparatorIndex])
	return scheme == httpSchemeConstant || scheme == httpsSchemeConstant
}
