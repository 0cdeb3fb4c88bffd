package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/metapr/internal/fetch"
)

const (
	testDocumentPathConstant      = "/document.json"
	testDocumentContentConstant   = "{\"url\": \"https://github.com/a/b\"}"
	testUserAgentConstant         = "metapr-test"
	testUnsupportedSchemeConstant = "ftp://example.com/list.txt"
)

type observedRequest struct {
	method    string
	path      string
	userAgent string
}

type failingHTTPClient struct {
	err error
}

func (client failingHTTPClient) Do(*http.Request) (*http.Response, error) {
	return nil, client.err
}

func TestHTTPContentFetcherFetch(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name             string
		statusCode       int
		body             string
		maximumBodyBytes int64
		expectedContent  string
		assertError      func(testInstance *testing.T, fetchError error)
	}{
		{
			name:            "success",
			statusCode:      http.StatusOK,
			body:            testDocumentContentConstant,
			expectedContent: testDocumentContentConstant,
		},
		{
			name:       "not_found",
			statusCode: http.StatusNotFound,
			body:       "missing",
			assertError: func(testInstance *testing.T, fetchError error) {
				var statusError fetch.StatusError
				require.ErrorAs(testInstance, fetchError, &statusError)
				require.Equal(testInstance, http.StatusNotFound, statusError.StatusCode)
			},
		},
		{
			name:       "empty_body",
			statusCode: http.StatusOK,
			body:       " \n\t",
			assertError: func(testInstance *testing.T, fetchError error) {
				var emptyError fetch.EmptyContentError
				require.ErrorAs(testInstance, fetchError, &emptyError)
			},
		},
		{
			name:             "oversized_body",
			statusCode:       http.StatusOK,
			body:             strings.Repeat("x", 32),
			maximumBodyBytes: 16,
			assertError: func(testInstance *testing.T, fetchError error) {
				var oversizedError fetch.OversizedContentError
				require.ErrorAs(testInstance, fetchError, &oversizedError)
				require.EqualValues(testInstance, 16, oversizedError.MaximumBytes)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			subTest.Parallel()

			observedRequests := make(chan observedRequest, 1)
			server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
				observedRequests <- observedRequest{method: request.Method, path: request.URL.Path, userAgent: request.Header.Get("User-Agent")}
				responseWriter.WriteHeader(testCase.statusCode)
				_, _ = responseWriter.Write([]byte(testCase.body))
			}))
			defer server.Close()

			fetcher := fetch.NewHTTPContentFetcher(server.Client(), fetch.Options{
				UserAgent:        testUserAgentConstant,
				MaximumBodyBytes: testCase.maximumBodyBytes,
			})

			content, fetchError := fetcher.Fetch(context.Background(), server.URL+testDocumentPathConstant)
			recordedRequest := <-observedRequests
			require.Equal(subTest, http.MethodGet, recordedRequest.method)
			require.Equal(subTest, testDocumentPathConstant, recordedRequest.path)
			require.Equal(subTest, testUserAgentConstant, recordedRequest.userAgent)
			if testCase.assertError != nil {
				require.Error(subTest, fetchError)
				testCase.assertError(subTest, fetchError)
				require.Empty(subTest, content)
				return
			}

			require.NoError(subTest, fetchError)
			require.Equal(subTest, testCase.expectedContent, content)
		})
	}
}

func TestHTTPContentFetcherRejectsInvalidInput(testInstance *testing.T) {
	testInstance.Parallel()

	fetcher := fetch.NewHTTPContentFetcher(failingHTTPClient{err: errors.New("unused")}, fetch.Options{})

	_, emptyError := fetcher.Fetch(context.Background(), "  ")
	require.ErrorIs(testInstance, emptyError, fetch.ErrURLRequired)

	_, schemeError := fetcher.Fetch(context.Background(), testUnsupportedSchemeConstant)
	require.Error(testInstance, schemeError)
	require.Contains(testInstance, schemeError.Error(), "unsupported url scheme")
}

func TestHTTPContentFetcherWrapsTransportErrors(testInstance *testing.T) {
	testInstance.Parallel()

	transportError := errors.New("connection refused")
	fetcher := fetch.NewHTTPContentFetcher(failingHTTPClient{err: transportError}, fetch.Options{})

	_, fetchError := fetcher.Fetch(context.Background(), "https://example.com/list.txt")
	require.ErrorIs(testInstance, fetchError, transportError)
}
