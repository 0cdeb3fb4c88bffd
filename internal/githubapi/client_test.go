package githubapi_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/metapr/internal/githubapi"
	"github.com/temirov/metapr/internal/gitrepo"
)

const (
	testOwnerConstant              = "a"
	testNameConstant               = "b"
	testBaseBranchConstant         = "main"
	testHeadBranchConstant         = "add-codemeta-json-a-b"
	testFilePathConstant           = "codemeta.json"
	testContentConstant            = "{\"url\": \"https://github.com/a/b\"}"
	testCommitMessageConstant      = "Add codemeta.json from automated script"
	testTitleConstant              = "Add codemeta.json to b"
	testBodyConstant               = "generated from https://example.com/b.json"
	testBaseSHAConstant            = "3a0f86fb8db8eea7ccbb9a95f325ddbedfb25e15"
	testPullRequestNumberConstant  = 7
	testPullRequestURLConstant     = "https://github.com/a/b/pull/7"
	getReferencePatternConstant    = "GET /api/v3/repos/a/b/git/ref/heads/main"
	createReferencePatternConstant = "POST /api/v3/repos/a/b/git/refs"
	createContentsPatternConstant  = "PUT /api/v3/repos/a/b/contents/codemeta.json"
	createPullPatternConstant      = "POST /api/v3/repos/a/b/pulls"
	referenceExistsBodyConstant    = `{"message":"Reference already exists","documentation_url":"https://docs.github.com/rest/git/refs#create-a-reference"}`
	notFoundBodyConstant           = `{"message":"Not Found"}`
)

type recordedCall struct {
	pattern string
	body    map[string]any
}

type fakeGitHub struct {
	mutex               sync.Mutex
	calls               []recordedCall
	referenceLookupCode int
	referenceCreateCode int
	contentsCode        int
	pullRequestCode     int
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		referenceLookupCode: http.StatusOK,
		referenceCreateCode: http.StatusCreated,
		contentsCode:        http.StatusCreated,
		pullRequestCode:     http.StatusCreated,
	}
}

func (fake *fakeGitHub) record(pattern string, request *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(request.Body).Decode(&body)
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	fake.calls = append(fake.calls, recordedCall{pattern: pattern, body: body})
}

func (fake *fakeGitHub) recordedCalls() []recordedCall {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return append([]recordedCall(nil), fake.calls...)
}

func (fake *fakeGitHub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(getReferencePatternConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		fake.record(getReferencePatternConstant, request)
		if fake.referenceLookupCode != http.StatusOK {
			writeJSON(responseWriter, fake.referenceLookupCode, notFoundBodyConstant)
			return
		}
		writeJSON(responseWriter, http.StatusOK, `{"ref":"refs/heads/main","object":{"type":"commit","sha":"`+testBaseSHAConstant+`"}}`)
	})
	mux.HandleFunc(createReferencePatternConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		fake.record(createReferencePatternConstant, request)
		if fake.referenceCreateCode != http.StatusCreated {
			writeJSON(responseWriter, fake.referenceCreateCode, referenceExistsBodyConstant)
			return
		}
		writeJSON(responseWriter, http.StatusCreated, `{"ref":"refs/heads/`+testHeadBranchConstant+`","object":{"type":"commit","sha":"`+testBaseSHAConstant+`"}}`)
	})
	mux.HandleFunc(createContentsPatternConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		fake.record(createContentsPatternConstant, request)
		if fake.contentsCode != http.StatusCreated {
			writeJSON(responseWriter, fake.contentsCode, `{"message":"Invalid request."}`)
			return
		}
		writeJSON(responseWriter, http.StatusCreated, `{"content":{"name":"codemeta.json","path":"codemeta.json"},"commit":{"sha":"7638417db6d59f3c431d3e1f261cc637155684cd"}}`)
	})
	mux.HandleFunc(createPullPatternConstant, func(responseWriter http.ResponseWriter, request *http.Request) {
		fake.record(createPullPatternConstant, request)
		if fake.pullRequestCode != http.StatusCreated {
			writeJSON(responseWriter, fake.pullRequestCode, `{"message":"Validation Failed","errors":[{"resource":"PullRequest","code":"custom","message":"A pull request already exists for a:add-codemeta-json-a-b."}]}`)
			return
		}
		writeJSON(responseWriter, http.StatusCreated, `{"number":`+strconv.Itoa(testPullRequestNumberConstant)+`,"html_url":"`+testPullRequestURLConstant+`"}`)
	})
	return mux
}

func writeJSON(responseWriter http.ResponseWriter, statusCode int, body string) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	_, _ = responseWriter.Write([]byte(body))
}

func newTestClient(testInstance *testing.T, handler http.Handler) *githubapi.Client {
	testInstance.Helper()
	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)

	client, clientError := githubapi.NewClientWithHTTPClient(server.Client(), githubapi.Options{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
	})
	require.NoError(testInstance, clientError)
	return client
}

func testRepository() gitrepo.RepositoryReference {
	return gitrepo.RepositoryReference{Owner: testOwnerConstant, Name: testNameConstant}
}

func testFileCreationRequest() githubapi.FileCreationRequest {
	return githubapi.FileCreationRequest{
		Repository:    testRepository(),
		FilePath:      testFilePathConstant,
		Content:       testContentConstant,
		CommitMessage: testCommitMessageConstant,
		BaseBranch:    testBaseBranchConstant,
		HeadBranch:    testHeadBranchConstant,
	}
}

func testPullRequestCreationRequest() githubapi.PullRequestCreationRequest {
	return githubapi.PullRequestCreationRequest{
		Repository: testRepository(),
		Title:      testTitleConstant,
		Body:       testBodyConstant,
		BaseBranch: testBaseBranchConstant,
		HeadBranch: testHeadBranchConstant,
	}
}

func callPatterns(calls []recordedCall) []string {
	patterns := make([]string, 0, len(calls))
	for _, call := range calls {
		patterns = append(patterns, call.pattern)
	}
	return patterns
}

func TestClientCreateFile(testInstance *testing.T) {
	testCases := []struct {
		name                string
		referenceLookupCode int
		referenceCreateCode int
		contentsCode        int
		expectError         bool
		expectNotFound      bool
		expectedPatterns    []string
	}{
		{
			name:                "creates_branch_then_file",
			referenceLookupCode: http.StatusOK,
			referenceCreateCode: http.StatusCreated,
			contentsCode:        http.StatusCreated,
			expectedPatterns:    []string{getReferencePatternConstant, createReferencePatternConstant, createContentsPatternConstant},
		},
		{
			name:                "reuses_existing_branch",
			referenceLookupCode: http.StatusOK,
			referenceCreateCode: http.StatusUnprocessableEntity,
			contentsCode:        http.StatusCreated,
			expectedPatterns:    []string{getReferencePatternConstant, createReferencePatternConstant, createContentsPatternConstant},
		},
		{
			name:                "missing_base_branch",
			referenceLookupCode: http.StatusNotFound,
			referenceCreateCode: http.StatusCreated,
			contentsCode:        http.StatusCreated,
			expectError:         true,
			expectNotFound:      true,
			expectedPatterns:    []string{getReferencePatternConstant},
		},
		{
			name:                "contents_rejected",
			referenceLookupCode: http.StatusOK,
			referenceCreateCode: http.StatusCreated,
			contentsCode:        http.StatusUnprocessableEntity,
			expectError:         true,
			expectedPatterns:    []string{getReferencePatternConstant, createReferencePatternConstant, createContentsPatternConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			fake := newFakeGitHub()
			fake.referenceLookupCode = testCase.referenceLookupCode
			fake.referenceCreateCode = testCase.referenceCreateCode
			fake.contentsCode = testCase.contentsCode
			client := newTestClient(subtest, fake.handler())

			createError := client.CreateFile(context.Background(), testFileCreationRequest())
			if testCase.expectError {
				require.Error(subtest, createError)
				var operationError githubapi.OperationError
				require.ErrorAs(subtest, createError, &operationError)
				var apiError githubapi.APIError
				require.ErrorAs(subtest, createError, &apiError)
				require.Equal(subtest, testCase.expectNotFound, githubapi.IsNotFound(createError))
			} else {
				require.NoError(subtest, createError)
			}

			calls := fake.recordedCalls()
			require.Equal(subtest, testCase.expectedPatterns, callPatterns(calls))

			if len(calls) >= 2 {
				require.Equal(subtest, "refs/heads/"+testHeadBranchConstant, calls[1].body["ref"])
				require.Equal(subtest, testBaseSHAConstant, calls[1].body["sha"])
			}
			if len(calls) == 3 {
				contentsBody := calls[2].body
				require.Equal(subtest, testCommitMessageConstant, contentsBody["message"])
				require.Equal(subtest, testHeadBranchConstant, contentsBody["branch"])
				encodedContent, isString := contentsBody["content"].(string)
				require.True(subtest, isString)
				decodedContent, decodeError := base64.StdEncoding.DecodeString(encodedContent)
				require.NoError(subtest, decodeError)
				require.Equal(subtest, testContentConstant, string(decodedContent))
			}
		})
	}
}

func TestClientCreatePullRequest(testInstance *testing.T) {
	testInstance.Run("created", func(subtest *testing.T) {
		fake := newFakeGitHub()
		client := newTestClient(subtest, fake.handler())

		reference, createError := client.CreatePullRequest(context.Background(), testPullRequestCreationRequest())
		require.NoError(subtest, createError)
		require.Equal(subtest, githubapi.PullRequestReference{Number: testPullRequestNumberConstant, URL: testPullRequestURLConstant}, reference)

		calls := fake.recordedCalls()
		require.Len(subtest, calls, 1)
		require.Equal(subtest, testTitleConstant, calls[0].body["title"])
		require.Equal(subtest, testHeadBranchConstant, calls[0].body["head"])
		require.Equal(subtest, testBaseBranchConstant, calls[0].body["base"])
		require.Equal(subtest, testBodyConstant, calls[0].body["body"])
	})

	testInstance.Run("already_open", func(subtest *testing.T) {
		fake := newFakeGitHub()
		fake.pullRequestCode = http.StatusUnprocessableEntity
		client := newTestClient(subtest, fake.handler())

		_, createError := client.CreatePullRequest(context.Background(), testPullRequestCreationRequest())
		var apiError githubapi.APIError
		require.ErrorAs(subtest, createError, &apiError)
		require.Equal(subtest, http.StatusUnprocessableEntity, apiError.StatusCode)
		require.Equal(subtest, "Validation Failed", apiError.Message)
	})
}

func TestClientTranslatesRateLimitResponses(testInstance *testing.T) {
	resetAt := time.Now().Add(time.Hour).Truncate(time.Second)
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.Header().Set("X-RateLimit-Limit", "5000")
		responseWriter.Header().Set("X-RateLimit-Remaining", "0")
		responseWriter.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		writeJSON(responseWriter, http.StatusForbidden, `{"message":"API rate limit exceeded"}`)
	})
	client := newTestClient(testInstance, handler)

	_, createError := client.CreatePullRequest(context.Background(), testPullRequestCreationRequest())
	require.True(testInstance, githubapi.IsRateLimited(createError))

	var rateLimitError githubapi.RateLimitError
	require.ErrorAs(testInstance, createError, &rateLimitError)
	require.True(testInstance, rateLimitError.ResetAt.Equal(resetAt))
	require.Equal(testInstance, 0, rateLimitError.Remaining)
	require.Equal(testInstance, 5000, rateLimitError.Limit)
	require.Equal(testInstance, 0, client.RateLimiter().Remaining())
}

func TestClientValidatesRequests(testInstance *testing.T) {
	fake := newFakeGitHub()
	client := newTestClient(testInstance, fake.handler())

	fileRequest := testFileCreationRequest()
	fileRequest.HeadBranch = " "
	createError := client.CreateFile(context.Background(), fileRequest)
	var inputError githubapi.InvalidInputError
	require.ErrorAs(testInstance, createError, &inputError)
	require.Equal(testInstance, "head_branch", inputError.FieldName)

	pullRequest := testPullRequestCreationRequest()
	pullRequest.Repository.Owner = ""
	_, pullRequestError := client.CreatePullRequest(context.Background(), pullRequest)
	require.ErrorAs(testInstance, pullRequestError, &inputError)
	require.Equal(testInstance, "owner", inputError.FieldName)

	require.Empty(testInstance, fake.recordedCalls())
}

func TestNewClientRequiresToken(testInstance *testing.T) {
	_, clientError := githubapi.NewClient(context.Background(), "  ", githubapi.Options{})
	require.ErrorIs(testInstance, clientError, githubapi.ErrTokenRequired)

	client, clientError := githubapi.NewClient(context.Background(), "token", githubapi.Options{BaseURL: "https://github.example.com"})
	require.NoError(testInstance, clientError)
	require.NotNil(testInstance, client)
}
