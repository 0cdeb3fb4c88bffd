package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds a single GitHub API request.
	DefaultTimeout = 30 * time.Second
)

const (
	headsReferencePrefixConstant       = "heads/"
	fullReferencePrefixConstant        = "refs/heads/"
	enterpriseURLErrorTemplateConstant = "invalid github api url %q: %w"
)

// Options configures a Client.
type Options struct {
	// BaseURL selects a GitHub Enterprise API endpoint; empty targets api.github.com.
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client performs branch, contents, and pull request operations through go-github.
type Client struct {
	gitHubClient *gh.Client
	rateLimiter  *RateLimiter
}

// NewClient constructs a Client authenticated with a static token.
func NewClient(executionContext context.Context, token string, options Options) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenRequired
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	httpClient := oauth2.NewClient(executionContext, tokenSource)
	httpClient.Timeout = timeout

	return NewClientWithHTTPClient(httpClient, options)
}

// NewClientWithHTTPClient constructs a Client over a caller-supplied HTTP client.
func NewClientWithHTTPClient(httpClient *http.Client, options Options) (*Client, error) {
	gitHubClient := gh.NewClient(httpClient)

	baseURL := strings.TrimSpace(options.BaseURL)
	if len(baseURL) > 0 {
		enterpriseClient, enterpriseError := gitHubClient.WithEnterpriseURLs(baseURL, baseURL)
		if enterpriseError != nil {
			return nil, fmt.Errorf(enterpriseURLErrorTemplateConstant, baseURL, enterpriseError)
		}
		gitHubClient = enterpriseClient
	}

	return &Client{
		gitHubClient: gitHubClient,
		rateLimiter:  NewRateLimiter(options.RequestsPerSecond),
	}, nil
}

// CreateFile ensures the head branch exists and commits the file to it.
func (client *Client) CreateFile(executionContext context.Context, request FileCreationRequest) error {
	if validationError := validateFileCreationRequest(request); validationError != nil {
		return validationError
	}

	if ensureError := client.ensureBranch(executionContext, request); ensureError != nil {
		return ensureError
	}

	if waitError := client.rateLimiter.Wait(executionContext); waitError != nil {
		return OperationError{Operation: createFileOperationNameConstant, Cause: waitError}
	}

	fileOptions := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(request.CommitMessage),
		Content: []byte(request.Content),
		Branch:  gh.Ptr(request.HeadBranch),
	}
	_, response, createError := client.gitHubClient.Repositories.CreateFile(
		executionContext,
		request.Repository.Owner,
		request.Repository.Name,
		request.FilePath,
		fileOptions,
	)
	client.recordResponse(response)
	if createError != nil {
		return OperationError{Operation: createFileOperationNameConstant, Cause: translateError(createError, client.rateLimiter)}
	}

	return nil
}

// CreatePullRequest opens a pull request from the head branch into the base branch.
func (client *Client) CreatePullRequest(executionContext context.Context, request PullRequestCreationRequest) (PullRequestReference, error) {
	if validationError := validatePullRequestCreationRequest(request); validationError != nil {
		return PullRequestReference{}, validationError
	}

	if waitError := client.rateLimiter.Wait(executionContext); waitError != nil {
		return PullRequestReference{}, OperationError{Operation: createPullRequestOperationNameConstant, Cause: waitError}
	}

	newPullRequest := &gh.NewPullRequest{
		Title: gh.Ptr(request.Title),
		Head:  gh.Ptr(request.HeadBranch),
		Base:  gh.Ptr(request.BaseBranch),
		Body:  gh.Ptr(request.Body),
	}
	pullRequest, response, createError := client.gitHubClient.PullRequests.Create(
		executionContext,
		request.Repository.Owner,
		request.Repository.Name,
		newPullRequest,
	)
	client.recordResponse(response)
	if createError != nil {
		return PullRequestReference{}, OperationError{Operation: createPullRequestOperationNameConstant, Cause: translateError(createError, client.rateLimiter)}
	}

	return PullRequestReference{Number: pullRequest.GetNumber(), URL: pullRequest.GetHTMLURL()}, nil
}

// RateLimiter exposes the limiter shared by all requests of this client.
func (client *Client) RateLimiter() *RateLimiter {
	return client.rateLimiter
}

// ensureBranch creates refs/heads/<head> at the tip of the base branch; an existing head branch is reused.
func (client *Client) ensureBranch(executionContext context.Context, request FileCreationRequest) error {
	owner := request.Repository.Owner
	name := request.Repository.Name

	if waitError := client.rateLimiter.Wait(executionContext); waitError != nil {
		return OperationError{Operation: ensureBranchOperationNameConstant, Cause: waitError}
	}
	baseReference, response, lookupError := client.gitHubClient.Git.GetRef(executionContext, owner, name, headsReferencePrefixConstant+request.BaseBranch)
	client.recordResponse(response)
	if lookupError != nil {
		return OperationError{Operation: ensureBranchOperationNameConstant, Cause: translateError(lookupError, client.rateLimiter)}
	}

	baseSHA := baseReference.GetObject().GetSHA()
	if len(baseSHA) == 0 {
		return OperationError{Operation: ensureBranchOperationNameConstant, Cause: errMissingBaseSHA}
	}

	if waitError := client.rateLimiter.Wait(executionContext); waitError != nil {
		return OperationError{Operation: ensureBranchOperationNameConstant, Cause: waitError}
	}
	_, response, createError := client.gitHubClient.Git.CreateRef(executionContext, owner, name, gh.CreateRef{
		Ref: fullReferencePrefixConstant + request.HeadBranch,
		SHA: baseSHA,
	})
	client.recordResponse(response)
	if createError != nil {
		translatedError := translateError(createError, client.rateLimiter)
		if isReferenceAlreadyExists(translatedError) {
			return nil
		}
		return OperationError{Operation: ensureBranchOperationNameConstant, Cause: translatedError}
	}

	return nil
}

func (client *Client) recordResponse(response *gh.Response) {
	if response == nil || response.Response == nil {
		return
	}
	client.rateLimiter.UpdateFromResponse(response.Response)
}
