package codemeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/metapr/internal/githubapi"
	"github.com/temirov/metapr/internal/gitrepo"
	"github.com/temirov/metapr/internal/metrics"
)

const (
	manifestURLFieldNameConstant             = "manifest_url"
	fetcherFieldNameConstant                 = "fetcher"
	classifierFieldNameConstant              = "classifier"
	mutatorFieldNameConstant                 = "mutator"
	dependencyMissingMessageConstant         = "dependency required"
	manifestUnavailableErrorTemplateConstant = "%w: %s: %w"
	runInterruptedErrorTemplateConstant      = "run interrupted after %d of %d items: %w"
	runStartedMessageConstant                = "publish run started"
	manifestFetchFailedMessageConstant       = "manifest fetch failed; aborting run"
	manifestLoadedMessageConstant            = "manifest loaded"
	documentFetchFailedMessageConstant       = "document fetch failed"
	documentInvalidMessageConstant           = "document is not valid JSON"
	documentMissingURLMessageConstant        = "document has no url field"
	notRepositoryMessageConstant             = "url does not point at a repository"
	unparseableRepositoryMessageConstant     = "unable to derive owner and name from repository url"
	requestRenderFailedMessageConstant       = "unable to render mutation request"
	fileCreationFailedMessageConstant        = "file creation failed"
	fileCreatedMessageConstant               = "file created"
	pullRequestCreationFailedMessageConstant = "pull request creation failed"
	pullRequestCreatedMessageConstant        = "pull request created"
	runCompletedMessageConstant              = "publish run completed"
	runIDLogFieldConstant                    = "run_id"
	manifestURLLogFieldConstant              = "manifest_url"
	itemCountLogFieldConstant                = "item_count"
	workersLogFieldConstant                  = "workers"
	itemIndexLogFieldConstant                = "item_index"
	sourceURLLogFieldConstant                = "source_url"
	repositoryURLLogFieldConstant            = "repository_url"
	repositoryLogFieldConstant               = "repository"
	filePathLogFieldConstant                 = "file_path"
	headBranchLogFieldConstant               = "head_branch"
	baseBranchLogFieldConstant               = "base_branch"
	pullRequestURLLogFieldConstant           = "pull_request_url"
	pullRequestNumberLogFieldConstant        = "pull_request_number"
	createdLogFieldConstant                  = "created"
	failedLogFieldConstant                   = "failed"
	durationLogFieldConstant                 = "duration"
	manifestSummaryTemplateConstant          = "Processing %d document(s) from %s\n"
	itemProgressTemplateConstant             = "[%d/%d] %s: %s\n"
	itemPullRequestProgressTemplateConstant  = "[%d/%d] %s: %s %s\n"
	runSummaryTemplateConstant               = "Done: %d pull request(s) created, %d item(s) skipped or failed\n"
)

// ContentFetcher retrieves a textual document.
type ContentFetcher interface {
	Fetch(executionContext context.Context, documentURL string) (string, error)
}

// RepositoryClassifier recognizes repository URLs and derives their owner and name.
type RepositoryClassifier interface {
	IsRepositoryURL(rawURL string) bool
	ParseRepositoryReference(rawURL string) (gitrepo.RepositoryReference, bool)
}

// RepositoryMutator commits a file to a branch and opens a pull request for it.
type RepositoryMutator interface {
	CreateFile(executionContext context.Context, request githubapi.FileCreationRequest) error
	CreatePullRequest(executionContext context.Context, request githubapi.PullRequestCreationRequest) (githubapi.PullRequestReference, error)
}

// MetricsRecorder receives run observations.
type MetricsRecorder interface {
	ObserveItem(outcome string)
	ObserveFetch(kind string, duration time.Duration)
	ObserveMutation(operation string, succeeded bool)
	ObserveRun(duration time.Duration)
}

// IdentifierGenerator produces run identifiers.
type IdentifierGenerator func() string

// Clock supplies the current time.
type Clock func() time.Time

// ServiceDependencies enumerates the collaborators required by Service.
type ServiceDependencies struct {
	Logger              *zap.Logger
	Fetcher             ContentFetcher
	Classifier          RepositoryClassifier
	Mutator             RepositoryMutator
	Reporter            Reporter
	Metrics             MetricsRecorder
	IdentifierGenerator IdentifierGenerator
	Clock               Clock
}

// ServiceOptions configures the mutation requests a Service builds.
type ServiceOptions struct {
	FilePath   string
	BaseBranch string
	Workers    int
	DryRun     bool
	Templates  RequestTemplates
}

// Service processes manifests of metadata documents.
type Service struct {
	logger              *zap.Logger
	fetcher             ContentFetcher
	classifier          RepositoryClassifier
	mutator             RepositoryMutator
	reporter            Reporter
	metrics             MetricsRecorder
	identifierGenerator IdentifierGenerator
	clock               Clock
	options             ServiceOptions
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies, options ServiceOptions) (*Service, error) {
	if dependencies.Fetcher == nil {
		return nil, InvalidInputError{FieldName: fetcherFieldNameConstant, Message: dependencyMissingMessageConstant}
	}
	if dependencies.Classifier == nil {
		return nil, InvalidInputError{FieldName: classifierFieldNameConstant, Message: dependencyMissingMessageConstant}
	}
	if dependencies.Mutator == nil {
		return nil, InvalidInputError{FieldName: mutatorFieldNameConstant, Message: dependencyMissingMessageConstant}
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = NewWriterReporter(io.Discard)
	}
	metricsRecorder := dependencies.Metrics
	if metricsRecorder == nil {
		metricsRecorder = noopMetricsRecorder{}
	}
	identifierGenerator := dependencies.IdentifierGenerator
	if identifierGenerator == nil {
		identifierGenerator = uuid.NewString
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	options.FilePath = valueOrDefault(options.FilePath, DefaultFilePath)
	options.BaseBranch = valueOrDefault(options.BaseBranch, DefaultBaseBranch)
	if options.Workers <= 0 {
		options.Workers = DefaultWorkers
	}
	if options.Templates.headBranch == nil {
		defaultTemplates, templatesError := NewRequestTemplates(DefaultConfiguration())
		if templatesError != nil {
			return nil, templatesError
		}
		options.Templates = defaultTemplates
	}

	return &Service{
		logger:              logger,
		fetcher:             dependencies.Fetcher,
		classifier:          dependencies.Classifier,
		mutator:             dependencies.Mutator,
		reporter:            reporter,
		metrics:             metricsRecorder,
		identifierGenerator: identifierGenerator,
		clock:               clock,
		options:             options,
	}, nil
}

// Process fetches the manifest and publishes every document it lists.
// Only manifest retrieval failures and cancellation are returned as errors.
func (service *Service) Process(executionContext context.Context, manifestURL string) (RunSummary, error) {
	startedAt := service.clock()
	summary := RunSummary{
		RunID:       service.identifierGenerator(),
		ManifestURL: strings.TrimSpace(manifestURL),
		StartedAt:   startedAt,
		DryRun:      service.options.DryRun,
	}
	if len(summary.ManifestURL) == 0 {
		return summary, InvalidInputError{FieldName: manifestURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	runLogger := service.logger.With(
		zap.String(runIDLogFieldConstant, summary.RunID),
		zap.String(manifestURLLogFieldConstant, summary.ManifestURL),
	)
	runLogger.Info(runStartedMessageConstant, zap.Int(workersLogFieldConstant, service.options.Workers))

	fetchStartedAt := service.clock()
	manifestContent, manifestError := service.fetcher.Fetch(executionContext, summary.ManifestURL)
	service.metrics.ObserveFetch(metrics.FetchKindManifest, service.clock().Sub(fetchStartedAt))
	if manifestError != nil {
		runLogger.Error(manifestFetchFailedMessageConstant, zap.Error(manifestError))
		summary.Duration = service.clock().Sub(startedAt)
		service.metrics.ObserveRun(summary.Duration)
		return summary, fmt.Errorf(manifestUnavailableErrorTemplateConstant, ErrManifestUnavailable, summary.ManifestURL, manifestError)
	}

	entries := ParseManifest(manifestContent)
	runLogger.Info(manifestLoadedMessageConstant, zap.Int(itemCountLogFieldConstant, len(entries)))
	service.reporter.Printf(manifestSummaryTemplateConstant, len(entries), summary.ManifestURL)

	results := make([]ItemResult, len(entries))
	dispatchedCount := 0

	var workerGroup errgroup.Group
	workerGroup.SetLimit(service.options.Workers)
	for entryIndex, entry := range entries {
		if executionContext.Err() != nil {
			break
		}
		dispatchedCount++
		workerGroup.Go(func() error {
			results[entryIndex] = service.processItem(executionContext, runLogger, entryIndex, len(entries), entry)
			return nil
		})
	}
	_ = workerGroup.Wait()

	summary.Items = results[:dispatchedCount]
	summary.Duration = service.clock().Sub(startedAt)
	service.metrics.ObserveRun(summary.Duration)

	createdCount := len(summary.Items) - summary.Failed()
	runLogger.Info(
		runCompletedMessageConstant,
		zap.Int(createdLogFieldConstant, createdCount),
		zap.Int(failedLogFieldConstant, summary.Failed()),
		zap.Duration(durationLogFieldConstant, summary.Duration),
	)
	service.reporter.Printf(runSummaryTemplateConstant, createdCount, summary.Failed())

	if dispatchedCount < len(entries) {
		return summary, fmt.Errorf(runInterruptedErrorTemplateConstant, dispatchedCount, len(entries), executionContext.Err())
	}
	return summary, nil
}

func (service *Service) processItem(executionContext context.Context, runLogger *zap.Logger, itemIndex int, itemCount int, sourceURL string) ItemResult {
	itemLogger := runLogger.With(zap.Int(itemIndexLogFieldConstant, itemIndex), zap.String(sourceURLLogFieldConstant, sourceURL))
	result := service.publishDocument(executionContext, itemLogger, sourceURL)
	result.Index = itemIndex
	result.SourceURL = sourceURL

	service.metrics.ObserveItem(string(result.Outcome))
	if result.Succeeded() && len(result.PullRequestURL) > 0 {
		service.reporter.Printf(itemPullRequestProgressTemplateConstant, itemIndex+1, itemCount, sourceURL, result.Outcome, result.PullRequestURL)
	} else {
		service.reporter.Printf(itemProgressTemplateConstant, itemIndex+1, itemCount, sourceURL, result.Outcome)
	}
	return result
}

func (service *Service) publishDocument(executionContext context.Context, itemLogger *zap.Logger, sourceURL string) ItemResult {
	fetchStartedAt := service.clock()
	documentContent, fetchError := service.fetcher.Fetch(executionContext, sourceURL)
	service.metrics.ObserveFetch(metrics.FetchKindDocument, service.clock().Sub(fetchStartedAt))
	if fetchError != nil {
		itemLogger.Warn(documentFetchFailedMessageConstant, zap.Error(fetchError))
		return failedResult(OutcomeFetchFailed, fetchError)
	}

	repositoryURL, parseError := ParseDocumentURL(documentContent)
	if parseError != nil {
		if errors.Is(parseError, ErrURLFieldMissing) {
			itemLogger.Warn(documentMissingURLMessageConstant)
			return failedResult(OutcomeMissingURL, parseError)
		}
		itemLogger.Warn(documentInvalidMessageConstant, zap.Error(parseError))
		return failedResult(OutcomeInvalidJSON, parseError)
	}

	result := ItemResult{RepositoryURL: repositoryURL}
	itemLogger = itemLogger.With(zap.String(repositoryURLLogFieldConstant, repositoryURL))

	if !service.classifier.IsRepositoryURL(repositoryURL) {
		itemLogger.Info(notRepositoryMessageConstant)
		result.Outcome = OutcomeNotRepository
		return result
	}

	repository, parsed := service.classifier.ParseRepositoryReference(repositoryURL)
	if !parsed {
		itemLogger.Warn(unparseableRepositoryMessageConstant)
		result.Outcome = OutcomeUnparseableRepository
		return result
	}
	result.Owner = repository.Owner
	result.Name = repository.Name

	rendered, renderError := service.options.Templates.Render(TemplateData{
		Owner:         repository.Owner,
		Name:          repository.Name,
		SourceURL:     sourceURL,
		RepositoryURL: repositoryURL,
	})
	if renderError != nil {
		itemLogger.Error(requestRenderFailedMessageConstant, zap.Error(renderError))
		result.Outcome = OutcomeRequestRenderFailed
		result.Detail = renderError.Error()
		return result
	}
	result.HeadBranch = rendered.HeadBranch

	itemLogger = itemLogger.With(
		zap.String(repositoryLogFieldConstant, repository.FullName()),
		zap.String(headBranchLogFieldConstant, rendered.HeadBranch),
		zap.String(baseBranchLogFieldConstant, service.options.BaseBranch),
	)

	fileError := service.mutator.CreateFile(executionContext, githubapi.FileCreationRequest{
		Repository:    repository,
		FilePath:      service.options.FilePath,
		Content:       documentContent,
		CommitMessage: rendered.CommitMessage,
		BaseBranch:    service.options.BaseBranch,
		HeadBranch:    rendered.HeadBranch,
	})
	service.metrics.ObserveMutation(metrics.MutationOperationCreateFile, fileError == nil)
	if fileError != nil {
		itemLogger.Error(fileCreationFailedMessageConstant, zap.Error(fileError))
		result.Outcome = OutcomeFileCreationFailed
		result.Detail = fileError.Error()
		return result
	}
	itemLogger.Info(fileCreatedMessageConstant, zap.String(filePathLogFieldConstant, service.options.FilePath))

	pullRequest, pullRequestError := service.mutator.CreatePullRequest(executionContext, githubapi.PullRequestCreationRequest{
		Repository: repository,
		Title:      rendered.PullRequestTitle,
		Body:       rendered.PullRequestBody,
		BaseBranch: service.options.BaseBranch,
		HeadBranch: rendered.HeadBranch,
	})
	service.metrics.ObserveMutation(metrics.MutationOperationCreatePullRequest, pullRequestError == nil)
	if pullRequestError != nil {
		itemLogger.Error(pullRequestCreationFailedMessageConstant, zap.Error(pullRequestError))
		result.Outcome = OutcomePullRequestCreationFailed
		result.Detail = pullRequestError.Error()
		return result
	}
	itemLogger.Info(
		pullRequestCreatedMessageConstant,
		zap.Int(pullRequestNumberLogFieldConstant, pullRequest.Number),
		zap.String(pullRequestURLLogFieldConstant, pullRequest.URL),
	)

	result.Outcome = OutcomePullRequestCreated
	result.PullRequestNumber = pullRequest.Number
	result.PullRequestURL = pullRequest.URL
	return result
}

func failedResult(outcome Outcome, cause error) ItemResult {
	return ItemResult{Outcome: outcome, Detail: cause.Error()}
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) ObserveItem(string) {}

func (noopMetricsRecorder) ObserveFetch(string, time.Duration) {}

func (noopMetricsRecorder) ObserveMutation(string, bool) {}

func (noopMetricsRecorder) ObserveRun(time.Duration) {}
