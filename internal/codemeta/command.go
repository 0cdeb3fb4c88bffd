package codemeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/metapr/internal/fetch"
	"github.com/temirov/metapr/internal/githubapi"
	"github.com/temirov/metapr/internal/githubauth"
	"github.com/temirov/metapr/internal/gitrepo"
	"github.com/temirov/metapr/internal/metrics"
	"github.com/temirov/metapr/internal/utils"
	"github.com/temirov/metapr/internal/utils/flags"
)

const (
	publishCommandUseConstant                  = "publish [manifest-url]"
	publishCommandShortDescriptionConstant     = "Open pull requests adding codemeta.json to listed repositories"
	publishCommandLongDescriptionConstant      = "publish fetches a manifest of JSON metadata document URLs and, for every document whose url field names a GitHub repository, commits the document as codemeta.json on a new branch and opens a pull request."
	maximumPositionalArgumentsConstant         = 1
	manifestFlagNameConstant                   = "manifest"
	manifestFlagDescriptionConstant            = "URL of the manifest listing metadata document URLs"
	baseBranchFlagNameConstant                 = "base-branch"
	baseBranchFlagDescriptionConstant          = "Branch the pull requests target"
	workersFlagNameConstant                    = "workers"
	workersFlagDescriptionConstant             = "Number of documents processed concurrently"
	dryRunFlagNameConstant                     = "dry-run"
	dryRunFlagDescriptionConstant              = "Log the intended changes without calling GitHub"
	tokenSourceFlagNameConstant                = "token-source"
	tokenSourceFlagDescriptionConstant         = "Token source (env:NAME or file:/path)"
	reportFlagNameConstant                     = "report"
	reportFlagDescriptionConstant              = "Print a YAML run report when the run ends"
	requestsPerSecondFlagNameConstant          = "requests-per-second"
	requestsPerSecondFlagDescriptionConstant   = "GitHub API requests per second; zero or less selects the default"
	metricsFileFlagNameConstant                = "metrics-file"
	metricsFileFlagDescriptionConstant         = "Write Prometheus textfile metrics to this path"
	manifestRequiredMessageConstant            = "manifest url must be provided via argument, --manifest, or configuration"
	commandExecutionErrorTemplateConstant      = "publish failed: %w"
	tokenSourceParseErrorTemplateConstant      = "invalid token source: %w"
	tokenResolutionErrorTemplateConstant       = "unable to resolve github token: %w"
	templateConfigurationErrorTemplateConstant = "invalid publish templates: %w"
	reportWriteErrorTemplateConstant           = "unable to write run report: %w"
	metricsWriteErrorTemplateConstant          = "unable to export metrics: %w"
	metricsExportedMessageConstant             = "metrics exported"
	metricsFileLogFieldConstant                = "metrics_file"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current publish configuration.
type ConfigurationProvider func() Configuration

// TokenResolver resolves GitHub tokens from a token source.
type TokenResolver interface {
	ResolveToken(source githubauth.TokenSource) (string, error)
}

// MutatorFactory builds the GitHub mutator for a token and configuration.
type MutatorFactory func(executionContext context.Context, token string, configuration Configuration) (RepositoryMutator, error)

// CommandBuilder assembles the publish command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Fetcher               ContentFetcher
	TokenResolver         TokenResolver
	MutatorFactory        MutatorFactory
	OutputWriter          io.Writer
}

// Build constructs the publish command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	publishCommand := &cobra.Command{
		Use:   publishCommandUseConstant,
		Short: publishCommandShortDescriptionConstant,
		Long:  publishCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(maximumPositionalArgumentsConstant),
		RunE:  builder.runPublish,
	}

	publishCommand.Flags().String(manifestFlagNameConstant, "", manifestFlagDescriptionConstant)
	publishCommand.Flags().String(baseBranchFlagNameConstant, "", baseBranchFlagDescriptionConstant)
	publishCommand.Flags().Int(workersFlagNameConstant, 0, workersFlagDescriptionConstant)
	flags.AddToggleFlag(publishCommand.Flags(), nil, dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	publishCommand.Flags().String(tokenSourceFlagNameConstant, "", tokenSourceFlagDescriptionConstant)
	flags.AddToggleFlag(publishCommand.Flags(), nil, reportFlagNameConstant, true, reportFlagDescriptionConstant)
	publishCommand.Flags().Float64(requestsPerSecondFlagNameConstant, 0, requestsPerSecondFlagDescriptionConstant)
	publishCommand.Flags().String(metricsFileFlagNameConstant, "", metricsFileFlagDescriptionConstant)

	return publishCommand, nil
}

func (builder *CommandBuilder) runPublish(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.resolveCommandConfiguration(command, arguments)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	templates, templatesError := NewRequestTemplates(configuration)
	if templatesError != nil {
		return fmt.Errorf(templateConfigurationErrorTemplateConstant, templatesError)
	}

	mutator, mutatorError := builder.resolveMutator(executionContext, logger, configuration)
	if mutatorError != nil {
		return mutatorError
	}

	outputWriter := builder.OutputWriter
	if outputWriter == nil {
		outputWriter = command.OutOrStdout()
	}
	outputWriter = utils.NewFlushingWriter(outputWriter)

	recorder := metrics.NewRecorder()
	dependencies := ServiceDependencies{
		Logger:     logger,
		Fetcher:    builder.resolveFetcher(configuration),
		Classifier: gitrepo.NewRepositoryURLClassifier(configuration.HostingDomain),
		Mutator:    mutator,
		Reporter:   NewWriterReporter(outputWriter),
		Metrics:    recorder,
	}
	if runIdentifier, present := utils.NewCommandContextAccessor().RunIdentifier(executionContext); present {
		dependencies.IdentifierGenerator = func() string {
			return runIdentifier
		}
	}

	service, serviceError := NewService(dependencies, ServiceOptions{
		FilePath:   configuration.FilePath,
		BaseBranch: configuration.BaseBranch,
		Workers:    configuration.Workers,
		DryRun:     configuration.DryRun,
		Templates:  templates,
	})
	if serviceError != nil {
		return serviceError
	}

	summary, processError := service.Process(executionContext, configuration.ManifestURL)

	var outputErrors []error
	if configuration.Report {
		if reportError := WriteReport(outputWriter, summary); reportError != nil {
			outputErrors = append(outputErrors, fmt.Errorf(reportWriteErrorTemplateConstant, reportError))
		}
	}
	if len(configuration.MetricsFile) > 0 {
		if metricsError := recorder.WriteTextfile(configuration.MetricsFile); metricsError != nil {
			outputErrors = append(outputErrors, fmt.Errorf(metricsWriteErrorTemplateConstant, metricsError))
		} else {
			logger.Debug(metricsExportedMessageConstant, zap.String(metricsFileLogFieldConstant, configuration.MetricsFile))
		}
	}

	manifestUnavailable := errors.Is(processError, ErrManifestUnavailable) && executionContext.Err() == nil
	if processError != nil && !manifestUnavailable {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, errors.Join(append([]error{processError}, outputErrors...)...))
	}
	return errors.Join(outputErrors...)
}

func (builder *CommandBuilder) resolveCommandConfiguration(command *cobra.Command, arguments []string) (Configuration, error) {
	configuration := builder.resolveConfiguration()

	manifestFlagValue, manifestFlagError := command.Flags().GetString(manifestFlagNameConstant)
	if manifestFlagError != nil {
		return Configuration{}, manifestFlagError
	}
	positionalManifest := ""
	if len(arguments) > 0 {
		positionalManifest = arguments[0]
	}
	configuration.ManifestURL = selectStringValue(positionalManifest, selectStringValue(manifestFlagValue, configuration.ManifestURL))
	if len(configuration.ManifestURL) == 0 {
		return Configuration{}, InvalidInputError{FieldName: manifestURLFieldNameConstant, Message: manifestRequiredMessageConstant}
	}

	baseBranchFlagValue, baseBranchFlagError := command.Flags().GetString(baseBranchFlagNameConstant)
	if baseBranchFlagError != nil {
		return Configuration{}, baseBranchFlagError
	}
	configuration.BaseBranch = selectStringValue(baseBranchFlagValue, configuration.BaseBranch)

	tokenSourceFlagValue, tokenSourceFlagError := command.Flags().GetString(tokenSourceFlagNameConstant)
	if tokenSourceFlagError != nil {
		return Configuration{}, tokenSourceFlagError
	}
	configuration.TokenSource = selectStringValue(tokenSourceFlagValue, configuration.TokenSource)

	metricsFileFlagValue, metricsFileFlagError := command.Flags().GetString(metricsFileFlagNameConstant)
	if metricsFileFlagError != nil {
		return Configuration{}, metricsFileFlagError
	}
	configuration.MetricsFile = selectStringValue(metricsFileFlagValue, configuration.MetricsFile)

	if command.Flags().Changed(workersFlagNameConstant) {
		workersFlagValue, workersFlagError := command.Flags().GetInt(workersFlagNameConstant)
		if workersFlagError != nil {
			return Configuration{}, workersFlagError
		}
		configuration.Workers = workersFlagValue
	}

	if command.Flags().Changed(requestsPerSecondFlagNameConstant) {
		requestsPerSecondFlagValue, requestsPerSecondFlagError := command.Flags().GetFloat64(requestsPerSecondFlagNameConstant)
		if requestsPerSecondFlagError != nil {
			return Configuration{}, requestsPerSecondFlagError
		}
		configuration.RequestsPerSecond = requestsPerSecondFlagValue
	}

	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunFlagValue, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunFlagError != nil {
			return Configuration{}, dryRunFlagError
		}
		configuration.DryRun = dryRunFlagValue
	}

	if command.Flags().Changed(reportFlagNameConstant) {
		reportFlagValue, reportFlagError := command.Flags().GetBool(reportFlagNameConstant)
		if reportFlagError != nil {
			return Configuration{}, reportFlagError
		}
		configuration.Report = reportFlagValue
	}

	return configuration.sanitize(), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveFetcher(configuration Configuration) ContentFetcher {
	if builder.Fetcher != nil {
		return builder.Fetcher
	}
	return fetch.NewHTTPContentFetcher(fetch.NewHTTPClient(configuration.HTTPTimeout), fetch.Options{})
}

func (builder *CommandBuilder) resolveMutator(executionContext context.Context, logger *zap.Logger, configuration Configuration) (RepositoryMutator, error) {
	if configuration.DryRun {
		return githubapi.NewDryRunMutator(logger), nil
	}

	tokenSource, tokenSourceError := githubauth.ParseTokenSource(configuration.TokenSource)
	if tokenSourceError != nil {
		return nil, fmt.Errorf(tokenSourceParseErrorTemplateConstant, tokenSourceError)
	}

	tokenResolver := builder.TokenResolver
	if tokenResolver == nil {
		tokenResolver = githubauth.NewTokenResolver(nil, nil, nil)
	}
	token, tokenError := tokenResolver.ResolveToken(tokenSource)
	if tokenError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, tokenError)
	}

	if builder.MutatorFactory != nil {
		return builder.MutatorFactory(executionContext, token, configuration)
	}
	return githubapi.NewClient(executionContext, token, githubapi.Options{
		BaseURL:           configuration.GitHubAPIURL,
		Timeout:           configuration.HTTPTimeout,
		RequestsPerSecond: configuration.RequestsPerSecond,
	})
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
