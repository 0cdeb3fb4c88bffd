package codemeta

import (
	"strings"
	"time"

	"github.com/temirov/metapr/internal/githubapi"
	"github.com/temirov/metapr/internal/gitrepo"
)

const (
	// DefaultFilePath is the repository path the document is committed to.
	DefaultFilePath = "codemeta.json"
	// DefaultBaseBranch is the branch pull requests target.
	DefaultBaseBranch = "main"
	// DefaultHeadBranchTemplate names the branch carrying the new file.
	DefaultHeadBranchTemplate = "add-codemeta-json-{{.Owner}}-{{.Name}}"
	// DefaultCommitMessageTemplate renders the commit message.
	DefaultCommitMessageTemplate = "Add codemeta.json from automated script"
	// DefaultPullRequestTitleTemplate renders the pull request title.
	DefaultPullRequestTitleTemplate = "Add codemeta.json to {{.Name}}"
	// DefaultPullRequestBodyTemplate renders the pull request body.
	DefaultPullRequestBodyTemplate = "This pull request adds a `codemeta.json` file to your repository, generated from: {{.SourceURL}}"
	// DefaultTokenSource is empty, which consults GH_TOKEN, GITHUB_TOKEN, then GITHUB_API_TOKEN.
	DefaultTokenSource = ""
	// DefaultWorkers processes manifest items sequentially.
	DefaultWorkers = 1
	// DefaultHTTPTimeout bounds each document retrieval and GitHub request.
	DefaultHTTPTimeout = 30 * time.Second
)

const (
	manifestURLKeyConstant              = "manifest_url"
	hostingDomainKeyConstant            = "hosting_domain"
	filePathKeyConstant                 = "file_path"
	baseBranchKeyConstant               = "base_branch"
	headBranchTemplateKeyConstant       = "head_branch_template"
	commitMessageTemplateKeyConstant    = "commit_message_template"
	pullRequestTitleTemplateKeyConstant = "pull_request_title_template"
	pullRequestBodyTemplateKeyConstant  = "pull_request_body_template"
	workersKeyConstant                  = "workers"
	dryRunKeyConstant                   = "dry_run"
	tokenSourceKeyConstant              = "token_source"
	gitHubAPIURLKeyConstant             = "github_api_url"
	httpTimeoutKeyConstant              = "http_timeout"
	requestsPerSecondKeyConstant        = "requests_per_second"
	reportKeyConstant                   = "report"
	metricsFileKeyConstant              = "metrics_file"
	configurationKeySeparatorConstant   = "."
)

// Configuration captures the publish command settings.
type Configuration struct {
	ManifestURL              string        `mapstructure:"manifest_url"`
	HostingDomain            string        `mapstructure:"hosting_domain"`
	FilePath                 string        `mapstructure:"file_path"`
	BaseBranch               string        `mapstructure:"base_branch"`
	HeadBranchTemplate       string        `mapstructure:"head_branch_template"`
	CommitMessageTemplate    string        `mapstructure:"commit_message_template"`
	PullRequestTitleTemplate string        `mapstructure:"pull_request_title_template"`
	PullRequestBodyTemplate  string        `mapstructure:"pull_request_body_template"`
	Workers                  int           `mapstructure:"workers"`
	DryRun                   bool          `mapstructure:"dry_run"`
	TokenSource              string        `mapstructure:"token_source"`
	GitHubAPIURL             string        `mapstructure:"github_api_url"`
	HTTPTimeout              time.Duration `mapstructure:"http_timeout"`
	RequestsPerSecond        float64       `mapstructure:"requests_per_second"`
	Report                   bool          `mapstructure:"report"`
	MetricsFile              string        `mapstructure:"metrics_file"`
}

// DefaultConfiguration provides baseline publish settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		ManifestURL:              "",
		HostingDomain:            gitrepo.DefaultHostingDomain,
		FilePath:                 DefaultFilePath,
		BaseBranch:               DefaultBaseBranch,
		HeadBranchTemplate:       DefaultHeadBranchTemplate,
		CommitMessageTemplate:    DefaultCommitMessageTemplate,
		PullRequestTitleTemplate: DefaultPullRequestTitleTemplate,
		PullRequestBodyTemplate:  DefaultPullRequestBodyTemplate,
		Workers:                  DefaultWorkers,
		DryRun:                   false,
		TokenSource:              DefaultTokenSource,
		GitHubAPIURL:             "",
		HTTPTimeout:              DefaultHTTPTimeout,
		RequestsPerSecond:        githubapi.DefaultRequestsPerSecond,
		Report:                   true,
		MetricsFile:              "",
	}
}

// DefaultConfigurationValues produces Viper defaults rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationKey(rootKey, manifestURLKeyConstant):              defaults.ManifestURL,
		configurationKey(rootKey, hostingDomainKeyConstant):            defaults.HostingDomain,
		configurationKey(rootKey, filePathKeyConstant):                 defaults.FilePath,
		configurationKey(rootKey, baseBranchKeyConstant):               defaults.BaseBranch,
		configurationKey(rootKey, headBranchTemplateKeyConstant):       defaults.HeadBranchTemplate,
		configurationKey(rootKey, commitMessageTemplateKeyConstant):    defaults.CommitMessageTemplate,
		configurationKey(rootKey, pullRequestTitleTemplateKeyConstant): defaults.PullRequestTitleTemplate,
		configurationKey(rootKey, pullRequestBodyTemplateKeyConstant):  defaults.PullRequestBodyTemplate,
		configurationKey(rootKey, workersKeyConstant):                  defaults.Workers,
		configurationKey(rootKey, dryRunKeyConstant):                   defaults.DryRun,
		configurationKey(rootKey, tokenSourceKeyConstant):              defaults.TokenSource,
		configurationKey(rootKey, gitHubAPIURLKeyConstant):             defaults.GitHubAPIURL,
		configurationKey(rootKey, httpTimeoutKeyConstant):              defaults.HTTPTimeout,
		configurationKey(rootKey, requestsPerSecondKeyConstant):        defaults.RequestsPerSecond,
		configurationKey(rootKey, reportKeyConstant):                   defaults.Report,
		configurationKey(rootKey, metricsFileKeyConstant):              defaults.MetricsFile,
	}
}

// sanitize trims values and restores defaults for blank or out-of-range settings.
func (configuration Configuration) sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.ManifestURL = strings.TrimSpace(configuration.ManifestURL)
	sanitized.HostingDomain = valueOrDefault(configuration.HostingDomain, defaults.HostingDomain)
	sanitized.FilePath = valueOrDefault(configuration.FilePath, defaults.FilePath)
	sanitized.BaseBranch = valueOrDefault(configuration.BaseBranch, defaults.BaseBranch)
	sanitized.HeadBranchTemplate = valueOrDefault(configuration.HeadBranchTemplate, defaults.HeadBranchTemplate)
	sanitized.CommitMessageTemplate = valueOrDefault(configuration.CommitMessageTemplate, defaults.CommitMessageTemplate)
	sanitized.PullRequestTitleTemplate = valueOrDefault(configuration.PullRequestTitleTemplate, defaults.PullRequestTitleTemplate)
	sanitized.PullRequestBodyTemplate = valueOrDefault(configuration.PullRequestBodyTemplate, defaults.PullRequestBodyTemplate)
	sanitized.TokenSource = strings.TrimSpace(configuration.TokenSource)
	sanitized.GitHubAPIURL = strings.TrimSpace(configuration.GitHubAPIURL)
	sanitized.MetricsFile = strings.TrimSpace(configuration.MetricsFile)

	if sanitized.Workers <= 0 {
		sanitized.Workers = defaults.Workers
	}
	if sanitized.HTTPTimeout <= 0 {
		sanitized.HTTPTimeout = defaults.HTTPTimeout
	}
	if sanitized.RequestsPerSecond <= 0 {
		sanitized.RequestsPerSecond = defaults.RequestsPerSecond
	}

	return sanitized
}

func configurationKey(rootKey string, key string) string {
	if len(rootKey) == 0 {
		return key
	}
	return rootKey + configurationKeySeparatorConstant + key
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
