package codemeta

import (
	"errors"
	"fmt"
	"time"
)

// Outcome classifies how a manifest item finished.
type Outcome string

// Item outcomes in pipeline order.
const (
	OutcomeFetchFailed               Outcome = Outcome("fetch_failed")
	OutcomeInvalidJSON               Outcome = Outcome("invalid_json")
	OutcomeMissingURL                Outcome = Outcome("missing_url")
	OutcomeNotRepository             Outcome = Outcome("not_repository")
	OutcomeUnparseableRepository     Outcome = Outcome("unparseable_repository")
	OutcomeRequestRenderFailed       Outcome = Outcome("request_render_failed")
	OutcomeFileCreationFailed        Outcome = Outcome("file_creation_failed")
	OutcomePullRequestCreationFailed Outcome = Outcome("pull_request_creation_failed")
	OutcomePullRequestCreated        Outcome = Outcome("pull_request_created")
)

const (
	manifestUnavailableMessageConstant = "manifest unavailable"
	invalidInputErrorTemplateConstant  = "%s: %s"
	requiredValueMessageConstant       = "value required"
)

// ErrManifestUnavailable marks a run aborted because the manifest could not be retrieved.
var ErrManifestUnavailable = errors.New(manifestUnavailableMessageConstant)

// InvalidInputError surfaces validation issues for run inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// ItemResult records the outcome of one manifest line.
type ItemResult struct {
	Index             int     `yaml:"index"`
	SourceURL         string  `yaml:"source_url"`
	RepositoryURL     string  `yaml:"repository_url,omitempty"`
	Owner             string  `yaml:"owner,omitempty"`
	Name              string  `yaml:"name,omitempty"`
	HeadBranch        string  `yaml:"head_branch,omitempty"`
	Outcome           Outcome `yaml:"outcome"`
	Detail            string  `yaml:"detail,omitempty"`
	PullRequestNumber int     `yaml:"pull_request_number,omitempty"`
	PullRequestURL    string  `yaml:"pull_request_url,omitempty"`
}

// Succeeded reports whether the item produced a pull request.
func (result ItemResult) Succeeded() bool {
	return result.Outcome == OutcomePullRequestCreated
}

// RunSummary aggregates the results of one run in manifest order.
type RunSummary struct {
	RunID       string
	ManifestURL string
	StartedAt   time.Time
	Duration    time.Duration
	DryRun      bool
	Items       []ItemResult
}

// Counts tallies items by outcome.
func (summary RunSummary) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, item := range summary.Items {
		counts[item.Outcome]++
	}
	return counts
}

// Failed returns the number of items that did not produce a pull request.
func (summary RunSummary) Failed() int {
	failed := 0
	for _, item := range summary.Items {
		if !item.Succeeded() {
			failed++
		}
	}
	return failed
}
