package githubapi

import (
	"context"

	"go.uber.org/zap"
)

const (
	contentPreviewRuneLimitConstant          = 100
	dryRunFileCreationMessageConstant        = "dry run: would create file"
	dryRunPullRequestCreationMessageConstant = "dry run: would create pull request"
	repositoryLogFieldConstant               = "repository"
	filePathLogFieldConstant                 = "file_path"
	contentPreviewLogFieldConstant           = "content_preview"
	commitMessageLogFieldConstant            = "commit_message"
	baseBranchLogFieldConstant               = "base_branch"
	headBranchLogFieldConstant               = "head_branch"
	titleLogFieldConstant                    = "title"
	bodyLogFieldConstant                     = "body"
)

// DryRunMutator logs the requested mutations and reports success without calling GitHub.
type DryRunMutator struct {
	logger *zap.Logger
}

// NewDryRunMutator constructs a DryRunMutator; a nil logger discards output.
func NewDryRunMutator(logger *zap.Logger) *DryRunMutator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRunMutator{logger: logger}
}

// CreateFile logs the file that would be committed.
func (mutator *DryRunMutator) CreateFile(_ context.Context, request FileCreationRequest) error {
	if validationError := validateFileCreationRequest(request); validationError != nil {
		return validationError
	}
	mutator.logger.Info(
		dryRunFileCreationMessageConstant,
		zap.String(repositoryLogFieldConstant, request.Repository.FullName()),
		zap.String(filePathLogFieldConstant, request.FilePath),
		zap.String(contentPreviewLogFieldConstant, previewContent(request.Content)),
		zap.String(commitMessageLogFieldConstant, request.CommitMessage),
		zap.String(baseBranchLogFieldConstant, request.BaseBranch),
		zap.String(headBranchLogFieldConstant, request.HeadBranch),
	)
	return nil
}

// CreatePullRequest logs the pull request that would be opened.
func (mutator *DryRunMutator) CreatePullRequest(_ context.Context, request PullRequestCreationRequest) (PullRequestReference, error) {
	if validationError := validatePullRequestCreationRequest(request); validationError != nil {
		return PullRequestReference{}, validationError
	}
	mutator.logger.Info(
		dryRunPullRequestCreationMessageConstant,
		zap.String(repositoryLogFieldConstant, request.Repository.FullName()),
		zap.String(titleLogFieldConstant, request.Title),
		zap.String(bodyLogFieldConstant, request.Body),
		zap.String(baseBranchLogFieldConstant, request.BaseBranch),
		zap.String(headBranchLogFieldConstant, request.HeadBranch),
	)
	return PullRequestReference{}, nil
}

func previewContent(content string) string {
	runes := []rune(content)
	if len(runes) <= contentPreviewRuneLimitConstant {
		return content
	}
	return string(runes[:contentPreviewRuneLimitConstant])
}
