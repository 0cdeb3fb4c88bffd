package githubapi

import (
	"strings"

	"github.com/temirov/metapr/internal/gitrepo"
)

// FileCreationRequest describes a single file committed to a head branch forked from a base branch.
type FileCreationRequest struct {
	Repository    gitrepo.RepositoryReference
	FilePath      string
	Content       string
	CommitMessage string
	BaseBranch    string
	HeadBranch    string
}

// PullRequestCreationRequest describes a pull request from HeadBranch into BaseBranch.
type PullRequestCreationRequest struct {
	Repository gitrepo.RepositoryReference
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
}

// PullRequestReference identifies a created pull request.
type PullRequestReference struct {
	Number int
	URL    string
}

type requiredValue struct {
	fieldName string
	value     string
}

func validateFileCreationRequest(request FileCreationRequest) error {
	return validateRequiredValues(
		requiredValue{fieldName: ownerFieldNameConstant, value: request.Repository.Owner},
		requiredValue{fieldName: nameFieldNameConstant, value: request.Repository.Name},
		requiredValue{fieldName: filePathFieldNameConstant, value: request.FilePath},
		requiredValue{fieldName: commitMessageFieldNameConstant, value: request.CommitMessage},
		requiredValue{fieldName: baseBranchFieldNameConstant, value: request.BaseBranch},
		requiredValue{fieldName: headBranchFieldNameConstant, value: request.HeadBranch},
	)
}

func validatePullRequestCreationRequest(request PullRequestCreationRequest) error {
	return validateRequiredValues(
		requiredValue{fieldName: ownerFieldNameConstant, value: request.Repository.Owner},
		requiredValue{fieldName: nameFieldNameConstant, value: request.Repository.Name},
		requiredValue{fieldName: titleFieldNameConstant, value: request.Title},
		requiredValue{fieldName: baseBranchFieldNameConstant, value: request.BaseBranch},
		requiredValue{fieldName: headBranchFieldNameConstant, value: request.HeadBranch},
	)
}

func validateRequiredValues(requiredValues ...requiredValue) error {
	for _, candidate := range requiredValues {
		if len(strings.TrimSpace(candidate.value)) == 0 {
			return InvalidInputError{FieldName: candidate.fieldName, Message: requiredValueMessageConstant}
		}
	}
	return nil
}
