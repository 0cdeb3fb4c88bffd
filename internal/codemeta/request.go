package codemeta

import (
	"fmt"
	"strings"
	"text/template"
)

const (
	headBranchTemplateNameConstant       = "head_branch"
	commitMessageTemplateNameConstant    = "commit_message"
	pullRequestTitleTemplateNameConstant = "pull_request_title"
	pullRequestBodyTemplateNameConstant  = "pull_request_body"
	missingKeyOptionConstant             = "missingkey=error"
	templateParseErrorTemplateConstant   = "invalid %s template: %w"
	templateRenderErrorTemplateConstant  = "unable to render %s template: %w"
	sampleOwnerConstant                  = "owner"
	sampleNameConstant                   = "name"
	sampleSourceURLConstant              = "https://example.com/codemeta.json"
	sampleRepositoryURLConstant          = "https://github.com/owner/name"
)

// TemplateData is the data exposed to request templates.
type TemplateData struct {
	Owner         string
	Name          string
	SourceURL     string
	RepositoryURL string
}

// RenderedRequest holds the rendered texts of one mutation.
type RenderedRequest struct {
	HeadBranch       string
	CommitMessage    string
	PullRequestTitle string
	PullRequestBody  string
}

// RequestTemplates renders branch names, commit messages, and pull request texts.
type RequestTemplates struct {
	headBranch       *template.Template
	commitMessage    *template.Template
	pullRequestTitle *template.Template
	pullRequestBody  *template.Template
}

// NewRequestTemplates parses the configured templates and verifies they render against sample data.
func NewRequestTemplates(configuration Configuration) (RequestTemplates, error) {
	sanitized := configuration.sanitize()

	headBranchTemplate, headBranchError := parseTemplate(headBranchTemplateNameConstant, sanitized.HeadBranchTemplate)
	if headBranchError != nil {
		return RequestTemplates{}, headBranchError
	}
	commitMessageTemplate, commitMessageError := parseTemplate(commitMessageTemplateNameConstant, sanitized.CommitMessageTemplate)
	if commitMessageError != nil {
		return RequestTemplates{}, commitMessageError
	}
	titleTemplate, titleError := parseTemplate(pullRequestTitleTemplateNameConstant, sanitized.PullRequestTitleTemplate)
	if titleError != nil {
		return RequestTemplates{}, titleError
	}
	bodyTemplate, bodyError := parseTemplate(pullRequestBodyTemplateNameConstant, sanitized.PullRequestBodyTemplate)
	if bodyError != nil {
		return RequestTemplates{}, bodyError
	}

	templates := RequestTemplates{
		headBranch:       headBranchTemplate,
		commitMessage:    commitMessageTemplate,
		pullRequestTitle: titleTemplate,
		pullRequestBody:  bodyTemplate,
	}

	sampleData := TemplateData{
		Owner:         sampleOwnerConstant,
		Name:          sampleNameConstant,
		SourceURL:     sampleSourceURLConstant,
		RepositoryURL: sampleRepositoryURLConstant,
	}
	if _, renderError := templates.Render(sampleData); renderError != nil {
		return RequestTemplates{}, renderError
	}

	return templates, nil
}

// Render executes every template against data.
func (templates RequestTemplates) Render(data TemplateData) (RenderedRequest, error) {
	headBranch, headBranchError := renderTemplate(templates.headBranch, data)
	if headBranchError != nil {
		return RenderedRequest{}, headBranchError
	}
	commitMessage, commitMessageError := renderTemplate(templates.commitMessage, data)
	if commitMessageError != nil {
		return RenderedRequest{}, commitMessageError
	}
	title, titleError := renderTemplate(templates.pullRequestTitle, data)
	if titleError != nil {
		return RenderedRequest{}, titleError
	}
	body, bodyError := renderTemplate(templates.pullRequestBody, data)
	if bodyError != nil {
		return RenderedRequest{}, bodyError
	}

	return RenderedRequest{
		HeadBranch:       strings.TrimSpace(headBranch),
		CommitMessage:    commitMessage,
		PullRequestTitle: title,
		PullRequestBody:  body,
	}, nil
}

func parseTemplate(templateName string, templateText string) (*template.Template, error) {
	parsedTemplate, parseError := template.New(templateName).Option(missingKeyOptionConstant).Parse(templateText)
	if parseError != nil {
		return nil, fmt.Errorf(templateParseErrorTemplateConstant, templateName, parseError)
	}
	return parsedTemplate, nil
}

func renderTemplate(parsedTemplate *template.Template, data TemplateData) (string, error) {
	if parsedTemplate == nil {
		return "", nil
	}
	var builder strings.Builder
	if executeError := parsedTemplate.Execute(&builder, data); executeError != nil {
		return "", fmt.Errorf(templateRenderErrorTemplateConstant, parsedTemplate.Name(), executeError)
	}
	return builder.String(), nil
}
