package gitrepo

import (
	"net/url"
	"strings"
)

const (
	// DefaultHostingDomain is the hosting domain recognized when none is configured.
	DefaultHostingDomain                  = "github.com"
	pathSeparatorConstant                 = "/"
	minimumRepositoryPathSegmentsConstant = 2
	repositoryFullNameSeparatorConstant   = "/"
)

// RepositoryReference identifies a repository by owner and name.
type RepositoryReference struct {
	Owner string
	Name  string
}

// FullName renders the reference in owner/name form.
func (reference RepositoryReference) FullName() string {
	return reference.Owner + repositoryFullNameSeparatorConstant + reference.Name
}

// RepositoryURLClassifier recognizes repository URLs on a single hosting domain.
type RepositoryURLClassifier struct {
	hostingDomain string
}

// NewRepositoryURLClassifier constructs a classifier for the provided hosting domain, defaulting to github.com.
func NewRepositoryURLClassifier(hostingDomain string) RepositoryURLClassifier {
	trimmedHostingDomain := strings.TrimSpace(hostingDomain)
	if len(trimmedHostingDomain) == 0 {
		trimmedHostingDomain = DefaultHostingDomain
	}
	return RepositoryURLClassifier{hostingDomain: trimmedHostingDomain}
}

// HostingDomain reports the domain recognized by the classifier.
func (classifier RepositoryURLClassifier) HostingDomain() string {
	if len(classifier.hostingDomain) == 0 {
		return DefaultHostingDomain
	}
	return classifier.hostingDomain
}

// IsRepositoryURL reports whether rawURL has the hosting domain as its host and at least two non-empty path segments.
// Malformed URLs are not repository URLs.
func (classifier RepositoryURLClassifier) IsRepositoryURL(rawURL string) bool {
	parsedURL, parsed := classifier.parseHostedURL(rawURL)
	if !parsed {
		return false
	}

	nonEmptySegmentCount := 0
	for _, pathSegment := range strings.Split(parsedURL.Path, pathSeparatorConstant) {
		if len(pathSegment) > 0 {
			nonEmptySegmentCount++
		}
	}

	return nonEmptySegmentCount >= minimumRepositoryPathSegmentsConstant
}

// ParseRepositoryReference extracts the owner and name from the first two path segments of rawURL.
// The second return value is false when either segment is missing or empty.
func (classifier RepositoryURLClassifier) ParseRepositoryReference(rawURL string) (RepositoryReference, bool) {
	parsedURL, parseError := url.Parse(strings.TrimSpace(rawURL))
	if parseError != nil {
		return RepositoryReference{}, false
	}

	trimmedPath := strings.Trim(parsedURL.Path, pathSeparatorConstant)
	pathSegments := strings.Split(trimmedPath, pathSeparatorConstant)
	if len(pathSegments) < minimumRepositoryPathSegmentsConstant {
		return RepositoryReference{}, false
	}

	reference := RepositoryReference{Owner: pathSegments[0], Name: pathSegments[1]}
	if len(reference.Owner) == 0 || len(reference.Name) == 0 {
		return RepositoryReference{}, false
	}

	return reference, true
}

func (classifier RepositoryURLClassifier) parseHostedURL(rawURL string) (*url.URL, bool) {
	trimmedURL := strings.TrimSpace(rawURL)
	if len(trimmedURL) == 0 {
		return nil, false
	}

	parsedURL, parseError := url.Parse(trimmedURL)
	if parseError != nil {
		return nil, false
	}

	if !strings.EqualFold(parsedURL.Host, classifier.HostingDomain()) {
		return nil, false
	}

	return parsedURL, true
}
