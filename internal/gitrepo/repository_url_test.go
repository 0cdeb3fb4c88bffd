package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/metapr/internal/gitrepo"
)

func TestRepositoryURLClassifierIsRepositoryURL(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name          string
		hostingDomain string
		candidateURL  string
		expected      bool
	}{
		{name: "owner_and_repository", candidateURL: "https://github.com/owner/repo", expected: true},
		{name: "deep_path", candidateURL: "https://github.com/owner/repo/tree/main", expected: true},
		{name: "trailing_slash", candidateURL: "https://github.com/owner/repo/", expected: true},
		{name: "uppercase_host", candidateURL: "https://GitHub.com/owner/repo", expected: true},
		{name: "other_host", candidateURL: "https://example.com/owner/repo", expected: false},
		{name: "single_segment", candidateURL: "https://github.com/owner", expected: false},
		{name: "single_segment_trailing_slash", candidateURL: "https://github.com/owner/", expected: false},
		{name: "host_only", candidateURL: "https://github.com", expected: false},
		{name: "subdomain", candidateURL: "https://gist.github.com/owner/repo", expected: false},
		{name: "malformed", candidateURL: "https://github.com/%zz/repo", expected: false},
		{name: "control_character", candidateURL: "https://github.com/owner/\x7f", expected: false},
		{name: "empty", candidateURL: "   ", expected: false},
		{name: "custom_domain", hostingDomain: "git.example.org", candidateURL: "https://git.example.org/team/service", expected: true},
		{name: "custom_domain_rejects_github", hostingDomain: "git.example.org", candidateURL: "https://github.com/team/service", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			subTest.Parallel()

			classifier := gitrepo.NewRepositoryURLClassifier(testCase.hostingDomain)
			require.Equal(subTest, testCase.expected, classifier.IsRepositoryURL(testCase.candidateURL))
		})
	}
}

func TestRepositoryURLClassifierParseRepositoryReference(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name              string
		candidateURL      string
		expectedReference gitrepo.RepositoryReference
		expectedParsed    bool
	}{
		{
			name:              "spoon_knife",
			candidateURL:      "https://github.com/octocat/Spoon-Knife",
			expectedReference: gitrepo.RepositoryReference{Owner: "octocat", Name: "Spoon-Knife"},
			expectedParsed:    true,
		},
		{
			name:              "surrounding_slashes",
			candidateURL:      "https://github.com/a/b/",
			expectedReference: gitrepo.RepositoryReference{Owner: "a", Name: "b"},
			expectedParsed:    true,
		},
		{
			name:              "extra_segments_ignored",
			candidateURL:      "https://github.com/a/b/issues/1",
			expectedReference: gitrepo.RepositoryReference{Owner: "a", Name: "b"},
			expectedParsed:    true,
		},
		{name: "single_segment", candidateURL: "https://github.com/a"},
		{name: "empty_middle_segment", candidateURL: "https://github.com/a//b"},
		{name: "no_path", candidateURL: "https://github.com"},
		{name: "malformed", candidateURL: "https://github.com/%zz/b"},
	}

	classifier := gitrepo.NewRepositoryURLClassifier("")

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			subTest.Parallel()

			reference, parsed := classifier.ParseRepositoryReference(testCase.candidateURL)
			require.Equal(subTest, testCase.expectedParsed, parsed)
			require.Equal(subTest, testCase.expectedReference, reference)
		})
	}
}

func TestRepositoryReferenceFullName(testInstance *testing.T) {
	reference := gitrepo.RepositoryReference{Owner: "octocat", Name: "Spoon-Knife"}
	require.Equal(testInstance, "octocat/Spoon-Knife", reference.FullName())
	require.Equal(testInstance, gitrepo.DefaultHostingDomain, gitrepo.NewRepositoryURLClassifier("  ").HostingDomain())
}
