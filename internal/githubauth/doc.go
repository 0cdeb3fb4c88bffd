// Package githubauth resolves the GitHub token used for repository mutations.
//
// Tokens come from an explicit source declaration (env:NAME or file:/path) or,
// when none is configured, from the GH_TOKEN, GITHUB_TOKEN, and
// GITHUB_API_TOKEN environment variables in that order.
package githubauth
