// Package gitrepo recognizes source-hosting repository URLs.
//
// RepositoryURLClassifier decides whether a URL points at a repository on the
// configured hosting domain and extracts the owner and name pair that the
// GitHub API operations address.
package gitrepo
