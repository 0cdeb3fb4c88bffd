// Package codemeta publishes repository metadata documents as pull requests.
//
// A run fetches a manifest of document URLs, reads the "url" field of every
// JSON document it lists, and for each document that points at a hosted
// repository commits the document as codemeta.json on a dedicated branch and
// opens a pull request for it. Item failures are isolated and recorded in the
// RunSummary; only an unavailable manifest aborts the run.
package codemeta
