// Package fetch retrieves manifest and metadata documents over HTTP(S).
//
// HTTPContentFetcher issues GET requests through an injectable HTTPClient and
// reports non-2xx statuses, empty bodies, and oversized bodies as typed errors.
package fetch
