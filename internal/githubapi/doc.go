// Package githubapi performs the repository mutations metapr needs against the
// GitHub REST API.
//
// Client ensures a head branch, commits a single file to it, and opens a pull
// request through go-github. DryRunMutator satisfies the same contract without
// touching GitHub and only logs what would have happened.
package githubapi
