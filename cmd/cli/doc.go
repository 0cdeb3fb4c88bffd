// Package cli constructs the metapr command-line interface, wiring the Cobra
// command hierarchy, the layered configuration loader, and structured logging.
// The publish subcommand is registered from the codemeta package.
package cli
