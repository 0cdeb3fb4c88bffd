package codemeta

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	reportIndentationConstant           = 2
	reportEncodingErrorTemplateConstant = "unable to encode run report: %w"
)

type runReport struct {
	RunID       string          `yaml:"run_id"`
	ManifestURL string          `yaml:"manifest_url"`
	StartedAt   string          `yaml:"started_at"`
	Duration    string          `yaml:"duration"`
	DryRun      bool            `yaml:"dry_run"`
	Total       int             `yaml:"total"`
	Counts      map[Outcome]int `yaml:"counts"`
	Items       []ItemResult    `yaml:"items"`
}

// WriteReport renders summary as a YAML document.
func WriteReport(writer io.Writer, summary RunSummary) error {
	report := runReport{
		RunID:       summary.RunID,
		ManifestURL: summary.ManifestURL,
		StartedAt:   summary.StartedAt.UTC().Format(time.RFC3339),
		Duration:    summary.Duration.Round(time.Millisecond).String(),
		DryRun:      summary.DryRun,
		Total:       len(summary.Items),
		Counts:      summary.Counts(),
		Items:       summary.Items,
	}
	if report.Items == nil {
		report.Items = []ItemResult{}
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(reportIndentationConstant)
	if encodeError := encoder.Encode(report); encodeError != nil {
		return fmt.Errorf(reportEncodingErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(reportEncodingErrorTemplateConstant, closeError)
	}
	return nil
}
