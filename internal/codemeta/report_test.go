package codemeta_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/metapr/internal/codemeta"
)

func TestWriteReport(testInstance *testing.T) {
	summary := codemeta.RunSummary{
		RunID:       testRunIdentifierConstant,
		ManifestURL: testManifestURLConstant,
		StartedAt:   time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
		Items: []codemeta.ItemResult{
			{Index: 0, SourceURL: "https://example.com/a.json", Outcome: codemeta.OutcomeFetchFailed, Detail: "unexpected status 404"},
			{Index: 1, SourceURL: "https://example.com/b.json", RepositoryURL: "https://github.com/a/b", Owner: "a", Name: "b", Outcome: codemeta.OutcomePullRequestCreated, PullRequestNumber: 3},
		},
	}

	var buffer bytes.Buffer
	require.NoError(testInstance, codemeta.WriteReport(&buffer, summary))

	var decoded struct {
		RunID       string         `yaml:"run_id"`
		ManifestURL string         `yaml:"manifest_url"`
		StartedAt   string         `yaml:"started_at"`
		Duration    string         `yaml:"duration"`
		Total       int            `yaml:"total"`
		Counts      map[string]int `yaml:"counts"`
		Items       []struct {
			SourceURL string `yaml:"source_url"`
			Outcome   string `yaml:"outcome"`
			Owner     string `yaml:"owner"`
		} `yaml:"items"`
	}
	require.NoError(testInstance, yaml.Unmarshal(buffer.Bytes(), &decoded))

	require.Equal(testInstance, testRunIdentifierConstant, decoded.RunID)
	require.Equal(testInstance, testManifestURLConstant, decoded.ManifestURL)
	require.Equal(testInstance, "2024-03-01T12:00:00Z", decoded.StartedAt)
	require.Equal(testInstance, "1.5s", decoded.Duration)
	require.Equal(testInstance, 2, decoded.Total)
	require.Equal(testInstance, map[string]int{"fetch_failed": 1, "pull_request_created": 1}, decoded.Counts)
	require.Len(testInstance, decoded.Items, 2)
	require.Equal(testInstance, "pull_request_created", decoded.Items[1].Outcome)
	require.Equal(testInstance, "a", decoded.Items[1].Owner)
	require.NotContains(testInstance, buffer.String(), "pull_request_url")
}
