package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch kinds distinguish manifest retrieval from per-item document retrieval.
const (
	FetchKindManifest = "manifest"
	FetchKindDocument = "document"
)

// Mutation operation labels.
const (
	MutationOperationCreateFile        = "create_file"
	MutationOperationCreatePullRequest = "create_pull_request"
)

const (
	namespaceConstant                   = "metapr"
	itemsTotalNameConstant              = "items_total"
	itemsTotalHelpConstant              = "Manifest items processed, by outcome."
	fetchDurationNameConstant           = "fetch_duration_seconds"
	fetchDurationHelpConstant           = "Duration of HTTP document retrievals, by kind."
	mutationsTotalNameConstant          = "mutations_total"
	mutationsTotalHelpConstant          = "Repository mutations attempted, by operation and result."
	runDurationNameConstant             = "run_duration_seconds"
	runDurationHelpConstant             = "Wall-clock duration of the last run."
	outcomeLabelConstant                = "outcome"
	kindLabelConstant                   = "kind"
	operationLabelConstant              = "operation"
	resultLabelConstant                 = "result"
	successResultConstant               = "success"
	failureResultConstant               = "failure"
	textfilePathRequiredMessageConstant = "metrics textfile path must be provided"
	textfileWriteErrorTemplateConstant  = "unable to write metrics textfile %s: %w"
)

// ErrTextfilePathRequired indicates an empty export path.
var ErrTextfilePathRequired = errors.New(textfilePathRequiredMessageConstant)

// Recorder owns a private registry so concurrent runs and tests never share collectors.
type Recorder struct {
	registry       *prometheus.Registry
	itemsTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	mutationsTotal *prometheus.CounterVec
	runDuration    prometheus.Gauge
}

// NewRecorder constructs a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),
		itemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceConstant,
			Name:      itemsTotalNameConstant,
			Help:      itemsTotalHelpConstant,
		}, []string{outcomeLabelConstant}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespaceConstant,
			Name:      fetchDurationNameConstant,
			Help:      fetchDurationHelpConstant,
			Buckets:   prometheus.DefBuckets,
		}, []string{kindLabelConstant}),
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceConstant,
			Name:      mutationsTotalNameConstant,
			Help:      mutationsTotalHelpConstant,
		}, []string{operationLabelConstant, resultLabelConstant}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceConstant,
			Name:      runDurationNameConstant,
			Help:      runDurationHelpConstant,
		}),
	}

	recorder.registry.MustRegister(
		recorder.itemsTotal,
		recorder.fetchDuration,
		recorder.mutationsTotal,
		recorder.runDuration,
	)
	return recorder
}

// Registry exposes the underlying gatherer.
func (recorder *Recorder) Registry() *prometheus.Registry {
	return recorder.registry
}

// ObserveItem counts one processed manifest item.
func (recorder *Recorder) ObserveItem(outcome string) {
	recorder.itemsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records how long one retrieval took.
func (recorder *Recorder) ObserveFetch(kind string, duration time.Duration) {
	recorder.fetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveMutation counts one mutation attempt.
func (recorder *Recorder) ObserveMutation(operation string, succeeded bool) {
	result := failureResultConstant
	if succeeded {
		result = successResultConstant
	}
	recorder.mutationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveRun records the run duration.
func (recorder *Recorder) ObserveRun(duration time.Duration) {
	recorder.runDuration.Set(duration.Seconds())
}

// WriteTextfile atomically writes the registry contents to path.
func (recorder *Recorder) WriteTextfile(path string) error {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return ErrTextfilePathRequired
	}
	if writeError := prometheus.WriteToTextfile(trimmedPath, recorder.registry); writeError != nil {
		return fmt.Errorf(textfileWriteErrorTemplateConstant, trimmedPath, writeError)
	}
	return nil
}
