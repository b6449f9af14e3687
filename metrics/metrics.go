package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "behave_runner"
)

var (
	Debug                bool = false
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	featuresTriggeredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "features_triggered_total",
		Help:      "Count of feature subprocesses dispatched",
	}, []string{
		"run_id",
	})

	workersReleasedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "workers_released_total",
		Help:      "Count of workers reaped after their subprocess exited",
	}, []string{
		"run_id",
		"result",
	})

	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "active_workers",
		Help:      "Number of feature subprocesses currently running",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the run",
	}, []string{
		"run_id",
	})

	runFeaturesTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_features_total",
		Help:      "Total number of features executed in the run",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordFeatureTriggered increments the dispatch counter and the active
// worker gauge.
func RecordFeatureTriggered(runID string) {
	featuresTriggeredTotal.WithLabelValues(runID).Inc()
	activeWorkers.Inc()
}

// RecordWorkerReleased decrements the active worker gauge and counts the
// reap by result.
func RecordWorkerReleased(runID string, result string) {
	workersReleasedTotal.WithLabelValues(runID, result).Inc()
	activeWorkers.Dec()
}

// RecordRun records run-level aggregates once the run terminates.
func RecordRun(runID string, features int, duration time.Duration) {
	runFeaturesTotal.WithLabelValues(runID).Set(float64(features))
	runDuration.WithLabelValues(runID).Set(duration.Seconds())
}
