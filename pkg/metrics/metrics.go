package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry           *prometheus.Registry
	registryOnce       sync.Once
	defaultMetricsPath = "/metrics"
	metricsEnabled     = true

	// Transcription metrics
	TranscriptionDuration *prometheus.HistogramVec
	TranscriptionErrors   *prometheus.CounterVec

	// Analysis pipeline metrics
	SegmentsProcessed    prometheus.Counter
	SilenceGapsDetected  prometheus.Counter
	SentimentDegraded    *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram
	RecordsBuilt         *prometheus.CounterVec
	KeywordMatchesTotal  *prometheus.CounterVec

	// Messaging metrics
	AMQPPublishedRecords *prometheus.CounterVec
	AMQPConnectionErrors prometheus.Counter
)

// Init initializes all metrics and registers them with Prometheus
func Init(logger *logrus.Logger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		TranscriptionDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "neuronook_transcription_duration_seconds",
				Help:    "Duration of whole-file transcription runs",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // From 0.5s to ~30min
			},
			[]string{"provider", "status"},
		)

		TranscriptionErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neuronook_transcription_errors_total",
				Help: "Total number of failed transcription runs",
			},
			[]string{"provider"},
		)

		SegmentsProcessed = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "neuronook_segments_processed_total",
				Help: "Total number of transcript segments analyzed",
			},
		)

		SilenceGapsDetected = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "neuronook_silence_gaps_detected_total",
				Help: "Total number of silence gaps detected between segments",
			},
		)

		SentimentDegraded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neuronook_sentiment_degraded_total",
				Help: "Segments whose sentiment score fell back to the neutral default",
			},
			[]string{"engine"},
		)

		AnalysisDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "neuronook_analysis_duration_seconds",
				Help:    "Duration of the per-interview analysis pipeline",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // From 1ms to ~16s
			},
		)

		RecordsBuilt = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neuronook_records_built_total",
				Help: "Analysis records built, by outcome",
			},
			[]string{"status"},
		)

		KeywordMatchesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neuronook_keyword_matches_total",
				Help: "Raw trigger-phrase matches by label",
			},
			[]string{"label"},
		)

		AMQPPublishedRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neuronook_amqp_published_records_total",
				Help: "Analysis records published to AMQP, by outcome",
			},
			[]string{"status"},
		)

		AMQPConnectionErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "neuronook_amqp_connection_errors_total",
				Help: "Total number of AMQP connection errors",
			},
		)

		registry.MustRegister(
			TranscriptionDuration,
			TranscriptionErrors,
			SegmentsProcessed,
			SilenceGapsDetected,
			SentimentDegraded,
			AnalysisDuration,
			RecordsBuilt,
			KeywordMatchesTotal,
			AMQPPublishedRecords,
			AMQPConnectionErrors,
		)

		logger.Info("Prometheus metrics initialized")
	})
}

// GetRegistry returns the metrics registry
func GetRegistry() *prometheus.Registry {
	return registry
}

// SetMetricsPath overrides the HTTP path for the metrics handler
func SetMetricsPath(path string) {
	defaultMetricsPath = path
}

// EnableMetrics toggles metrics recording
func EnableMetrics(enabled bool) {
	metricsEnabled = enabled
}

// IsMetricsEnabled reports whether metrics recording is on
func IsMetricsEnabled() bool {
	return metricsEnabled
}

// RegisterHandler mounts the Prometheus handler on the mux
func RegisterHandler(mux *http.ServeMux) {
	if registry == nil {
		return
	}
	mux.Handle(defaultMetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// ObserveTranscriptionDuration starts a timer for one transcription run.
// The returned function records the elapsed time with the final status.
func ObserveTranscriptionDuration(provider string) func(status string) {
	start := time.Now()
	return func(status string) {
		if !metricsEnabled || TranscriptionDuration == nil {
			return
		}
		TranscriptionDuration.WithLabelValues(provider, status).Observe(time.Since(start).Seconds())
		if status == "error" || status == "timeout" {
			TranscriptionErrors.WithLabelValues(provider).Inc()
		}
	}
}

// AddSegmentsProcessed records analyzed segments
func AddSegmentsProcessed(n int) {
	if !metricsEnabled || SegmentsProcessed == nil {
		return
	}
	SegmentsProcessed.Add(float64(n))
}

// AddSilenceGapsDetected records detected silence gaps
func AddSilenceGapsDetected(n int) {
	if !metricsEnabled || SilenceGapsDetected == nil {
		return
	}
	SilenceGapsDetected.Add(float64(n))
}

// RecordSentimentDegraded records a degraded sentiment scoring
func RecordSentimentDegraded(engine string) {
	if !metricsEnabled || SentimentDegraded == nil {
		return
	}
	SentimentDegraded.WithLabelValues(engine).Inc()
}

// ObserveAnalysisDuration records one pipeline run
func ObserveAnalysisDuration(d time.Duration) {
	if !metricsEnabled || AnalysisDuration == nil {
		return
	}
	AnalysisDuration.Observe(d.Seconds())
}

// RecordRecordBuilt records a pipeline outcome
func RecordRecordBuilt(status string) {
	if !metricsEnabled || RecordsBuilt == nil {
		return
	}
	RecordsBuilt.WithLabelValues(status).Inc()
}

// AddKeywordMatches records raw trigger hits for a label
func AddKeywordMatches(label string, n int) {
	if !metricsEnabled || KeywordMatchesTotal == nil || n <= 0 {
		return
	}
	KeywordMatchesTotal.WithLabelValues(label).Add(float64(n))
}

// RecordAMQPPublish records an AMQP publish outcome
func RecordAMQPPublish(status string) {
	if !metricsEnabled || AMQPPublishedRecords == nil {
		return
	}
	AMQPPublishedRecords.WithLabelValues(status).Inc()
}

// RecordAMQPConnectionError records an AMQP connection failure
func RecordAMQPConnectionError() {
	if !metricsEnabled || AMQPConnectionErrors == nil {
		return
	}
	AMQPConnectionErrors.Inc()
}
