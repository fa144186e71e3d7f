package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the moderation bot
type Metrics struct {
	// Pipeline metrics
	MessagesProcessed *prometheus.CounterVec
	SpamScore         prometheus.Histogram
	MessagesDeleted   prometheus.Counter
	DeletionErrors    *prometheus.CounterVec
	PrivilegeMissing  prometheus.Counter
	NoticeErrors      prometheus.Counter

	// Tracking state metrics
	TrackedChats        prometheus.Gauge
	PersistenceErrors   prometheus.Counter
	PersistenceDuration prometheus.Histogram

	// Command metrics
	CommandsTotal *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return DefaultMetrics
}

// NewMetrics creates all collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MessagesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_messages_processed_total",
				Help: "Inbound messages handled by the moderation pipeline, by outcome",
			},
			[]string{"outcome"},
		),
		SpamScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "moderation_spam_score",
			Help:    "Spam heuristic score of messages from tracked senders",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
		}),
		MessagesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_messages_deleted_total",
			Help: "Spam messages removed",
		}),
		DeletionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_deletion_errors_total",
				Help: "Failed spam deletions by error type",
			},
			[]string{"error_type"},
		),
		PrivilegeMissing: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_privilege_missing_total",
			Help: "Spam left in place because the bot lacked the delete right",
		}),
		NoticeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_notice_errors_total",
			Help: "Failures posting or removing deletion notices",
		}),

		TrackedChats: factory.NewGauge(prometheus.GaugeOpts{
			Name: "moderation_tracked_chats",
			Help: "Chats with a tracking record",
		}),
		PersistenceErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "moderation_persistence_errors_total",
			Help: "Failed tracking state flushes",
		}),
		PersistenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "moderation_persistence_duration_seconds",
			Help:    "Duration of tracking state flushes in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_commands_total",
				Help: "Chat commands and button presses by command and result",
			},
			[]string{"command", "result"},
		),
	}
}

// RecordOutcome records a pipeline outcome and, when scored, its spam score
func (m *Metrics) RecordOutcome(outcome string, score int, scored bool) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.MessagesProcessed.WithLabelValues(outcome).Inc()
	if scored {
		m.SpamScore.Observe(float64(score))
	}
}

// RecordDeletion records a successful spam removal
func (m *Metrics) RecordDeletion() {
	m.MessagesDeleted.Inc()
}

// RecordDeletionError records a failed spam removal with error type
func (m *Metrics) RecordDeletionError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	m.DeletionErrors.WithLabelValues(errorType).Inc()
}

// RecordPrivilegeMissing records spam left in place for lack of rights
func (m *Metrics) RecordPrivilegeMissing() {
	m.PrivilegeMissing.Inc()
}

// RecordNoticeError records a failed notice post or removal
func (m *Metrics) RecordNoticeError() {
	m.NoticeErrors.Inc()
}

// RecordPersistence records a flush with its duration
func (m *Metrics) RecordPersistence(duration float64, err error) {
	m.PersistenceDuration.Observe(duration)
	if err != nil {
		m.PersistenceErrors.Inc()
	}
}

// UpdateTrackedChats updates the tracked chats gauge
func (m *Metrics) UpdateTrackedChats(count int) {
	m.TrackedChats.Set(float64(count))
}

// RecordCommand records a command invocation with its result
func (m *Metrics) RecordCommand(command, result string) {
	if result == "" {
		result = "unknown"
	}
	m.CommandsTotal.WithLabelValues(command, result).Inc()
}
