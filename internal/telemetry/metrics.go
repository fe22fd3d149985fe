package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for one bulkmail run.
// Metrics are registered on a private registry so a batch job can write them
// out as a textfile without touching global state. All methods are nil-safe.
type Metrics struct {
	registry *prometheus.Registry

	// Reading
	RowsTotal          prometheus.Counter
	RowsRejected       *prometheus.CounterVec
	RecipientsAccepted prometheus.Counter

	// Sending
	EmailsSent   prometheus.Counter
	EmailsFailed prometheus.Counter
	SendDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics under namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bulkmail"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reader",
			Name:      "rows_total",
			Help:      "Total data rows seen in recipient spreadsheets",
		}),
		RowsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "rows_rejected_total",
				Help:      "Total data rows rejected by validation",
			},
			[]string{"reason"}, // reason: missing_data, invalid_stt, invalid_email, duplicate_email
		),
		RecipientsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reader",
			Name:      "recipients_accepted_total",
			Help:      "Total rows accepted as recipients",
		}),

		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sender",
			Name:      "emails_sent_total",
			Help:      "Total emails accepted by the SMTP server",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sender",
			Name:      "emails_failed_total",
			Help:      "Total emails that failed at any SMTP stage",
		}),
		SendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sender",
			Name:      "email_send_duration_seconds",
			Help:      "Time spent on one SMTP exchange, connect to quit",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// Registry exposes the registry for tests and exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RowSeen records one data row read from a spreadsheet.
func (m *Metrics) RowSeen() {
	if m == nil {
		return
	}
	m.RowsTotal.Inc()
}

// RowRejected records a row dropped for reason.
func (m *Metrics) RowRejected(reason string) {
	if m == nil {
		return
	}
	m.RowsRejected.WithLabelValues(reason).Inc()
}

// RecipientAccepted records a row that became a recipient.
func (m *Metrics) RecipientAccepted() {
	if m == nil {
		return
	}
	m.RecipientsAccepted.Inc()
}

// SendObserved records the outcome and duration of one send attempt.
func (m *Metrics) SendObserved(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.SendDuration.Observe(d.Seconds())
	if err != nil {
		m.EmailsFailed.Inc()
		return
	}
	m.EmailsSent.Inc()
}

// WriteTextfile writes all metrics in the text exposition format to path,
// for pickup by the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
