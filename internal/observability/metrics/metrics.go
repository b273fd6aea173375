package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the submission pipeline.
type IntakeMetrics struct {
	submissionsTotal    *prometheus.CounterVec
	spamRejections      *prometheus.CounterVec
	captchaVerifyErrors prometheus.Counter
	processingLatency   prometheus.Histogram
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Name:      "submissions_total",
			Help:      "Total processed submissions by outcome",
		}, []string{"outcome"}),
		spamRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intake",
			Name:      "spam_rejections_total",
			Help:      "Submissions rejected by each spam defense",
		}, []string{"check"}),
		captchaVerifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intake",
			Name:      "captcha_verify_errors_total",
			Help:      "CAPTCHA verification calls that failed open",
		}),
		processingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "intake",
			Name:      "processing_seconds",
			Help:      "End to end submission processing latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.spamRejections, m.captchaVerifyErrors, m.processingLatency)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObserveSpamRejection(check string) {
	if m == nil {
		return
	}
	m.spamRejections.WithLabelValues(check).Inc()
}

func (m *IntakeMetrics) ObserveCaptchaVerifyError() {
	if m == nil {
		return
	}
	m.captchaVerifyErrors.Inc()
}

func (m *IntakeMetrics) ObserveProcessingLatency(seconds float64) {
	if m == nil {
		return
	}
	m.processingLatency.Observe(seconds)
}
