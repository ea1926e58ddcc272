package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IssuanceDuration tracks the latency of voucher issuance
	IssuanceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "voucher_issuance_duration_seconds",
			Help: "Duration of voucher issuance requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"result"}, // success, out_of_stock, campaign_not_found or error
	)

	// VouchersIssued counts successfully issued vouchers per issuance mode
	VouchersIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vouchers_issued_total",
			Help: "Number of vouchers issued, labeled by issuance mode",
		},
		[]string{"mode"},
	)
)

// RecordIssuanceDuration records the duration of one issuance request
func RecordIssuanceDuration(result string, duration float64) {
	IssuanceDuration.WithLabelValues(result).Observe(duration)
}

// RecordVoucherIssued increments the issued counter for the given mode
func RecordVoucherIssued(mode string) {
	VouchersIssued.WithLabelValues(mode).Inc()
}
