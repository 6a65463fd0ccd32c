package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                      sync.Once
	metricsRouter             *chi.Mux
	depositsCounter           prometheus.Counter
	redeemsCounter            prometheus.Counter
	redeemPayoutFailures      prometheus.Counter
	bridgeOutboundCounter     *prometheus.CounterVec
	bridgeInboundCounter      *prometheus.CounterVec
	bridgeInboundReplays      prometheus.Counter
	bridgePublishErrors       prometheus.Counter
	globalRateGauge           prometheus.Gauge
	ledgerOpDurationHistogram *prometheus.HistogramVec
	dbLatency                 *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5}

	depositsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_deposits_count",
			Help: "The total number of vault deposits",
		},
	)

	redeemsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_redeems_count",
			Help: "The total number of vault redeems",
		},
	)

	redeemPayoutFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_redeem_payout_failure_count",
			Help: "The total number of redeems aborted by a rejected native payout",
		},
	)

	bridgeOutboundCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_outbound_count",
			Help: "The total number of source-leg lock/burn operations, by destination chain and status",
		},
		[]string{"dest_chain", "status"},
	)

	bridgeInboundCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_inbound_count",
			Help: "The total number of destination-leg release/mint operations, by source chain and status",
		},
		[]string{"source_chain", "status"},
	)

	bridgeInboundReplays = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_inbound_replay_count",
			Help: "The total number of redelivered bridge messages skipped by replay protection",
		},
	)

	bridgePublishErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_publish_error_count",
			Help: "The total number of errors when publishing bridge messages to the broker",
		},
	)

	globalRateGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_global_interest_rate",
			Help: "Current global interest rate, fixed point over 1e18",
		},
	)

	ledgerOpDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_op_duration_seconds",
			Help:    "Histogram of ledger operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"op", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		depositsCounter,
		redeemsCounter,
		redeemPayoutFailures,
		bridgeOutboundCounter,
		bridgeInboundCounter,
		bridgeInboundReplays,
		bridgePublishErrors,
		globalRateGauge,
		ledgerOpDurationHistogram,
		dbLatency,
	)
}

func IncDeposits() {
	depositsCounter.Inc()
}

func IncRedeems() {
	redeemsCounter.Inc()
}

func IncRedeemPayoutFailures() {
	redeemPayoutFailures.Inc()
}

func RecordBridgeOutbound(destChain uint64, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	bridgeOutboundCounter.WithLabelValues(fmt.Sprintf("%d", destChain), status.String()).Inc()
}

func RecordBridgeInbound(sourceChain uint64, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	bridgeInboundCounter.WithLabelValues(fmt.Sprintf("%d", sourceChain), status.String()).Inc()
}

func IncBridgeInboundReplays() {
	bridgeInboundReplays.Inc()
}

func IncBridgePublishErrors() {
	bridgePublishErrors.Inc()
}

func RecordGlobalRate(rate float64) {
	globalRateGauge.Set(rate)
}

func RecordLedgerOpDuration(d time.Duration, op string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	ledgerOpDurationHistogram.WithLabelValues(op, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}
