package metrics

import (
	"fmt"
	"net/http"
	"strconv"
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

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

// Collectors are created eagerly so recording before Init is a no-op for the
// exporter instead of a nil dereference. They are only exposed once registered.
var (
	once sync.Once

	ethClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eth_client_latency_seconds",
			Help:    "Histogram of ethereum json-rpc client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of incoming http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "route", "status"},
	)

	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	ethHeadGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "eth_head_block_number",
			Help: "Last value of the ethereum head block number retrieved",
		},
	)

	storedHeadGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stored_head_block_number",
			Help: "Highest block number found in the entity store by the realtime poller",
		},
	)

	blocksStoredCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blocks_stored_total",
			Help: "Number of block records written, split by ingestion mode",
		},
		[]string{"mode"},
	)

	walkStepsHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parent_walk_steps",
			Help:    "Number of blocks collected by a single parent-hash walk",
			Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 1000, 10000},
		},
	)

	aggregatesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregates_total",
			Help: "Aggregation attempts split by stats type and result (persisted, existing, incomplete)",
		},
		[]string{"type", "result"},
	)
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
	metricsRouter := chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	prometheus.MustRegister(
		ethClientLatency,
		httpRequestDurationHistogram,
		queueSendErrorCounter,
		pollerDurationHistogram,
		dbLatency,
		ethHeadGauge,
		storedHeadGauge,
		blocksStoredCounter,
		walkStepsHistogram,
		aggregatesCounter,
	)
}

func RecordEthClientLatency(d time.Duration, method string, failure bool) {
	ethClientLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordHttpRequestDuration(d time.Duration, method, route string, statusCode int) {
	httpRequestDurationHistogram.WithLabelValues(method, route, strconv.Itoa(statusCode)).Observe(d.Seconds())
}

func RecordEthHead(number uint64) {
	ethHeadGauge.Set(float64(number))
}

func RecordStoredHead(number uint64) {
	storedHeadGauge.Set(float64(number))
}

func RecordBlocksStored(mode string, count int) {
	blocksStoredCounter.WithLabelValues(mode).Add(float64(count))
}

func RecordWalkSteps(steps int) {
	walkStepsHistogram.Observe(float64(steps))
}

func RecordAggregate(statsType, result string) {
	aggregatesCounter.WithLabelValues(statsType, result).Inc()
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}
