package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Allocation outcomes used as metric labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	allocationTotal     *prometheus.CounterVec
	allocationDuration  prometheus.Histogram
	planStudents        prometheus.Gauge
	planRooms           prometheus.Gauge
	adjacencyViolations prometheus.Gauge
	spacerSeats         prometheus.Gauge
	exportTotal         *prometheus.CounterVec
	exportDuration      *prometheus.HistogramVec
	storeDuration       *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	allocationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seating_allocations_total",
		Help: "Allocation runs by outcome",
	}, []string{"outcome"})

	allocationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seating_allocation_duration_seconds",
		Help:    "Duration of allocation runs including roster normalization",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	planStudents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "seating_plan_students",
		Help: "Students seated by the current plan",
	})

	planRooms := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "seating_plan_rooms",
		Help: "Rooms declared by the current plan layout",
	})

	adjacencyViolations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "seating_plan_adjacency_violations",
		Help: "Same-group neighbours left by the current plan",
	})

	spacerSeats := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "seating_plan_spacer_seats",
		Help: "Seats left empty to separate same-group students",
	})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seating_exports_total",
		Help: "Export jobs by type, format and final status",
	}, []string{"type", "format", "status"})

	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seating_export_duration_seconds",
		Help:    "Time spent rendering and storing exports",
		Buckets: prometheus.DefBuckets,
	}, []string{"type", "format"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seating_plan_store_duration_seconds",
		Help:    "Duration of plan store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, allocationTotal, allocationDuration, planStudents, planRooms,
		adjacencyViolations, spacerSeats, exportTotal, exportDuration, storeDuration, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		allocationTotal:     allocationTotal,
		allocationDuration:  allocationDuration,
		planStudents:        planStudents,
		planRooms:           planRooms,
		adjacencyViolations: adjacencyViolations,
		spacerSeats:         spacerSeats,
		exportTotal:         exportTotal,
		exportDuration:      exportDuration,
		storeDuration:       storeDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// TrackQueueDepth exposes the buffered job count of a worker queue.
func (m *MetricsService) TrackQueueDepth(queue string, depth func() int) {
	if m == nil || depth == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "job_queue_depth",
		Help:        "Jobs waiting in the worker queue buffer",
		ConstLabels: prometheus.Labels{"queue": queue},
	}, func() float64 {
		return float64(depth())
	}))
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveAllocation records one allocation run. Stats are only applied to the
// plan gauges on success.
func (m *MetricsService) ObserveAllocation(outcome string, stats models.AllocationStats, duration time.Duration) {
	if m == nil {
		return
	}
	m.allocationTotal.WithLabelValues(outcome).Inc()
	m.allocationDuration.Observe(duration.Seconds())
	if outcome != OutcomeSuccess {
		return
	}
	m.planStudents.Set(float64(stats.Students))
	m.planRooms.Set(float64(stats.Rooms))
	m.adjacencyViolations.Set(float64(stats.AdjacencyViolations))
	m.spacerSeats.Set(float64(stats.SpacerSeats))
}

// ResetPlan zeroes the plan gauges after the plan is cleared.
func (m *MetricsService) ResetPlan() {
	if m == nil {
		return
	}
	m.planStudents.Set(0)
	m.planRooms.Set(0)
	m.adjacencyViolations.Set(0)
	m.spacerSeats.Set(0)
}

// ObserveExport records a finished or failed export job.
func (m *MetricsService) ObserveExport(exportType models.ExportType, format models.ExportFormat, status models.ExportStatus, duration time.Duration) {
	if m == nil {
		return
	}
	m.exportTotal.WithLabelValues(string(exportType), string(format), string(status)).Inc()
	if duration > 0 {
		m.exportDuration.WithLabelValues(string(exportType), string(format)).Observe(duration.Seconds())
	}
}

// ObservePlanStore records plan store timing.
func (m *MetricsService) ObservePlanStore(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
