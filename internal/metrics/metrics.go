package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ToolCalls счетчик вызовов инструментов
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Calculation tool invocations by tool and status",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors счетчик ошибок расчетов
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Calculation errors by tool and error type",
		},
		[]string{"tool_name", "error_type"},
	)

	// APICalls счетчик вызовов API, входящих и к upstream
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_calls_total",
			Help: "API calls by service, endpoint and status",
		},
		[]string{"service", "endpoint", "status"},
	)

	// ValidationFailures счетчик отклонённых записей по ресурсу и полю
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_validation_failures_total",
			Help: "Field validation failures on record submission",
		},
		[]string{"resource", "field"},
	)

	// AccessCache счетчик обращений к кэшу прав
	AccessCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_cache_lookups_total",
			Help: "Permitted-module cache lookups by result",
		},
		[]string{"result"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Handler отдаёт /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware считает запросы и задержку по шаблону маршрута chi
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		route := routePattern(r)
		requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
