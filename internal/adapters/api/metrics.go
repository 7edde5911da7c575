package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tolsubmissions/pkg/domain"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "submissions",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests processed, by route, method and status.",
	}, []string{"route", "method", "status"})

	generationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "submissions",
		Name:      "identifier_generation_total",
		Help:      "Identifier generation runs by outcome.",
	}, []string{"outcome"})

	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "submissions",
		Name:      "validation_findings_total",
		Help:      "Validation findings reported to clients, by severity.",
	}, []string{"severity"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "submissions",
		Name:      "identifier_generation_duration_seconds",
		Help:      "Wall time of identifier generation runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

func countFindings(report domain.Report) {
	for _, row := range report.Rows {
		for _, f := range row.Findings {
			findingsTotal.WithLabelValues(string(f.Severity)).Inc()
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
	})
}
