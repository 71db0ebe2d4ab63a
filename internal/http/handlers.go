package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"finweb/internal/session"
)

type dashboardView struct {
	Email         string
	ExportEnabled bool
}

// handleDashboard renders the landing page. It never calls the finance API so
// it stays a safe redirect target when other pages fail.
func (s *Server) handleDashboard(r *http.Request, sess *session.Session) *Response {
	return Render("home", dashboardView{Email: sess.Email, ExportEnabled: s.exporter != nil})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once templates are parsed and the session store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templatesErr != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "templates not loaded",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.sessions.Store().Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "session store unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleMetrics exposes process counters as plain text, one per line.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traffic := s.tracer.GetMetrics()
	limits := s.limiter.GetMetrics()
	detection := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "requests_total %d\n", traffic.TotalRequests)
	fmt.Fprintf(w, "requests_client_errors_total %d\n", traffic.ClientErrors)
	fmt.Fprintf(w, "requests_server_errors_total %d\n", traffic.ServerErrors)
	fmt.Fprintf(w, "request_duration_avg_ms %.2f\n", float64(traffic.AverageResponseTime)/1000)
	fmt.Fprintf(w, "mutations_total %d\n", s.mutations.Load())
	fmt.Fprintf(w, "remote_failures_total %d\n", s.remoteFailures.Load())
	fmt.Fprintf(w, "rate_limit_hits_total %d\n", limits.TotalHits)
	fmt.Fprintf(w, "rate_limit_clients %d\n", limits.ClientCount)
	fmt.Fprintf(w, "suspicious_requests_total %d\n", detection.SuspiciousRequests)
	fmt.Fprintf(w, "uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
}
