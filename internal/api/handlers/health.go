package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const storeCheckTimeout = 2 * time.Second

// HealthCheck represents the readiness status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single check
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Pinger is the part of the document store the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports store reachability and how scheduled jobs run.
type HealthChecker struct {
	store     Pinger
	jobRunner string
	version   string
	gitCommit string
	now       func() time.Time
}

// NewHealthChecker builds the readiness probe. jobRunner names the job
// scheduler in use ("river", "ticker" or "disabled").
func NewHealthChecker(store Pinger, jobRunner, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		store:     store,
		jobRunner: jobRunner,
		version:   version,
		gitCommit: gitCommit,
		now:       time.Now,
	}
}

// Readyz returns 200 when every check passes and 503 otherwise.
func (h *HealthChecker) Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
			return
		default:
		}

		checks := map[string]CheckResult{
			"store": h.checkStore(r.Context()),
			"jobs":  h.checkJobs(),
		}

		overall := "healthy"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overall = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			}
			if check.Status == "warn" {
				overall = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(HealthCheck{
			Status:    overall,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	})
}

func (h *HealthChecker) checkStore(ctx context.Context) CheckResult {
	if h.store == nil {
		return CheckResult{Status: "fail", Message: "Document store not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, storeCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.store.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Document store unreachable"
		if errors.Is(err, context.DeadlineExceeded) {
			message = "Document store ping timed out after 2 seconds"
		}
		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details:   map[string]any{"error": err.Error()},
		}
	}
	return CheckResult{Status: "pass", Message: "Document store reachable", LatencyMs: latency}
}

func (h *HealthChecker) checkJobs() CheckResult {
	switch h.jobRunner {
	case "river":
		return CheckResult{Status: "pass", Message: "Upcoming events check scheduled with River"}
	case "ticker":
		return CheckResult{Status: "pass", Message: "Upcoming events check scheduled in process"}
	default:
		return CheckResult{Status: "warn", Message: "Scheduled jobs disabled"}
	}
}

// Healthz is the liveness probe.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
