package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// healthResponse is the status field shared by /healthz and /readyz.
type healthResponse struct {
	Status string `json:"status"`
}

// healthcheckError carries the process exit code for a failed probe.
type healthcheckError struct {
	code int
	msg  string
}

func (e *healthcheckError) Error() string { return e.msg }

func (e *healthcheckError) ExitCode() int { return e.code }

func newHealthcheckCommand() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /healthz endpoint (or --url,
for example /readyz).

Used by container HEALTHCHECK probes. Exits 0 when the server reports
"ok" or "healthy", non-zero otherwise.

Exit codes:
  0 - Server is healthy
  1 - Server is unhealthy or unreachable
  2 - Invalid response from server`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = defaultHealthURL()
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := probeHealth(ctx, http.DefaultClient, url); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "healthy")
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/healthz)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}

func defaultHealthURL() string {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/healthz", port)
}

func probeHealth(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &healthcheckError{code: 1, msg: fmt.Sprintf("create request: %v", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &healthcheckError{code: 1, msg: fmt.Sprintf("health check failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &healthcheckError{code: 1, msg: fmt.Sprintf("health check returned status %d", resp.StatusCode)}
	}

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &healthcheckError{code: 2, msg: fmt.Sprintf("parse health response: %v", err)}
	}
	if body.Status != "ok" && body.Status != "healthy" {
		return &healthcheckError{code: 1, msg: fmt.Sprintf("server status: %s", body.Status)}
	}
	return nil
}
