package supervisor

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"molard/internal/config"
	"molard/internal/metrics"
	"molard/pkg/logging"
)

// PortGuard is the part of portguard.Guard the supervisor relies on.
type PortGuard interface {
	IsPortFree(port int) bool
	FreePort(ctx context.Context, port int) bool
}

// CompatibilityProbe checks that whatever listens on the database port is a
// database we can use with the configured credentials.
type CompatibilityProbe func(ctx context.Context, s config.DatabaseSettings) error

// PingPostgres runs `SELECT 1` against 127.0.0.1 with the configured credentials.
func PingPostgres(ctx context.Context, s config.DatabaseSettings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", postgresDSN(s))
	if err != nil {
		return fmt.Errorf("open database handle: %w", err)
	}
	defer db.Close()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("compatibility query on port %d: %w", s.Port, err)
	}
	return nil
}

func postgresDSN(s config.DatabaseSettings) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.User, s.Password),
		Host:   net.JoinHostPort("127.0.0.1", strconv.Itoa(s.Port)),
		Path:   "/" + s.Name,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	q.Set("connect_timeout", "2")
	u.RawQuery = q.Encode()
	return u.String()
}

// ProbeHealth issues GET {baseURL}/health. Any 2xx answer is healthy; every
// failure, including a timeout, is reported as false.
func ProbeHealth(ctx context.Context, client *http.Client, baseURL string) bool {
	endpoint := strings.TrimRight(baseURL, "/") + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logging.Debug("Backend", "Invalid health endpoint %q: %v", endpoint, err)
		metrics.ProbesTotal.WithLabelValues("backend", "error").Inc()
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		logging.Debug("Backend", "Health probe of %s failed: %v", endpoint, err)
		metrics.ProbesTotal.WithLabelValues("backend", "unreachable").Inc()
		return false
	}
	defer resp.Body.Close()

	healthy := resp.StatusCode >= 200 && resp.StatusCode < 300
	metrics.ProbesTotal.WithLabelValues("backend", metrics.Outcome(healthy, "healthy", "unhealthy")).Inc()
	return healthy
}
