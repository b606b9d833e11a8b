package loopback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"molard/internal/config"
	apperrors "molard/internal/errors"
	"molard/internal/metrics"
	"molard/pkg/logging"
)

const (
	subsystem = "Auth"

	// MinBrowserDelay keeps the browser from racing the listener.
	MinBrowserDelay = 100 * time.Millisecond
)

// Server runs one sign-in at a time on a fixed loopback port.
type Server struct {
	Port         int
	Timeout      time.Duration
	BrowserDelay time.Duration
	Opener       Opener
}

// NewServer returns a Server configured from settings with the system browser as opener.
func NewServer(settings config.AuthSettings) *Server {
	return &Server{
		Port:         settings.CallbackPort,
		Timeout:      settings.Timeout,
		BrowserDelay: settings.BrowserDelay,
		Opener:       BrowserOpener{},
	}
}

func (s *Server) port() int {
	if s.Port <= 0 {
		return config.DefaultCallbackPort
	}
	return s.Port
}

func (s *Server) timeout() time.Duration {
	if s.Timeout <= 0 {
		return config.DefaultAuthTimeout
	}
	return s.Timeout
}

func (s *Server) browserDelay() time.Duration {
	if s.BrowserDelay < MinBrowserDelay {
		return MinBrowserDelay
	}
	return s.BrowserDelay
}

// SignIn opens authURL in the browser and returns the fragment the provider
// redirects back with. The timeout counts from the start of the call.
func (s *Server) SignIn(ctx context.Context, authURL string) (string, error) {
	started := time.Now()
	fragment, err := s.signIn(ctx, authURL)

	metrics.SignInsTotal.WithLabelValues(signInOutcome(err)).Inc()
	metrics.SignInDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		logging.Warn(subsystem, "Sign-in failed after %s: %v", time.Since(started).Round(time.Millisecond), err)
	}
	return fragment, err
}

func (s *Server) signIn(ctx context.Context, authURL string) (string, error) {
	if err := validateAuthURL(authURL); err != nil {
		return "", err
	}

	deadline := time.NewTimer(s.timeout())
	defer deadline.Stop()

	pending := NewPendingAuth()
	port := s.port()

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		if isAddrInUse(err) {
			return "", apperrors.PortInUse(port, err)
		}
		return "", fmt.Errorf("bind callback listener on port %d: %w", port, err)
	}

	srv := &http.Server{
		Handler:           NewHandler(pending),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Debug(subsystem, "Callback listener shutdown: %v", err)
			srv.Close()
		}
	}()

	logging.Info(subsystem, "Waiting for sign-in %s callback on http://%s", pending.ID, ln.Addr())

	delay := time.NewTimer(s.browserDelay())
	defer delay.Stop()
	select {
	case <-delay.C:
	case <-deadline.C:
		return "", apperrors.Timeout("sign-in")
	case <-ctx.Done():
		return "", ctx.Err()
	}

	opener := s.Opener
	if opener == nil {
		opener = BrowserOpener{}
	}
	if err := opener.Open(authURL); err != nil {
		return "", apperrors.Wrap(apperrors.CodeBrowserFailed, "failed to open the system browser", err)
	}

	select {
	case fragment := <-pending.Wait():
		return fragment, nil
	case <-deadline.C:
		return "", apperrors.Timeout("sign-in")
	case err := <-serveErr:
		return "", fmt.Errorf("callback listener stopped: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func validateAuthURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return apperrors.BadInput(fmt.Sprintf("invalid authorization URL: %v", err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.BadInput(fmt.Sprintf("authorization URL must be an absolute http(s) URL, got %q", raw))
	}
	return nil
}

func isAddrInUse(err error) bool {
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "address already in use") ||
		strings.Contains(msg, "Only one usage of each socket address")
}

func signInOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case apperrors.IsCode(err, apperrors.CodeTimeout):
		return "timeout"
	case apperrors.IsCode(err, apperrors.CodePortInUse):
		return "port_in_use"
	default:
		return "error"
	}
}
