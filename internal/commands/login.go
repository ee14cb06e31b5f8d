package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"today/internal/backend/apiclient"
	"today/internal/config"
	"today/internal/exitcode"
	"today/internal/output"
	"today/internal/service"
)

const (
	// Login callback timeout
	loginCallbackTimeout = 5 * time.Minute

	// Starting port for the login callback server
	loginStartPort = 8085

	// Max port attempts
	loginMaxPortAttempts = 5
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
// The browser signs in with Google on the todayd server, which redirects to
// a loopback callback with the session token.
type LoginCmd struct {
	newService func(cfg *config.Config) (service.Service, error)
}

// SetServiceFactory replaces how the signed-in service is built (for testing).
func (c *LoginCmd) SetServiceFactory(fn func(cfg *config.Config) (service.Service, error)) {
	c.newService = fn
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and sync local tasks" }
func (c *LoginCmd) Usage() string     { return "today login" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Check if already logged in with a session the server accepts
	if svc != nil {
		if user, err := svc.CurrentUser(ctx); err == nil {
			if !cfg.Quiet {
				fmt.Fprintf(out, "already logged in as %s\n", user.Email)
			}
			return exitcode.Success
		}
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintln(errOut, "error: could not bind to local port for login callback")
		return exitcode.AuthError
	}
	defer listener.Close()

	redirectURL := fmt.Sprintf("http://localhost:%d/callback", port)
	authURL, err := loginURL(cfg.APIURL, redirectURL)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	// Print URL to stderr
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	token, err := awaitToken(ctx, listener, loginCallbackTimeout)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	return c.Complete(ctx, cfg, token, out, errOut)
}

// Complete stores token as the session and performs the transition to the
// signed-in state: the local list is reconciled with the server once.
func (c *LoginCmd) Complete(ctx context.Context, cfg *config.Config, token string, out, errOut io.Writer) int {
	if err := cfg.SaveSession(config.Session{Token: token, APIURL: cfg.APIURL}); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}

	newService := c.newService
	if newService == nil {
		newService = func(cfg *config.Config) (service.Service, error) {
			return apiclient.New(cfg)
		}
	}
	svc, err := newService(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	m, err := openManager(cfg, svc, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	rep, err := m.Login(ctx)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		if rerr := cfg.RemoveSession(); rerr != nil {
			output.Notice(errOut, "failed to remove session: %v", rerr)
		}
		fmt.Fprintln(errOut, "error: login rejected by server")
		return exitcode.AuthError
	case err != nil:
		// The session stays stored; the next sync retries.
		output.Notice(errOut, "logged in, but sync failed: %v", err)
		return exitcode.Success
	}

	reportSync(cfg, rep, out, errOut)
	if user, ok := m.User(); ok && !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", user.Email)
	}
	return exitcode.Success
}

// loginURL returns the server's sign-in URL that redirects to redirectURL.
func loginURL(apiURL, redirectURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid api_url %q", apiURL)
	}
	u = u.JoinPath("auth", "google")
	u.RawQuery = url.Values{"redirect": {redirectURL}}.Encode()
	return u.String(), nil
}

// awaitToken serves the loopback callback on listener until it receives a
// token, ctx is done or timeout elapses.
func awaitToken(ctx context.Context, listener net.Listener, timeout time.Duration) (string, error) {
	tokenCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "No token in callback", http.StatusBadRequest)
			select {
			case errCh <- errors.New("no token in callback"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Signed in</h1><p>You may close this window.</p></body></html>")
		select {
		case tokenCh <- token:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case token := <-tokenCh:
		return token, nil
	case err := <-errCh:
		return "", err
	case <-timer.C:
		return "", errors.New("login callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

// findAvailablePort tries to find an available port starting from loginStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < loginMaxPortAttempts; i++ {
		port := loginStartPort + i
		addr := fmt.Sprintf("localhost:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}
