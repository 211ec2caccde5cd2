package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const callbackPage = `<!doctype html><html><body style="font-family:sans-serif;text-align:center;margin-top:4em">
<h2>%s</h2><p>You can close this window and return to the terminal.</p></body></html>`

// SignIn opens the authorize page in the browser and waits on the loopback
// redirect URI for the provider to send the learner back.
func (s *OIDCSession) SignIn(ctx context.Context) (Account, error) {
	redirect, err := url.Parse(s.cfg.RedirectURI)
	if err != nil {
		return Account{}, fmt.Errorf("identity: parse redirect uri: %w", err)
	}
	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return Account{}, fmt.Errorf("identity: listen on %s: %w", redirect.Host, err)
	}

	in, authURL := s.begin()

	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		title := "Signed in"
		if !in.deliver(r.URL.Query()) {
			title = "Sign-in already handled"
		} else if r.URL.Query().Get("error") != "" {
			title = "Sign-in failed"
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, callbackPage, title)
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("redirect listener stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("opening browser for sign-in", "authorize_url", authURL)
	if err := s.cfg.OpenURL(authURL); err != nil {
		s.log.Warn("open browser", "error", err)
	}

	select {
	case <-in.done:
	case <-ctx.Done():
		return Account{}, ctx.Err()
	}
	return s.complete(ctx, in)
}
