package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Spotify accounts service endpoints.
const (
	AuthURL  = "https://accounts.spotify.com/authorize"
	TokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes are the permissions needed to read and change playback.
var Scopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

// ErrNotAuthorized is returned when no stored token exists.
var ErrNotAuthorized = errors.New("not authorized: run 'mudra auth' first")

// Credentials identify the registered Spotify application.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuth2Config builds the authorization-code configuration for creds.
// tokenURL and authURL may be empty to use the Spotify defaults.
func OAuth2Config(creds Credentials, authURL, tokenURL string) *oauth2.Config {
	if authURL == "" {
		authURL = AuthURL
	}
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}
}

// TokenStore persists OAuth tokens between runs.
type TokenStore interface {
	LoadToken() (*oauth2.Token, error)
	SaveToken(tok *oauth2.Token) error
}

// persistingTokenSource saves every refreshed token back to the store.
type persistingTokenSource struct {
	src    oauth2.TokenSource
	store  TokenStore
	mu     sync.Mutex
	access string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.access {
		p.access = tok.AccessToken
		if err := p.store.SaveToken(tok); err != nil {
			slog.Warn("failed to persist refreshed token", "error", err)
		}
	}
	return tok, nil
}

// NewAuthorizedClient returns an http.Client that authenticates with the
// stored token and refreshes it as needed. timeout bounds every request.
func NewAuthorizedClient(ctx context.Context, cfg *oauth2.Config, store TokenStore, timeout time.Duration) (*http.Client, error) {
	tok, err := store.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if tok == nil {
		return nil, ErrNotAuthorized
	}

	ts := &persistingTokenSource{
		src:    cfg.TokenSource(ctx, tok),
		store:  store,
		access: tok.AccessToken,
	}
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = timeout
	return client, nil
}

// callbackResult carries the outcome of the redirect back from the browser.
type callbackResult struct {
	code string
	err  error
}

// callbackHandler validates the redirect and forwards the authorization code.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	var once sync.Once
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			res.err = errors.New("authorization state mismatch")
		case q.Get("code") == "":
			res.err = errors.New("authorization code missing")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "mudra is authorized. You can close this window.")
		}
		once.Do(func() { results <- res })
	})
}

// Authorize runs the authorization-code flow. It listens on the redirect
// URL, calls open with the consent URL, waits for the browser redirect, and
// exchanges the code for a token.
func Authorize(ctx context.Context, cfg *oauth2.Config, open func(authURL string)) (*oauth2.Token, error) {
	redirect, err := url.Parse(cfg.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}
	if redirect.Host == "" {
		return nil, fmt.Errorf("redirect url %q has no host", cfg.RedirectURL)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}

	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, callbackHandler(state, results))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go srv.Serve(ln)
	defer srv.Close()

	open(cfg.AuthCodeURL(state))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("exchange code: %w", err)
		}
		return tok, nil
	}
}
