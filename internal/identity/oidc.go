package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/abhisek/learnhub/internal/logger"
)

// oidcScopes are granted with every sign-in and never select a resource.
var oidcScopes = []string{"openid", "profile", "email", "offline_access"}

// Config describes the application registration.
type Config struct {
	ClientID              string
	Authority             string
	RedirectURI           string
	PostLogoutRedirectURI string

	// Scopes requested at sign-in. The first non-OIDC scope decides which
	// resource the initial access token is for.
	Scopes []string

	// HTTPClient is used for token requests. Default: http.DefaultClient.
	HTTPClient *http.Client

	// OpenURL launches the system browser. Default: OpenBrowser.
	OpenURL func(string) error
}

// Endpoint derives the v2.0 endpoints of a Microsoft identity platform
// authority, e.g. https://tenant.ciamlogin.com/tenant.onmicrosoft.com.
func Endpoint(authority string) oauth2.Endpoint {
	base := strings.TrimRight(authority, "/")
	return oauth2.Endpoint{
		AuthURL:   base + "/oauth2/v2.0/authorize",
		TokenURL:  base + "/oauth2/v2.0/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// OIDCSession implements Session with an in-memory token cache that lives as
// long as the process.
type OIDCSession struct {
	cfg   Config
	oauth *oauth2.Config
	log   *logger.Logger

	mu       sync.Mutex
	accounts []Account
	active   *Account
	tokens   map[string]map[string]*oauth2.Token // account id -> scope key -> token
	refresh  map[string]string                   // account id -> refresh token
	pending  *interaction

	resolveOnce sync.Once
	resolved    Account
	resolveErr  error
}

var _ Session = (*OIDCSession)(nil)

// NewOIDCSession validates cfg and returns a session with an empty cache.
func NewOIDCSession(cfg Config, log *logger.Logger) (*OIDCSession, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("identity: client id is required")
	}
	if cfg.Authority == "" {
		return nil, errors.New("identity: authority is required")
	}
	if _, err := url.Parse(cfg.RedirectURI); err != nil || cfg.RedirectURI == "" {
		return nil, fmt.Errorf("identity: invalid redirect uri %q", cfg.RedirectURI)
	}
	if cfg.OpenURL == nil {
		cfg.OpenURL = OpenBrowser
	}
	if log == nil {
		log = logger.Nop()
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = oidcScopes
	}
	return &OIDCSession{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			Endpoint:    Endpoint(cfg.Authority),
			RedirectURL: cfg.RedirectURI,
			Scopes:      scopes,
		},
		log:     log,
		tokens:  make(map[string]map[string]*oauth2.Token),
		refresh: make(map[string]string),
	}, nil
}

func (s *OIDCSession) httpContext(ctx context.Context) context.Context {
	if s.cfg.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.cfg.HTTPClient)
	}
	return ctx
}

// Resolve settles a redirect response that arrived before anyone asked for
// it, then falls back to the first cached account.
func (s *OIDCSession) Resolve(ctx context.Context) (Account, error) {
	s.resolveOnce.Do(func() {
		s.mu.Lock()
		pending := s.pending
		s.mu.Unlock()
		if pending != nil && pending.received() {
			s.resolved, s.resolveErr = s.complete(ctx, pending)
			if s.resolveErr == nil {
				return
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.active == nil && len(s.accounts) > 0 {
			first := s.accounts[0]
			s.active = &first
		}
		if s.active != nil {
			s.resolved, s.resolveErr = *s.active, nil
			return
		}
		if s.resolveErr == nil {
			s.resolveErr = ErrNoAccount
		}
	})
	return s.resolved, s.resolveErr
}

func (s *OIDCSession) ActiveAccount() (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return Account{}, false
	}
	return *s.active, true
}

// begin starts a new interaction and returns the authorize URL for it. A
// previous unfinished interaction is abandoned.
func (s *OIDCSession) begin() (*interaction, string) {
	in := &interaction{
		state:    uuid.NewString(),
		nonce:    uuid.NewString(),
		verifier: oauth2.GenerateVerifier(),
		done:     make(chan struct{}),
	}
	s.mu.Lock()
	s.pending = in
	s.mu.Unlock()

	authURL := s.oauth.AuthCodeURL(in.state,
		oauth2.S256ChallengeOption(in.verifier),
		oauth2.SetAuthURLParam("nonce", in.nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return in, authURL
}

// complete resolves the interaction's redirect response exactly once.
func (s *OIDCSession) complete(ctx context.Context, in *interaction) (Account, error) {
	in.once.Do(func() {
		in.account, in.err = s.exchange(ctx, in)
		s.mu.Lock()
		if s.pending == in {
			s.pending = nil
		}
		s.mu.Unlock()
	})
	return in.account, in.err
}

func (s *OIDCSession) exchange(ctx context.Context, in *interaction) (Account, error) {
	q := in.query
	if e := q.Get("error"); e != "" {
		return Account{}, fmt.Errorf("identity: sign-in failed: %s: %s", e, q.Get("error_description"))
	}
	if q.Get("state") != in.state {
		return Account{}, errors.New("identity: redirect state mismatch")
	}
	code := q.Get("code")
	if code == "" {
		return Account{}, errors.New("identity: redirect carried no authorization code")
	}

	tok, err := s.oauth.Exchange(s.httpContext(ctx), code, oauth2.VerifierOption(in.verifier))
	if err != nil {
		return Account{}, fmt.Errorf("identity: exchange code: %w", err)
	}
	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return Account{}, errors.New("identity: token response has no id_token")
	}
	acct, err := parseIDToken(rawID, s.cfg.ClientID, in.nonce)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.remember(acct)
	s.storeToken(acct.ID, scopeKey(s.oauth.Scopes), tok)
	s.active = &acct
	s.log.Info("signed in", "account_id", acct.ID)
	return acct, nil
}

// remember adds acct to the cache, replacing an entry with the same id.
// Caller holds s.mu.
func (s *OIDCSession) remember(acct Account) {
	for i := range s.accounts {
		if s.accounts[i].ID == acct.ID {
			s.accounts[i] = acct
			return
		}
	}
	s.accounts = append(s.accounts, acct)
}

// Caller holds s.mu.
func (s *OIDCSession) storeToken(accountID, key string, tok *oauth2.Token) {
	if s.tokens[accountID] == nil {
		s.tokens[accountID] = make(map[string]*oauth2.Token)
	}
	s.tokens[accountID][key] = tok
	if tok.RefreshToken != "" {
		s.refresh[accountID] = tok.RefreshToken
	}
}

// SignOut forgets the active account and opens the provider's logout page.
func (s *OIDCSession) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.active != nil {
		id := s.active.ID
		delete(s.tokens, id)
		delete(s.refresh, id)
		s.accounts = slices.DeleteFunc(s.accounts, func(a Account) bool { return a.ID == id })
		s.log.Info("signed out", "account_id", id)
	}
	s.active = nil
	s.mu.Unlock()

	logoutURL := s.LogoutURL()
	if err := s.cfg.OpenURL(logoutURL); err != nil {
		s.log.Warn("open logout page", "error", err)
	}
	return nil
}

// LogoutURL is the provider end-session endpoint for this client.
func (s *OIDCSession) LogoutURL() string {
	v := url.Values{}
	v.Set("client_id", s.cfg.ClientID)
	if s.cfg.PostLogoutRedirectURI != "" {
		v.Set("post_logout_redirect_uri", s.cfg.PostLogoutRedirectURI)
	}
	return strings.TrimRight(s.cfg.Authority, "/") + "/oauth2/v2.0/logout?" + v.Encode()
}

// AcquireTokenSilent serves a cached unexpired token or redeems the cached
// refresh token. It never prompts.
func (s *OIDCSession) AcquireTokenSilent(ctx context.Context, scopes []string) (string, error) {
	key := scopeKey(scopes)

	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %w", ErrInteractionRequired, ErrNoAccount)
	}
	accountID := s.active.ID
	if tok := s.tokens[accountID][key]; tok.Valid() {
		s.mu.Unlock()
		return tok.AccessToken, nil
	}
	rt := s.refresh[accountID]
	s.mu.Unlock()

	if rt == "" {
		return "", fmt.Errorf("%w: no refresh token cached", ErrInteractionRequired)
	}

	conf := *s.oauth
	conf.Scopes = append(slices.Clone(scopes), "offline_access")
	tok, err := conf.TokenSource(s.httpContext(ctx), &oauth2.Token{RefreshToken: rt}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return "", fmt.Errorf("%w: %w", ErrInteractionRequired, err)
		}
		return "", fmt.Errorf("identity: refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.ID != accountID {
		return "", fmt.Errorf("%w: account changed during refresh", ErrInteractionRequired)
	}
	s.storeToken(accountID, key, tok)
	return tok.AccessToken, nil
}

// scopeKey identifies a resource by its non-OIDC scopes, order-insensitive.
func scopeKey(scopes []string) string {
	var res []string
	for _, sc := range scopes {
		if !slices.Contains(oidcScopes, sc) {
			res = append(res, sc)
		}
	}
	slices.Sort(res)
	return strings.Join(res, " ")
}

// interaction is one authorization-code round trip.
type interaction struct {
	state    string
	nonce    string
	verifier string

	mu    sync.Mutex
	query url.Values
	done  chan struct{}

	once    sync.Once
	account Account
	err     error
}

// deliver records the first redirect response; later ones are ignored.
func (in *interaction) deliver(q url.Values) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.query != nil {
		return false
	}
	in.query = q
	close(in.done)
	return true
}

func (in *interaction) received() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.query != nil
}
