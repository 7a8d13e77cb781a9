package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenStore persists the latest Token
type TokenStore interface {
	// Load returns ErrNoToken when nothing has been saved yet
	Load() (Token, error)
	Save(Token) error
}

// CredentialStore hands out valid tokens, exchanging codes and refreshing
// expired tokens against the Strava token endpoint. Every successful exchange
// or refresh is persisted through the TokenStore.
type CredentialStore struct {
	config     *oauth2.Config
	tokens     TokenStore
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time
	mu         sync.Mutex
}

// NewCredentialStore creates a CredentialStore. httpClient may be nil, in which
// case oauth2 falls back to http.DefaultClient.
func NewCredentialStore(cfg *oauth2.Config, tokens TokenStore, httpClient *http.Client) *CredentialStore {
	return &CredentialStore{
		config:     cfg,
		tokens:     tokens,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// SetLogger enables logging of token exchanges
func (c *CredentialStore) SetLogger(l *log.Logger) {
	c.logger = l
}

// GetToken returns a currently valid token, refreshing it first if the stored
// one has expired
func (c *CredentialStore) GetToken(ctx context.Context) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, err := c.tokens.Load()
	if err != nil {
		return Token{}, err
	}

	if !tok.Expired(c.now()) {
		return tok, nil
	}

	return c.refresh(ctx, tok)
}

// ExchangeCode trades a one-time authorization code for a Token
func (c *CredentialStore) ExchangeCode(ctx context.Context, code string) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code == "" {
		return Token{}, fmt.Errorf("%w: empty authorization code", ErrAuth)
	}

	oauthTok, err := c.config.Exchange(c.clientContext(ctx), code)
	if err != nil {
		return Token{}, classify("exchanging code", err)
	}

	tok := fromOAuth2(oauthTok)
	if err := validate(tok); err != nil {
		return Token{}, err
	}

	if err := c.tokens.Save(tok); err != nil {
		return Token{}, fmt.Errorf("saving token: %w", err)
	}

	c.logf("authenticated as athlete %d, token valid until %s", ExtractAthleteID(oauthTok), tok.Expiry().Format(time.RFC3339))
	return tok, nil
}

// Refresh exchanges tok's refresh token for a new Token. Strava hands back
// the same token while it has more than an hour left, so a response whose
// expiry doesn't advance returns tok unchanged if tok is still valid.
func (c *CredentialStore) Refresh(ctx context.Context, tok Token) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh(ctx, tok)
}

func (c *CredentialStore) refresh(ctx context.Context, tok Token) (Token, error) {
	if tok.RefreshToken == "" {
		return Token{}, fmt.Errorf("%w: missing refresh token", ErrAuth)
	}

	// An empty access token forces the oauth2 source to hit the token endpoint
	src := c.config.TokenSource(c.clientContext(ctx), &oauth2.Token{RefreshToken: tok.RefreshToken})
	oauthTok, err := src.Token()
	if err != nil {
		return Token{}, classify("refreshing token", err)
	}

	newTok := fromOAuth2(oauthTok)
	if err := validate(newTok); err != nil {
		return Token{}, err
	}
	if newTok.ExpiresAt <= tok.ExpiresAt {
		if !tok.Expired(c.now()) {
			return tok, nil
		}
		return Token{}, fmt.Errorf("%w: refreshed token expiry %d does not advance past %d", ErrAuth, newTok.ExpiresAt, tok.ExpiresAt)
	}

	if err := c.tokens.Save(newTok); err != nil {
		return Token{}, fmt.Errorf("saving token: %w", err)
	}

	c.logf("refreshed access token, valid until %s", newTok.Expiry().Format(time.RFC3339))
	return newTok, nil
}

func (c *CredentialStore) clientContext(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *CredentialStore) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// validate rejects token responses that are missing required fields
func validate(tok Token) error {
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: response has no access_token", ErrAuth)
	}
	if tok.RefreshToken == "" {
		return fmt.Errorf("%w: response has no refresh_token", ErrAuth)
	}
	if tok.ExpiresAt == 0 {
		return fmt.Errorf("%w: response has no expiry", ErrAuth)
	}
	return nil
}

// classify maps token endpoint rejections to ErrAuth. Transport errors are
// returned as-is.
func classify(op string, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		return fmt.Errorf("%s: %w (status %d: %s)", op, ErrAuth, status, string(rErr.Body))
	}
	return fmt.Errorf("%s: %w", op, err)
}
