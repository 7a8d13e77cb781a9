package auth

import (
	"errors"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes required for our app (Strava uses comma-separated scopes)
var Scopes = []string{
	"read,activity:read_all",
}

var (
	// ErrAuth is returned when Strava rejects an authorization code or refresh token
	ErrAuth = errors.New("strava authorization failed")

	// ErrNoToken is returned when no token has been persisted yet
	ErrNoToken = errors.New("no token stored")
)

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
	TokenURL     string // defaults to TokenURL
}

// NewOAuthConfig creates an oauth2.Config from our Config.
// Strava expects the client credentials as form fields, not basic auth.
func NewOAuthConfig(cfg Config) *oauth2.Config {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// Token is the persisted credential triple
type Token struct {
	AccessToken  string `json:"access_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch seconds
	RefreshToken string `json:"refresh_token"`
}

// ExpiryBuffer is how early a token is considered expired
const ExpiryBuffer = 60 * time.Second

// Expired reports whether the token is past (or within ExpiryBuffer of) its expiry
func (t Token) Expired(now time.Time) bool {
	return now.Add(ExpiryBuffer).Unix() >= t.ExpiresAt
}

// Expiry returns ExpiresAt as a time.Time
func (t Token) Expiry() time.Time {
	return time.Unix(t.ExpiresAt, 0)
}

// OAuth2 converts the token for use with golang.org/x/oauth2
func (t Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry(),
	}
}

// fromOAuth2 converts a token endpoint response into a Token.
// Strava sends both expires_in and expires_at; expires_at wins when present.
func fromOAuth2(tok *oauth2.Token) Token {
	t := Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		t.ExpiresAt = tok.Expiry.Unix()
	}
	if v, ok := extraInt(tok, "expires_at"); ok {
		t.ExpiresAt = v
	}
	return t
}

func extraInt(tok *oauth2.Token, key string) (int64, bool) {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// ExtractAthleteID extracts the athlete ID from the token extras
// Strava includes athlete info in the token response
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}
