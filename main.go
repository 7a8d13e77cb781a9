package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/oauth2"

	"segment-leader/internal/analysis"
	"segment-leader/internal/auth"
	"segment-leader/internal/config"
	"segment-leader/internal/service"
	"segment-leader/internal/store"
	"segment-leader/internal/strava"
	"segment-leader/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your Strava API credentials, or set CLIENT_ID and CLIENT_SECRET.")
		fmt.Println("Get them from: https://www.strava.com/settings/api")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Pick the credential backend
	var tokens auth.TokenStore
	switch cfg.Credentials.Backend {
	case "sqlite":
		db, err := store.Open(cfg.Credentials.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		tokens = db
	default:
		tokens = auth.NewFileStore(cfg.Credentials.Path)
	}

	logger, closeLog, err := openLog()
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closeLog()

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  auth.RedirectURL(),
	})

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}
	creds := auth.NewCredentialStore(oauthCfg, tokens, httpClient)
	creds.SetLogger(logger)

	if err := ensureToken(ctx, creds, oauthCfg, cfg.Strava.AuthCode); err != nil {
		return fmt.Errorf("authentication: %w", err)
	}

	// Create services
	client := strava.NewClient(httpClient)
	svc := service.NewRankingService(client, analysis.NewSelector(cfg.Ranking.SampleStrategy, cfg.Ranking.SampleSize))
	svc.SetLogger(logger)

	// Launch TUI
	app := tui.NewApp(creds, svc, client, *cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// ensureToken makes sure a usable token is stored before the TUI starts. A
// configured authorization code always wins over the stored token.
func ensureToken(ctx context.Context, creds *auth.CredentialStore, oauthCfg *oauth2.Config, code string) error {
	if code != "" {
		if _, err := creds.ExchangeCode(ctx, code); err != nil {
			return fmt.Errorf("exchanging configured code: %w", err)
		}
		fmt.Println("Authorization code exchanged.")
		return nil
	}

	_, err := creds.GetToken(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, auth.ErrNoToken) && !errors.Is(err, auth.ErrAuth) {
		return err
	}

	if errors.Is(err, auth.ErrNoToken) {
		fmt.Println("No authentication found. Starting OAuth flow...")
	} else {
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
	}

	code, err = auth.AwaitCode(ctx, oauthCfg)
	if err != nil {
		return err
	}
	if _, err := creds.ExchangeCode(ctx, code); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Successfully authenticated!")
	return nil
}

// openLog sends log output to a file in the config directory so it doesn't
// draw over the TUI
func openLog() (*log.Logger, func(), error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "segment-leader.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }, nil
}
