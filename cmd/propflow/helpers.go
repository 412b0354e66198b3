package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stantpm/propflow/internal/sheets"
	"github.com/stantpm/propflow/internal/storage"
)

// initStorage opens the import-history database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/propflow/propflow.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// sheetsConfig assembles the Google API configuration from viper and the
// environment.
func sheetsConfig() (sheets.Config, error) {
	config := sheets.DefaultConfig()
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.ServiceAccountPath = expandPath(viper.GetString("sheets.service_account_path"))
	config.SpreadsheetID = viper.GetString("sheets.ledger_id")
	if tz := viper.GetString("sheets.time_zone"); tz != "" {
		config.TimeZone = tz
	}

	if err := config.LoadFromEnv(); err != nil {
		return sheets.Config{}, err
	}
	if config.SpreadsheetID == "" {
		return sheets.Config{}, fmt.Errorf("no ledger spreadsheet configured: set sheets.ledger_id or use --ledger")
	}
	return config, nil
}

// initSheets builds the document store and file converter clients.
func initSheets(ctx context.Context) (*sheets.Client, *sheets.Converter, sheets.Config, error) {
	config, err := sheetsConfig()
	if err != nil {
		return nil, nil, sheets.Config{}, err
	}

	client, err := sheets.NewClient(ctx, config, slog.Default())
	if err != nil {
		return nil, nil, sheets.Config{}, fmt.Errorf("failed to create sheets client: %w", err)
	}
	converter, err := sheets.NewConverter(ctx, config, slog.Default())
	if err != nil {
		return nil, nil, sheets.Config{}, fmt.Errorf("failed to create drive client: %w", err)
	}

	return client, converter, config, nil
}

// reportLocation resolves the configured time zone for date handling.
func reportLocation(config sheets.Config) *time.Location {
	loc, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		slog.Warn("invalid time zone, using local", "time_zone", config.TimeZone, "error", err)
		return time.Local
	}
	return loc
}

// expandPath expands $HOME, environment variables and a leading tilde.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
